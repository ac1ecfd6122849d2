package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/storefront/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置连接池
	// 学习要点：合理的连接池配置对性能至关重要
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（建议：CPU核数 * 2 + 磁盘数量）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// 最大空闲连接数（建议：MaxOpenConns的1/4到1/2）
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// 连接最大存活时间（防止数据库主动断开连接）
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&VariantModel{},
		&StockMovementModel{},
		&OrderModel{},
		&OrderLineModel{},
		&PaymentModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:customer;comment:角色(customer/sales/marketing/admin)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// VariantModel GORM商品规格模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. SKU有唯一索引, 防止重复
// 3. AvailableQty是可承诺量, 只由库存台账在事务内修改
// 4. 规格不做软删除: 下架用active标记, 历史订单行还引用着它
type VariantModel struct {
	ID           uint      `gorm:"primaryKey"`
	SKU          string    `gorm:"uniqueIndex;size:64;not null;comment:SKU编码"`
	ProductID    uint      `gorm:"index;not null;comment:所属商品ID"`
	Name         string    `gorm:"index:idx_search;size:200;not null;comment:商品名称"`
	Size         string    `gorm:"size:20;comment:尺码"`
	Color        string    `gorm:"size:30;comment:颜色"`
	Price        int64     `gorm:"not null;comment:销售价(分)"`
	AvailableQty int       `gorm:"not null;default:0;comment:可承诺库存量"`
	Active       bool      `gorm:"index;not null;default:1;comment:是否在售"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
	UpdatedAt    time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (VariantModel) TableName() string {
	return "variants"
}

// StockMovementModel GORM库存流水模型
// 教学要点:
// 1. 只增不改: 没有UpdatedAt, Repository不提供Update/Delete
// 2. (order_no, variant_id, kind)复合索引支撑释放幂等检查
type StockMovementModel struct {
	ID        uint      `gorm:"primaryKey"`
	VariantID uint      `gorm:"index;index:idx_order_variant_kind,priority:2;not null;comment:商品规格ID"`
	Kind      string    `gorm:"index:idx_order_variant_kind,priority:3;size:20;not null;comment:流水类型(sale/release/confirm/restock/adjustment)"`
	Delta     int       `gorm:"not null;comment:变更数量(正增负减)"`
	BeforeQty int       `gorm:"not null;comment:变更前可承诺量"`
	AfterQty  int       `gorm:"not null;comment:变更后可承诺量"`
	OrderNo   string    `gorm:"index:idx_order_variant_kind,priority:1;size:32;comment:关联订单号"`
	ActorID   uint      `gorm:"comment:操作人用户ID(0=系统)"`
	Remark    string    `gorm:"size:255;comment:备注"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
}

// TableName 指定表名
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// OrderModel GORM订单模型
// 教学要点:
// 1. 与OrderLineModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. Status使用int存储(节省空间,便于索引)
type OrderModel struct {
	ID        uint             `gorm:"primaryKey"`
	OrderNo   string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID    uint             `gorm:"index;not null;comment:买家用户ID"`
	Total     int64            `gorm:"not null;comment:订单总金额(分)"`
	Status    int              `gorm:"index;type:tinyint;default:1;comment:订单状态(1待审核2备货中3已发货4已完成5已取消)"`
	Receiver  string           `gorm:"size:50;not null;comment:收货人"`
	Phone     string           `gorm:"size:20;not null;comment:联系电话"`
	Address   string           `gorm:"size:255;not null;comment:收货地址快照"`
	Lines     []OrderLineModel `gorm:"foreignKey:OrderID"` // 一对多关联
	CreatedAt time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel GORM订单行模型
// 教学要点:
// 1. 记录下单时的价格/SKU/名称快照
// 2. OrderID外键关联orders表
type OrderLineModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   uint   `gorm:"index;not null;comment:订单ID"`
	VariantID uint   `gorm:"index;not null;comment:商品规格ID"`
	SKU       string `gorm:"size:64;not null;comment:SKU快照"`
	Name      string `gorm:"size:200;not null;comment:名称快照"`
	Quantity  int    `gorm:"not null;comment:购买数量"`
	Price     int64  `gorm:"not null;comment:下单时单价(分)"`
}

// TableName 指定表名
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// PaymentModel GORM支付单模型
// 教学要点:
// 1. OrderID唯一索引: 与订单严格一对一
// 2. Status+CreatedAt复合索引支撑过期清理的捞单查询
type PaymentModel struct {
	ID              uint      `gorm:"primaryKey"`
	PaymentNo       string    `gorm:"uniqueIndex;size:32;not null;comment:支付单号"`
	OrderID         uint      `gorm:"uniqueIndex;not null;comment:订单ID(一对一)"`
	Amount          int64     `gorm:"not null;comment:应付金额(分)"`
	Method          string    `gorm:"size:30;not null;comment:支付方式"`
	Status          int       `gorm:"index:idx_status_created,priority:1;type:tinyint;default:1;comment:支付状态(1待处理2审核中3已通过4已驳回5已取消)"`
	Reason          string    `gorm:"size:255;comment:驳回原因"`
	CreatedAt       time.Time `gorm:"index:idx_status_created,priority:2;comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
	StatusChangedAt time.Time `gorm:"comment:最近状态变更时间"`
}

// TableName 指定表名
func (PaymentModel) TableName() string {
	return "payments"
}
