package user

import (
	"time"
)

// Role 用户角色
// 设计说明: 角色是枚举而非散落的字符串比较,
// 权限判断收敛到实体方法, API边界只调用一次
type Role string

const (
	RoleCustomer  Role = "customer"  // 买家
	RoleSales     Role = "sales"     // 销售(审核支付、发货)
	RoleMarketing Role = "marketing" // 运营(商品上架、补货)
	RoleAdmin     Role = "admin"     // 管理员(全部权限)
)

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSales, RoleMarketing, RoleAdmin:
		return true
	}
	return false
}

// CanManagePayments 是否可以审批支付(流转支付状态、处理过期清理)
func (r Role) CanManagePayments() bool {
	return r == RoleSales || r == RoleAdmin
}

// CanManageCatalog 是否可以管理商品(上架、改价、补货)
func (r Role) CanManageCatalog() bool {
	return r == RoleMarketing || r == RoleAdmin
}

// User 用户实体（聚合根）
// DDD设计说明：
// 1. User是用户聚合的根实体，包含用户的核心属性
// 2. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 3. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
// 自助注册的用户一律是customer, 员工账号由管理员后台创建
func NewUser(email, hashedPassword, nickname string, role Role) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateNickname 更新昵称（领域行为）
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
