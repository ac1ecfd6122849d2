//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入（如Spring的@Autowired）不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appcart "github.com/xiebiao/storefront/internal/application/cart"
	appcatalog "github.com/xiebiao/storefront/internal/application/catalog"
	apporder "github.com/xiebiao/storefront/internal/application/order"
	apppayment "github.com/xiebiao/storefront/internal/application/payment"
	appuser "github.com/xiebiao/storefront/internal/application/user"
	domainnotification "github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/domain/stock"
	"github.com/xiebiao/storefront/internal/domain/tx"
	"github.com/xiebiao/storefront/internal/domain/user"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/internal/infrastructure/notification"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/storefront/internal/interface/http/handler"
	"github.com/xiebiao/storefront/internal/interface/http/middleware"
	"github.com/xiebiao/storefront/pkg/jwt"
	"github.com/xiebiao/storefront/pkg/response"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
// 包含：配置加载、数据库连接、Redis连接
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
// 包含：所有Repository的构造函数
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,     // 用户仓储
	mysql.NewVariantRepository,  // 商品规格仓储
	mysql.NewMovementRepository, // 库存流水仓储
	mysql.NewOrderRepository,    // 订单仓储
	mysql.NewPaymentRepository,  // 支付单仓储
	mysql.NewTxManager,          // 事务管理器
	wire.Bind(new(tx.Manager), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
// 包含：领域服务和库存台账
var domainSet = wire.NewSet(
	user.NewService, // 用户领域服务
	stock.NewLedger, // 库存台账（预留/释放/确认/补货）
)

// applicationSet 应用层依赖
// 包含：所有Use Case的构造函数
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,           // 用户注册用例
	appuser.NewLoginUseCase,              // 用户登录用例
	appuser.NewLogoutUseCase,             // 用户登出用例
	appcatalog.NewPublishVariantUseCase,  // 商品上架用例
	appcatalog.NewListVariantsUseCase,    // 商品列表用例
	appcatalog.NewRestockUseCase,         // 补货用例
	appcatalog.NewDeactivateVariantUseCase, // 商品下架用例
	appcart.NewCartUseCase,               // 购物车用例
	apporder.NewPlaceOrderUseCase,        // 下单用例
	apporder.NewCheckoutUseCase,          // 购物车结算用例
	apporder.NewGetOrderUseCase,          // 订单详情用例
	apporder.NewListOrdersUseCase,        // 订单列表用例
	apporder.NewFulfillmentUseCase,       // 履约用例（发货/完成）
	apppayment.NewTransitionUseCase,      // 支付状态流转用例
	apppayment.NewListPendingUseCase,     // 审批工作台用例
	provideSweepUseCase,                  // 过期清理用例（需要从config提取批大小）
)

// middlewareSet 中间件依赖
// 包含：JWT管理器、会话/购物车存储、认证中间件
var middlewareSet = wire.NewSet(
	provideJWTManager,            // JWT管理器（需要从config提取参数）
	provideSessionStore,          // Session存储（需要从Redis创建）
	provideCartStore,             // 购物车存储（需要从Redis创建）
	middleware.NewAuthMiddleware, // 认证中间件
)

// handlerSet HTTP处理器依赖
// 包含：所有Handler的构造函数
var handlerSet = wire.NewSet(
	handler.NewUserHandler,    // 用户处理器
	handler.NewCatalogHandler, // 商品处理器
	handler.NewCartHandler,    // 购物车处理器
	handler.NewOrderHandler,   // 订单处理器
	providePaymentHandler,     // 支付审批处理器（需要从config提取TTL）
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================

// provideJWTManager 从配置创建JWT管理器
// 教学要点：config.Config 包含多个字段，但jwt.NewManager只需要JWT相关的配置
// Wire无法自动知道如何从Config提取参数，所以需要手动编写Provider
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideCartStore 从Redis客户端创建购物车存储
func provideCartStore(client *goredis.Client) *redis.CartStore {
	return redis.NewCartStore(client)
}

// provideSender 创建通知发布者
// MQ不可用时降级为空实现, 通知不阻塞服务启动
func provideSender(cfg *config.Config) domainnotification.Sender {
	publisher, err := notification.NewEventPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		return domainnotification.NopSender{}
	}
	return publisher
}

// provideSweepUseCase 从配置提取清理批大小
func provideSweepUseCase(
	paymentRepo payment.Repository,
	orderRepo order.Repository,
	ledger *stock.Ledger,
	txManager tx.Manager,
	sender domainnotification.Sender,
	cfg *config.Config,
) *apppayment.SweepUseCase {
	return apppayment.NewSweepUseCase(paymentRepo, orderRepo, ledger, txManager, sender, cfg.Reservation.SweepBatch)
}

// providePaymentHandler 从配置提取默认预留TTL
func providePaymentHandler(
	transitionUseCase *apppayment.TransitionUseCase,
	listPendingUseCase *apppayment.ListPendingUseCase,
	sweepUseCase *apppayment.SweepUseCase,
	cfg *config.Config,
) *handler.PaymentHandler {
	return handler.NewPaymentHandler(transitionUseCase, listPendingUseCase, sweepUseCase, cfg.Reservation.TTL)
}

// provideGinEngine 创建并配置Gin引擎
// 教学要点：
// 1. Gin引擎需要注册所有路由
// 2. 路由注册需要所有的Handler和Middleware
// 3. 这里直接在函数内注册路由，避免与main.go中的registerRoutes函数冲突
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	catalogHandler *handler.CatalogHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	// 设置运行模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
			users.GET("/profile", authMiddleware.RequireAuth(), func(c *gin.Context) {
				response.Success(c, gin.H{
					"user_id":  middleware.GetUserID(c),
					"email":    c.GetString("email"),
					"nickname": c.GetString("nickname"),
					"role":     middleware.GetRole(c),
				})
			})
		}

		// 商品模块（公开接口）
		v1.GET("/variants", catalogHandler.List)

		// 购物车模块（需要登录）
		cart := v1.Group("/cart")
		cart.Use(authMiddleware.RequireAuth())
		{
			cart.GET("", cartHandler.Get)
			cart.DELETE("", cartHandler.Clear)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items", cartHandler.UpdateItem)
			cart.DELETE("/items/:variant_id", cartHandler.RemoveItem)
		}

		// 订单模块（需要登录）
		orders := v1.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			orders.POST("", orderHandler.Place)
			orders.POST("/checkout", orderHandler.Checkout)
			orders.GET("", orderHandler.List)
			orders.GET("/:id", orderHandler.Get)
		}

		// 后台模块
		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireAuth())
		{
			variants := admin.Group("/variants")
			variants.Use(authMiddleware.RequireRole(user.RoleMarketing, user.RoleAdmin))
			{
				variants.POST("", catalogHandler.Publish)
				variants.POST("/:id/restock", catalogHandler.Restock)
				variants.DELETE("/:id", catalogHandler.Deactivate)
			}

			sales := admin.Group("")
			sales.Use(authMiddleware.RequireRole(user.RoleSales, user.RoleAdmin))
			{
				sales.GET("/payments", paymentHandler.ListPending)
				sales.POST("/payments/:id/transition", paymentHandler.Transition)
				sales.POST("/reservations/sweep", paymentHandler.Sweep)
				sales.POST("/orders/:id/ship", orderHandler.Ship)
				sales.POST("/orders/:id/complete", orderHandler.Complete)
			}
		}
	}

	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
//
// 依赖链示例：
// *gin.Engine 需要 → *handler.PaymentHandler
// *handler.PaymentHandler 需要 → *apppayment.TransitionUseCase
// *apppayment.TransitionUseCase 需要 → payment.Repository 和 *stock.Ledger
// *stock.Ledger 需要 → catalog.Repository 和 stock.Repository
// 各Repository 需要 → *gorm.DB
// *gorm.DB 需要 → *config.Config
//
// Wire会按正确的顺序调用所有构造函数
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		// 基础设施层
		infrastructureSet,

		// 仓储层
		repositorySet,

		// 领域层
		domainSet,

		// 通知发布者
		provideSender,

		// 应用层
		applicationSet,

		// 中间件层
		middlewareSet,

		// 接口层
		handlerSet,

		// Gin引擎
		provideGinEngine,
	)

	// 返回值是占位符，实际运行时会被wire_gen.go替代
	return nil, nil
}
