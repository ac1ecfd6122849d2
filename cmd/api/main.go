package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appcart "github.com/xiebiao/storefront/internal/application/cart"
	appcatalog "github.com/xiebiao/storefront/internal/application/catalog"
	apporder "github.com/xiebiao/storefront/internal/application/order"
	apppayment "github.com/xiebiao/storefront/internal/application/payment"
	appuser "github.com/xiebiao/storefront/internal/application/user"
	domainnotification "github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/internal/domain/stock"
	"github.com/xiebiao/storefront/internal/domain/user"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/internal/infrastructure/notification"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/storefront/internal/interface/http/handler"
	"github.com/xiebiao/storefront/internal/interface/http/middleware"
	"github.com/xiebiao/storefront/pkg/jwt"
	"github.com/xiebiao/storefront/pkg/metrics"
	"github.com/xiebiao/storefront/pkg/response"
)

// main 主程序入口
// 说明：手动依赖注入（wire.go中有等价的Wire配置, `wire gen ./cmd/api`可生成）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())
	fmt.Printf("  - 预留TTL: %s\n", cfg.Reservation.TTL)

	// 2. 初始化指标
	metrics.InitMetrics()

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化通知发布者(RabbitMQ)
	// MQ不可用时降级为空实现: 通知是尽力而为, 不阻塞服务启动
	var sender domainnotification.Sender
	publisher, err := notification.NewEventPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		log.Printf("[WARN] 初始化RabbitMQ失败, 通知降级为空实现: %v", err)
		sender = domainnotification.NopSender{}
	} else {
		sender = publisher
		defer publisher.Close()
	}

	// 6. 依赖注入（手动组装）
	// 学习要点：依赖注入链
	// Repository ← Ledger/Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	variantRepo := mysql.NewVariantRepository(db)
	movementRepo := mysql.NewMovementRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	cartStore := redis.NewCartStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	ledger := stock.NewLedger(variantRepo, movementRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	publishUseCase := appcatalog.NewPublishVariantUseCase(variantRepo)
	listVariantsUseCase := appcatalog.NewListVariantsUseCase(variantRepo)
	restockUseCase := appcatalog.NewRestockUseCase(ledger, txManager)
	deactivateUseCase := appcatalog.NewDeactivateVariantUseCase(variantRepo)
	cartUseCase := appcart.NewCartUseCase(cartStore, variantRepo)
	placeOrderUseCase := apporder.NewPlaceOrderUseCase(orderRepo, paymentRepo, ledger, txManager, sender)
	checkoutUseCase := apporder.NewCheckoutUseCase(placeOrderUseCase, cartStore)
	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo, paymentRepo)
	listOrdersUseCase := apporder.NewListOrdersUseCase(orderRepo)
	fulfillmentUseCase := apporder.NewFulfillmentUseCase(orderRepo, txManager)
	transitionUseCase := apppayment.NewTransitionUseCase(paymentRepo, orderRepo, ledger, txManager, sender)
	listPendingUseCase := apppayment.NewListPendingUseCase(paymentRepo)
	sweepUseCase := apppayment.NewSweepUseCase(paymentRepo, orderRepo, ledger, txManager, sender, cfg.Reservation.SweepBatch)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	catalogHandler := handler.NewCatalogHandler(publishUseCase, listVariantsUseCase, restockUseCase, deactivateUseCase)
	cartHandler := handler.NewCartHandler(cartUseCase)
	orderHandler := handler.NewOrderHandler(placeOrderUseCase, checkoutUseCase, getOrderUseCase, listOrdersUseCase, fulfillmentUseCase)
	paymentHandler := handler.NewPaymentHandler(transitionUseCase, listPendingUseCase, sweepUseCase, cfg.Reservation.TTL)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 7. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	// 8. 注册路由
	registerRoutes(r, userHandler, catalogHandler, cartHandler, orderHandler, paymentHandler, authMiddleware)

	// 9. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   指标采集: http://localhost%s/metrics\n", addr)
	fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	catalogHandler *handler.CatalogHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 用户模块（公开接口，不需要登录）
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

		// 后台模块（角色在路由边界校验一次, 用例内还有兜底校验）
		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireAuth())
		{
			// 商品管理: marketing/admin
			variants := admin.Group("/variants")
			variants.Use(authMiddleware.RequireRole(user.RoleMarketing, user.RoleAdmin))
			{
				variants.POST("", catalogHandler.Publish)
				variants.POST("/:id/restock", catalogHandler.Restock)
				variants.DELETE("/:id", catalogHandler.Deactivate)
			}

			// 支付审批与履约: sales/admin
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
}
