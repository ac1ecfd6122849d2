package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	domainnotification "github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/internal/domain/stock"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/internal/infrastructure/notification"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/storefront/pkg/metrics"

	apppayment "github.com/xiebiao/storefront/internal/application/payment"
)

// main 过期预留清理进程入口
// 说明：
// 1. 挂单超过TTL的支付单取消, 订单取消, 库存释放
// 2. 默认按配置的间隔常驻运行, -once只跑一轮(方便crontab接管调度)
// 3. 清理是幂等的, 多个实例同时跑也只会各自抢到不同的行锁
func main() {
	once := flag.Bool("once", false, "只执行一轮清理后退出")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 预留TTL: %s\n", cfg.Reservation.TTL)
	fmt.Printf("  - 清理间隔: %s\n", cfg.Reservation.SweepInterval)
	fmt.Printf("  - 单批数量: %d\n", cfg.Reservation.SweepBatch)

	metrics.InitMetrics()

	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 通知降级策略与api进程一致: MQ不可用不影响清理本身
	var sender domainnotification.Sender
	publisher, err := notification.NewEventPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		log.Printf("[WARN] 初始化RabbitMQ失败, 通知降级为空实现: %v", err)
		sender = domainnotification.NopSender{}
	} else {
		sender = publisher
		defer publisher.Close()
	}

	variantRepo := mysql.NewVariantRepository(db)
	movementRepo := mysql.NewMovementRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)
	txManager := mysql.NewTxManager(db)
	ledger := stock.NewLedger(variantRepo, movementRepo)
	sweepUseCase := apppayment.NewSweepUseCase(paymentRepo, orderRepo, ledger, txManager, sender, cfg.Reservation.SweepBatch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		fmt.Println("\n收到退出信号, 停止清理")
		cancel()
	}()

	if *once {
		runSweep(ctx, sweepUseCase, cfg.Reservation.TTL)
		return
	}

	fmt.Printf("\n🧹 清理进程启动, 每%s执行一轮\n\n", cfg.Reservation.SweepInterval)

	// 启动即跑一轮, 避免重启后等一个完整间隔
	runSweep(ctx, sweepUseCase, cfg.Reservation.TTL)

	ticker := time.NewTicker(cfg.Reservation.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runSweep(ctx, sweepUseCase, cfg.Reservation.TTL)
		}
	}
}

func runSweep(ctx context.Context, uc *apppayment.SweepUseCase, ttl time.Duration) {
	start := time.Now()
	swept, err := uc.Execute(ctx, ttl)
	if err != nil {
		log.Printf("[ERROR] 清理执行失败: %v", err)
		return
	}
	log.Printf("清理完成: 取消%d个过期挂单, 耗时%s", swept, time.Since(start).Round(time.Millisecond))
}
