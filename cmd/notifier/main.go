package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/pkg/mq"
)

// event MQ消息体, 与发布端保持一致
type event struct {
	RecipientID uint                   `json:"recipient_id"`
	Template    string                 `json:"template"`
	Payload     map[string]interface{} `json:"payload"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// main 通知进程入口
// 说明：
// 1. 订阅 order.* 与 payment.* 两类路由键
// 2. 按模板ID渲染文案, 这里以日志代替真实邮件网关
// 3. 渲染失败的消息Nack重新入队, 由MQ负责重试
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - Exchange: %s\n", cfg.MQ.Exchange)
	fmt.Printf("  - Queue: %s\n", cfg.MQ.Queue)

	consumer, err := mq.NewConsumer(
		cfg.MQ.URL,
		cfg.MQ.Exchange,
		"topic",
		cfg.MQ.Queue,
		[]string{"order.*", "payment.*"},
	)
	if err != nil {
		log.Fatalf("初始化消费者失败: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		fmt.Println("\n收到退出信号, 停止消费")
		cancel()
	}()

	fmt.Printf("\n📨 通知进程启动\n\n")

	if err := consumer.Consume(ctx, handleEvent); err != nil {
		log.Fatalf("消费失败: %v", err)
	}
}

// handleEvent 按路由键渲染通知文案
func handleEvent(routingKey string, body []byte) error {
	var evt event
	if err := json.Unmarshal(body, &evt); err != nil {
		// 消息体损坏, 重试也不会成功, 记日志后Ack丢弃
		log.Printf("[ERROR] 消息解析失败, 丢弃: routing_key=%s err=%v", routingKey, err)
		return nil
	}

	subject, content := render(evt)
	// TODO: 接入真实邮件网关后把日志替换成SMTP发送
	log.Printf("发送通知: 用户=%d 模板=%s 标题=%q 内容=%q", evt.RecipientID, evt.Template, subject, content)
	return nil
}

// render 模板ID → 邮件标题和正文
func render(evt event) (subject, content string) {
	switch evt.Template {
	case notification.TemplateOrderPlaced:
		return "订单已创建",
			fmt.Sprintf("您的订单%v已创建, 金额%v元, 请尽快完成转账。", evt.Payload["order_no"], evt.Payload["total"])
	case notification.TemplatePaymentApproved:
		return "支付已确认",
			fmt.Sprintf("订单%v的转账已确认, 我们将尽快发货。", evt.Payload["order_no"])
	case notification.TemplatePaymentRejected:
		return "支付被驳回",
			fmt.Sprintf("订单%v的转账凭证未通过审核: %v", evt.Payload["order_no"], evt.Payload["reason"])
	case notification.TemplateOrderCancelled:
		if reason, ok := evt.Payload["reason"]; ok {
			return "订单已取消", fmt.Sprintf("订单%v已取消: %v", evt.Payload["order_no"], reason)
		}
		return "订单已取消", fmt.Sprintf("订单%v已取消。", evt.Payload["order_no"])
	default:
		return "通知", fmt.Sprintf("事件%s: %v", evt.Template, evt.Payload)
	}
}
