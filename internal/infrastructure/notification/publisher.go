// Package notification 通知发送的基础设施实现
// 通过RabbitMQ发布事件, 由cmd/notifier消费并渲染邮件
package notification

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/pkg/circuitbreaker"
	"github.com/xiebiao/storefront/pkg/metrics"
	"github.com/xiebiao/storefront/pkg/mq"
)

// EventPublisher 通知发送器(RabbitMQ实现)
// 设计说明:
// 1. 实现domain/notification.Sender接口, 核心业务不感知MQ
// 2. 模板ID即路由键(order.placed/payment.approved/...),
//    消费端按路由键选择邮件模板
// 3. 熔断保护: MQ持续不可用时快速失败, 不拖慢下单/审批请求
//    通知本身是fire-and-forget, 熔断丢失的通知可以接受
type EventPublisher struct {
	publisher *mq.Publisher
	breaker   *circuitbreaker.CircuitBreaker
}

// NewEventPublisher 创建通知发送器
func NewEventPublisher(url, exchange string) (*EventPublisher, error) {
	publisher, err := mq.NewPublisher(url, exchange, "topic")
	if err != nil {
		return nil, err
	}

	breaker := circuitbreaker.NewCircuitBreaker("notification-mq", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("[WARN] 熔断器状态变化 name=%s %s → %s", name, from, to)
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	})

	return &EventPublisher{
		publisher: publisher,
		breaker:   breaker,
	}, nil
}

// event MQ消息体
type event struct {
	RecipientID uint                   `json:"recipient_id"`
	Template    string                 `json:"template"`
	Payload     map[string]interface{} `json:"payload"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// Send 发布通知事件
// 熔断打开时直接返回ErrOpenState, 调用方按发送失败处理(记日志)
func (p *EventPublisher) Send(ctx context.Context, msg notification.Message) error {
	return p.breaker.Execute(func() error {
		return p.publisher.Publish(msg.Template, event{
			RecipientID: msg.RecipientID,
			Template:    msg.Template,
			Payload:     msg.Payload,
			OccurredAt:  time.Now(),
		})
	})
}

// Close 关闭MQ连接
func (p *EventPublisher) Close() error {
	return p.publisher.Close()
}
