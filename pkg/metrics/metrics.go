// Package metrics 提供基于Prometheus的指标收集
//
// 指标类型速查：
// - Counter（计数器）：只增不减（请求总数、下单总数、库存不足次数）
// - Gauge（仪表盘）：可增可减的瞬时值（处理中请求数）
// - Histogram（直方图）：观测值分布，自动计算分位数（请求耗时）
//
// 命名规范：
// - Counter以_total结尾；Histogram以单位结尾（_seconds）
// - 标签只用低基数维度（method/path/status/transition），
//   不要用user_id、order_no这类高基数值做标签
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method（GET/POST）、path、status（业务码）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 下单指标

	// OrdersPlacedTotal 下单成功总数
	OrdersPlacedTotal prometheus.Counter

	// OrdersRejectedTotal 下单失败总数
	// 标签：reason（insufficient_stock/invalid_cart/other）
	OrdersRejectedTotal *prometheus.CounterVec

	// OrderPlacementDuration 下单事务耗时
	OrderPlacementDuration prometheus.Histogram

	// 支付状态机指标

	// PaymentTransitionsTotal 支付状态转换总数
	// 标签：target（approved/rejected/cancelled/pending_approval）、result（ok/invalid/error)
	PaymentTransitionsTotal *prometheus.CounterVec

	// ReservationsSweptTotal 过期预留清理（取消）总数
	ReservationsSweptTotal prometheus.Counter

	// 通知指标

	// NotificationsPublishedTotal 通知发布总数
	// 标签：result（ok/failed/circuit_open）
	NotificationsPublishedTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec
)

// InitMetrics 初始化并注册所有指标
// 说明：promauto自动注册到默认Registry，/metrics端点由promhttp暴露
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "HTTP请求总数",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP请求耗时",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "path"})

	HTTPRequestsInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_http_requests_in_progress",
		Help: "正在处理的HTTP请求数",
	})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "下单成功总数",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_rejected_total",
		Help: "下单失败总数",
	}, []string{"reason"})

	OrderPlacementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_placement_duration_seconds",
		Help:    "下单事务耗时",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	PaymentTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_payment_transitions_total",
		Help: "支付状态转换总数",
	}, []string{"target", "result"})

	ReservationsSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_reservations_swept_total",
		Help: "过期预留清理总数",
	})

	NotificationsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_notifications_published_total",
		Help: "通知发布总数",
	}, []string{"result"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "storefront_circuit_breaker_state",
		Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
	}, []string{"name"})
}

// =========================================
// 辅助函数（nil安全）
// =========================================
// 说明：未调用InitMetrics时（如单元测试）这些函数是空操作，
// 业务代码不必关心指标是否已注册

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	if counter != nil {
		counter.Inc()
	}
}

// IncCounterVec 递增带标签的Counter
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter != nil {
		counter.With(labels).Inc()
	}
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	if gauge != nil {
		gauge.Inc()
	}
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	if gauge != nil {
		gauge.Dec()
	}
}

// SetGaugeVec 设置带标签的Gauge
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge != nil {
		gauge.With(labels).Set(value)
	}
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram != nil {
		histogram.Observe(value)
	}
}

// ObserveHistogramVec 记录带标签的Histogram观测值
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram != nil {
		histogram.With(labels).Observe(value)
	}
}
