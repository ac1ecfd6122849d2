package payment

import (
	"fmt"
	"math/rand"
	"time"
)

// GeneratePaymentNo 生成支付单号
// 格式:PAY + 时间戳(秒) + 6位随机数(与订单号同套路)
func GeneratePaymentNo() string {
	timestamp := time.Now().Unix()
	random := rand.Intn(1000000)
	return fmt.Sprintf("PAY%d%06d", timestamp, random)
}
