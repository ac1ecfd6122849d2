package tx

import "context"

// Manager 事务管理器接口
// 设计说明：
// 1. 由domain层定义接口，infrastructure层（mysql.TxManager）实现
// 2. fn内的所有Repository操作共享同一事务（通过context传递事务句柄）
// 3. fn返回error时自动ROLLBACK，返回nil时自动COMMIT
// 4. 抽象成接口是为了让应用层用例可以脱离数据库测试
//    （测试中用直通的假实现替代真实事务）
type Manager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
