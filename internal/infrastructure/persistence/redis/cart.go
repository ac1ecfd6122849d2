package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// cartTTL 购物车闲置过期时间
// 购物车不是订单, 长期不动的车自动清掉, 里面的商品也没有预留库存
const cartTTL = 30 * 24 * time.Hour

// CartStore 购物车存储
// 设计说明：
// 1. 购物车是会话层数据, 放Redis不进MySQL:
//    改动频繁、允许丢失、天然按用户隔离
// 2. Key设计：cart:{user_id}, Hash结构 field=variant_id value=qty
// 3. 加购不预留库存, 库存校验统一放在下单事务内
type CartStore struct {
	client *redis.Client
}

// NewCartStore 创建购物车存储
func NewCartStore(client *redis.Client) *CartStore {
	return &CartStore{client: client}
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

// SetItem 设置购物车行数量(加购/改数量共用, qty<=0等同删除)
func (s *CartStore) SetItem(ctx context.Context, userID uint, variantID uint, qty int) error {
	key := cartKey(userID)

	if qty <= 0 {
		return s.RemoveItem(ctx, userID, variantID)
	}

	if err := s.client.HSet(ctx, key, strconv.FormatUint(uint64(variantID), 10), qty).Err(); err != nil {
		return apperrors.Wrap(err, "保存购物车失败")
	}
	if err := s.client.Expire(ctx, key, cartTTL).Err(); err != nil {
		return apperrors.Wrap(err, "设置购物车过期时间失败")
	}
	return nil
}

// IncrItem 增加购物车行数量(重复加购累加)
func (s *CartStore) IncrItem(ctx context.Context, userID uint, variantID uint, delta int) error {
	key := cartKey(userID)

	newQty, err := s.client.HIncrBy(ctx, key, strconv.FormatUint(uint64(variantID), 10), int64(delta)).Result()
	if err != nil {
		return apperrors.Wrap(err, "更新购物车失败")
	}
	if newQty <= 0 {
		return s.RemoveItem(ctx, userID, variantID)
	}
	if err := s.client.Expire(ctx, key, cartTTL).Err(); err != nil {
		return apperrors.Wrap(err, "设置购物车过期时间失败")
	}
	return nil
}

// RemoveItem 删除购物车行
func (s *CartStore) RemoveItem(ctx context.Context, userID uint, variantID uint) error {
	key := cartKey(userID)

	if err := s.client.HDel(ctx, key, strconv.FormatUint(uint64(variantID), 10)).Err(); err != nil {
		return apperrors.Wrap(err, "删除购物车行失败")
	}
	return nil
}

// GetCart 读取整个购物车
// 返回 variant_id → qty
func (s *CartStore) GetCart(ctx context.Context, userID uint) (map[uint]int, error) {
	key := cartKey(userID)

	raw, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "读取购物车失败")
	}

	cart := make(map[uint]int, len(raw))
	for field, value := range raw {
		variantID, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue // 脏数据跳过
		}
		qty, err := strconv.Atoi(value)
		if err != nil || qty <= 0 {
			continue
		}
		cart[uint(variantID)] = qty
	}
	return cart, nil
}

// Clear 清空购物车(下单成功后调用)
func (s *CartStore) Clear(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, "清空购物车失败")
	}
	return nil
}
