package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/Gunvolt24/salesops/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// Проверка, что OrderCache удовлетворяет интерфейсу OrderCache.
var _ ports.OrderCache = (*OrderCache)(nil)

const orderKeyPrefix = "order:"

// OrderCache — кэш заказов в Redis: JSON-значение по ключу "order:{id}" с TTL.
// Общий для нескольких экземпляров сервиса. Ошибки Redis при чтении считаются промахом.
type OrderCache struct {
	rdb *redis.Client
	ttl time.Duration
	log ports.Logger
}

// NewOrderCache — конструктор OrderCache. ttl <= 0 — без истечения.
func NewOrderCache(rdb *redis.Client, ttl time.Duration, log ports.Logger) *OrderCache {
	return &OrderCache{rdb: rdb, ttl: ttl, log: log}
}

// Get — заказ по ID; (nil, false) при промахе или недоступности Redis.
func (c *OrderCache) Get(ctx context.Context, orderID string) (*domain.Order, bool) {
	raw, err := c.rdb.Get(ctx, key(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		c.log.Warnf(ctx, "redis get failed order=%s err=%v", orderID, err)
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}

	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		c.log.Warnf(ctx, "redis decode failed order=%s err=%v", orderID, err)
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheOps.WithLabelValues("hit").Inc()
	return &order, true
}

// Set — записать заказ с TTL.
func (c *OrderCache) Set(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return nil
	}
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	if err := c.rdb.Set(ctx, key(order.ID), raw, c.expiration()).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete — удалить заказ из кэша.
func (c *OrderCache) Delete(ctx context.Context, orderID string) error {
	if err := c.rdb.Del(ctx, key(orderID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// WarmUp — массовая запись одним pipeline.
func (c *OrderCache) WarmUp(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for _, order := range orders {
		if order == nil || order.ID == "" {
			continue
		}
		raw, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("encode order: %w", err)
		}
		pipe.Set(ctx, key(order.ID), raw, c.expiration())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache warm-up: %w", err)
	}
	return nil
}

// expiration — 0 у go-redis означает «без TTL».
func (c *OrderCache) expiration() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	return c.ttl
}

func key(orderID string) string { return orderKeyPrefix + orderID }
