package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

// SlotCache keeps generated availability per (provider, service, date).
// Keys embed a per-provider epoch; any calendar mutation bumps the epoch,
// orphaning every cached day for that provider at once. A nil cache is a
// valid no-op.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSlotCache(rdb *redis.Client) *SlotCache {
	return &SlotCache{
		rdb: rdb,
		ttl: 60 * time.Second,
	}
}

func (c *SlotCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *SlotCache) epoch(ctx context.Context, providerID uint) int64 {
	n, err := c.rdb.Get(ctx, fmt.Sprintf("avail_epoch:%d", providerID)).Int64()
	if err != nil {
		return 0
	}
	return n
}

func (c *SlotCache) key(ctx context.Context, providerID, serviceID uint, date string) string {
	return fmt.Sprintf("avail:%d:%d:%d:%s", providerID, c.epoch(ctx, providerID), serviceID, date)
}

func (c *SlotCache) Get(
	ctx context.Context,
	providerID uint,
	serviceID uint,
	date string,
) ([]domain.TimeSlot, bool) {

	if !c.enabled() {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, c.key(ctx, providerID, serviceID, date)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []domain.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *SlotCache) Set(
	ctx context.Context,
	providerID uint,
	serviceID uint,
	date string,
	slots []domain.TimeSlot,
) {

	if !c.enabled() {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, c.key(ctx, providerID, serviceID, date), raw, c.ttl).Err(); err != nil {
		log.Println("slot cache set failed:", err)
	}
}

// Invalidate drops every cached day for the provider by bumping its epoch.
func (c *SlotCache) Invalidate(ctx context.Context, providerID uint) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, fmt.Sprintf("avail_epoch:%d", providerID)).Err(); err != nil {
		log.Println("slot cache invalidation failed:", err)
	}
}
