package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/kvstore"
)

// ScheduleCache serves provider schedules from a key-value store and falls
// back to the wrapped source on a miss. Booked appointments are never cached:
// the availability snapshot must see the latest bookings.
type ScheduleCache struct {
	source domain.ScheduleSource
	store  kvstore.Store
	ttl    time.Duration
	log    *zap.Logger
}

func NewScheduleCache(
	source domain.ScheduleSource,
	store kvstore.Store,
	ttl time.Duration,
	log *zap.Logger,
) *ScheduleCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScheduleCache{source: source, store: store, ttl: ttl, log: log}
}

func scheduleKey(providerID uint) string {
	return fmt.Sprintf("schedule:%d", providerID)
}

func (c *ScheduleCache) LoadSchedule(ctx context.Context, providerID uint) (*domain.ScheduleRows, error) {
	key := scheduleKey(providerID)

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var rows domain.ScheduleRows
		if jerr := json.Unmarshal(raw, &rows); jerr == nil {
			return &rows, nil
		}
		c.log.Warn("dropping corrupt schedule cache entry", zap.Uint("provider_id", providerID))
		_ = c.store.Remove(ctx, key)
	case !errors.Is(err, kvstore.ErrNotFound):
		// A cache outage must not take availability down.
		c.log.Warn("schedule cache read failed", zap.Uint("provider_id", providerID), zap.Error(err))
	}

	rows, err := c.source.LoadSchedule(ctx, providerID)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(rows); err == nil {
		if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
			c.log.Warn("schedule cache write failed", zap.Uint("provider_id", providerID), zap.Error(err))
		}
	}
	return rows, nil
}

// Invalidate must be called after every working hours, break or holiday edit.
func (c *ScheduleCache) Invalidate(ctx context.Context, providerID uint) {
	if err := c.store.Remove(ctx, scheduleKey(providerID)); err != nil {
		c.log.Warn("schedule cache invalidation failed", zap.Uint("provider_id", providerID), zap.Error(err))
	}
}
