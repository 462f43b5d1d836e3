package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/store"
)

const keyPrefix = "slotkeeper:schedule:"

// Client is the subset of *redis.Client used by the schedule cache.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ScheduleDirectory is the directory plus the write path that keeps the
// cache coherent.
type ScheduleDirectory interface {
	store.ProfessionalDirectory
	store.ScheduleWriter
}

// Schedules is a read-through cache in front of a ScheduleDirectory. Redis
// failures fall through to the backing directory.
type Schedules struct {
	next   ScheduleDirectory
	client Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewSchedules(next ScheduleDirectory, client Client, ttl time.Duration, logger *slog.Logger) *Schedules {
	if logger == nil {
		logger = slog.Default()
	}
	return &Schedules{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "schedule_cache")),
	}
}

var (
	_ store.ProfessionalDirectory = (*Schedules)(nil)
	_ store.ScheduleWriter        = (*Schedules)(nil)
)

func scheduleKey(professionalID string) string {
	return keyPrefix + professionalID
}

func (c *Schedules) GetSchedule(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
	if c.client == nil {
		return c.next.GetSchedule(ctx, professionalID)
	}

	key := scheduleKey(professionalID)
	spec, err := c.lookup(ctx, key)
	if err == nil {
		return spec, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "schedule cache read failed", slog.String("key", key), slog.Any("err", err))
	}

	spec, err = c.next.GetSchedule(ctx, professionalID)
	if err != nil {
		return domain.ScheduleSpec{}, err
	}

	payload, err := json.Marshal(spec.Raw())
	if err != nil {
		return spec, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "schedule cache write failed", slog.String("key", key), slog.Any("err", err))
	}
	return spec, nil
}

func (c *Schedules) lookup(ctx context.Context, key string) (domain.ScheduleSpec, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.ScheduleSpec{}, err
	}
	var doc map[string]*domain.RawWindow
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.ScheduleSpec{}, fmt.Errorf("unmarshal cached schedule %s: %w", key, err)
	}
	spec, err := domain.ParseScheduleSpec(doc)
	if err != nil {
		return domain.ScheduleSpec{}, fmt.Errorf("cached schedule %s: %w", key, err)
	}
	return spec, nil
}

// PutSchedule writes through and drops the cached entry.
func (c *Schedules) PutSchedule(ctx context.Context, professionalID string, spec domain.ScheduleSpec) error {
	if err := c.next.PutSchedule(ctx, professionalID, spec); err != nil {
		return err
	}
	if c.client == nil {
		return nil
	}
	key := scheduleKey(professionalID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
