package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/store"
)

type fakeClient struct {
	values  map[string]string
	getErr  error
	sets    int
	deleted []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{values: map[string]string{}}
}

func (f *fakeClient) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.sets++
	f.values[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.values, k)
	}
	f.deleted = append(f.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

type fakeDirectory struct {
	getFn func(ctx context.Context, professionalID string) (domain.ScheduleSpec, error)
	putFn func(ctx context.Context, professionalID string, spec domain.ScheduleSpec) error
	calls int
}

func (f *fakeDirectory) GetSchedule(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
	if f.getFn == nil {
		panic("GetSchedule not configured")
	}
	f.calls++
	return f.getFn(ctx, professionalID)
}

func (f *fakeDirectory) PutSchedule(ctx context.Context, professionalID string, spec domain.ScheduleSpec) error {
	if f.putFn == nil {
		panic("PutSchedule not configured")
	}
	return f.putFn(ctx, professionalID, spec)
}

func mondaySpec(t *testing.T) domain.ScheduleSpec {
	t.Helper()
	spec, err := domain.ParseScheduleSpec(map[string]*domain.RawWindow{"monday": {Open: "08:00", Close: "10:00"}})
	if err != nil {
		t.Fatalf("ParseScheduleSpec error: %v", err)
	}
	return spec
}

func TestSchedules_ReadThroughPopulatesCache(t *testing.T) {
	spec := mondaySpec(t)
	dir := &fakeDirectory{getFn: func(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
		return spec, nil
	}}
	client := newFakeClient()
	c := NewSchedules(dir, client, time.Minute, nil)

	for i := 0; i < 3; i++ {
		got, err := c.GetSchedule(context.Background(), "p1")
		if err != nil {
			t.Fatalf("GetSchedule error: %v", err)
		}
		w, ok := got.Window(domain.Monday)
		if !ok || w.Open != domain.ClockOf(8, 0) || w.Close != domain.ClockOf(10, 0) {
			t.Fatalf("monday window = %+v ok=%v", w, ok)
		}
	}
	if dir.calls != 1 {
		t.Fatalf("directory calls = %d, want 1", dir.calls)
	}
	if client.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", client.sets)
	}
}

func TestSchedules_RedisFailureFallsThrough(t *testing.T) {
	spec := mondaySpec(t)
	dir := &fakeDirectory{getFn: func(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
		return spec, nil
	}}
	client := newFakeClient()
	client.getErr = errors.New("connection refused")
	c := NewSchedules(dir, client, time.Minute, nil)

	if _, err := c.GetSchedule(context.Background(), "p1"); err != nil {
		t.Fatalf("GetSchedule error: %v", err)
	}
	if dir.calls != 1 {
		t.Fatalf("directory calls = %d, want 1", dir.calls)
	}
}

func TestSchedules_NotFoundIsNotCached(t *testing.T) {
	dir := &fakeDirectory{getFn: func(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
		return domain.ScheduleSpec{}, store.ErrNotFound
	}}
	client := newFakeClient()
	c := NewSchedules(dir, client, time.Minute, nil)

	_, err := c.GetSchedule(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if client.sets != 0 {
		t.Fatalf("cache sets = %d, want 0", client.sets)
	}
}

func TestSchedules_PutScheduleInvalidates(t *testing.T) {
	var stored domain.ScheduleSpec
	dir := &fakeDirectory{
		putFn: func(ctx context.Context, professionalID string, spec domain.ScheduleSpec) error {
			stored = spec
			return nil
		},
	}
	client := newFakeClient()
	client.values[scheduleKey("p1")] = `{"monday":null}`
	c := NewSchedules(dir, client, time.Minute, nil)

	if err := c.PutSchedule(context.Background(), "p1", mondaySpec(t)); err != nil {
		t.Fatalf("PutSchedule error: %v", err)
	}
	if stored.IsEmpty() {
		t.Fatalf("backing directory not written")
	}
	if _, ok := client.values[scheduleKey("p1")]; ok {
		t.Fatalf("cached entry still present")
	}
}
