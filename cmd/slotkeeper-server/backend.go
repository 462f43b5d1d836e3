package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"slotkeeper/backend/internal/config"
	"slotkeeper/backend/internal/metrics"
	"slotkeeper/backend/internal/service/scheduling"
	"slotkeeper/backend/internal/store"
	"slotkeeper/backend/internal/store/cache"
	"slotkeeper/backend/internal/store/memory"
	"slotkeeper/backend/internal/store/postgres"
)

type backend struct {
	directory    cache.ScheduleDirectory
	schedules    cache.ScheduleDirectory
	appointments store.AppointmentStore

	db    *bun.DB
	redis *redis.Client
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn("using in-memory store; claims are arbitrated within this process only")
		mem := memory.New()
		b.directory = mem
		b.appointments = mem
	default:
		log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
		db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err != nil {
			args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
			log.Error("database connection failed", args...)
			return nil, err
		}
		b.db = db
		b.directory = postgres.NewProfessionalRepo(db)
		b.appointments = postgres.NewAppointmentRepo(db)
	}

	b.schedules = b.directory
	if cfg.RedisAddr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		b.schedules = cache.NewSchedules(b.directory, b.redis, cfg.ScheduleCacheTTL, log)
		log.Info("schedule cache enabled", slog.String("redis_addr", cfg.RedisAddr), slog.Duration("ttl", cfg.ScheduleCacheTTL))
	}
	return b, nil
}

// service wires the engine. Claims always read the uncached directory.
func (b *backend) service(cfg config.Config, rec scheduling.Recorder, log *slog.Logger) *scheduling.Service {
	return scheduling.NewService(scheduling.Deps{
		Schedules:    b.schedules,
		Directory:    b.directory,
		Writer:       b.schedules,
		Appointments: b.appointments,
		Recorder:     rec,
		Logger:       log,
	}, scheduling.Options{
		Location:        cfg.Location,
		DefaultInterval: cfg.DefaultInterval,
		DefaultMaxWeeks: cfg.LookaheadDefaultWeeks,
		MaxWeeksLimit:   cfg.LookaheadMaxWeeks,
	})
}

func (b *backend) ready(ctx context.Context) error {
	var errs []error
	if b.db != nil {
		errs = append(errs, postgres.Ping(ctx, b.db))
	}
	if b.redis != nil {
		errs = append(errs, b.redis.Ping(ctx).Err())
	}
	return errors.Join(errs...)
}

func (b *backend) close(log *slog.Logger) {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Warn("redis close failed", slog.Any("err", err))
		}
	}
	if err := postgres.Close(b.db); err != nil {
		log.Warn("database close failed", slog.Any("err", err))
	}
}

var _ scheduling.Recorder = (*metrics.Metrics)(nil)
