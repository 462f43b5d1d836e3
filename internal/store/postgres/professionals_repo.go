package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/store"
)

type ProfessionalRepo struct {
	db bun.IDB
}

func NewProfessionalRepo(db bun.IDB) *ProfessionalRepo {
	return &ProfessionalRepo{db: db}
}

var (
	_ store.ProfessionalDirectory = (*ProfessionalRepo)(nil)
	_ store.ScheduleWriter        = (*ProfessionalRepo)(nil)
)

// GetSchedule validates the stored document on every load. A schedule that
// does not parse is reported, never treated as "no restriction".
func (r *ProfessionalRepo) GetSchedule(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
	var row professionalRow
	err := r.db.NewSelect().
		Model(&row).
		Column("id", "schedule").
		Where("id = ?", professionalID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScheduleSpec{}, store.ErrNotFound
	}
	if err != nil {
		return domain.ScheduleSpec{}, err
	}

	spec, err := domain.ParseScheduleSpec(row.Schedule)
	if err != nil {
		return domain.ScheduleSpec{}, fmt.Errorf("professional %s: %w: %w", professionalID, store.ErrMalformedSchedule, err)
	}
	return spec, nil
}

func (r *ProfessionalRepo) PutSchedule(ctx context.Context, professionalID string, spec domain.ScheduleSpec) error {
	row := professionalRow{
		ID:       professionalID,
		Schedule: spec.Raw(),
	}
	_, err := r.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("schedule = EXCLUDED.schedule").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
