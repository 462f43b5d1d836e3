package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/store"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

type AppointmentRepo struct {
	db bun.IDB
}

func NewAppointmentRepo(db bun.IDB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

var _ store.AppointmentStore = (*AppointmentRepo)(nil)

func activeStatusValues() []string {
	out := make([]string, 0, len(domain.ActiveStatuses))
	for _, s := range domain.ActiveStatuses {
		out = append(out, string(s))
	}
	return out
}

func (r *AppointmentRepo) QueryActiveAppointments(ctx context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error) {
	var rows []activeSlotRow
	err := r.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model((*appointmentRow)(nil)).
			ColumnExpr("slot_date").
			ColumnExpr("to_char(slot_time, 'HH24:MI') AS slot_time").
			Where("professional_id = ?", professionalID).
			Where("slot_date BETWEEN ? AND ?", from.String(), to.String()).
			Where("status IN (?)", bun.In(activeStatusValues())).
			OrderExpr("slot_date ASC, slot_time ASC").
			Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("query active appointments: %w", err)
	}

	out := make([]domain.ActiveSlot, 0, len(rows))
	for _, row := range rows {
		s, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// InsertIfAbsent relies on appointments_active_slot_uniq, a partial unique
// index over (professional_id, slot_date, slot_time) for active statuses.
// The check and the insert are one statement.
func (r *AppointmentRepo) InsertIfAbsent(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	row := toAppointmentRow(appt)

	res, err := r.db.NewInsert().
		Model(&row).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgForeignKeyViolation:
				return domain.Appointment{}, fmt.Errorf("professional %s: %w", appt.ProfessionalID, store.ErrNotFound)
			case pgUniqueViolation:
				return domain.Appointment{}, store.ErrConflict
			}
		}
		return domain.Appointment{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 1 {
		return row.toDomain()
	}

	// Nothing inserted: either the slot is held or the id was used before.
	existing, err := r.GetAppointment(ctx, row.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Appointment{}, store.ErrConflict
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	if !existing.SameClaim(appt) {
		return domain.Appointment{}, store.ErrIdempotencyConflict
	}
	return existing, nil
}

func selectAppointment(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Column("id", "professional_id", "slot_date", "status", "payload", "override", "override_reason", "created_at", "updated_at").
		ColumnExpr("to_char(slot_time, 'HH24:MI') AS slot_time")
}

func (r *AppointmentRepo) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var row appointmentRow
	err := selectAppointment(r.db.NewSelect().Model(&row)).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Appointment{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	return row.toDomain()
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.AppointmentStatus) (domain.Appointment, error) {
	res, err := r.db.NewUpdate().
		Model((*appointmentRow)(nil)).
		Set("status = ?", string(to)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status = ?", string(from)).
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.Appointment{}, store.ErrConflict
		}
		return domain.Appointment{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}

	appt, err := r.GetAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrConflict
	}
	return appt, nil
}
