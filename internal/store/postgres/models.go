package postgres

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"slotkeeper/backend/internal/domain"
)

type professionalRow struct {
	bun.BaseModel `bun:"table:professionals,alias:p"`

	ID          string                       `bun:"id,pk"`
	DisplayName string                       `bun:"display_name,notnull"`
	Schedule    map[string]*domain.RawWindow `bun:"schedule,type:jsonb,notnull"`
	CreatedAt   time.Time                    `bun:"created_at,notnull"`
	UpdatedAt   time.Time                    `bun:"updated_at,notnull"`
}

func (p *professionalRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		p.UpdatedAt = now
	}
	return nil
}

// appointmentRow is the storage shape of domain.Appointment. slot_time is a
// Postgres time column; reads go through to_char so seconds never leak out.
type appointmentRow struct {
	bun.BaseModel `bun:"table:appointments,alias:a"`

	ID             uuid.UUID             `bun:"id,pk,type:uuid"`
	ProfessionalID string                `bun:"professional_id,notnull"`
	SlotDate       time.Time             `bun:"slot_date,type:date,notnull"`
	SlotTime       string                `bun:"slot_time,type:time,notnull"`
	Status         string                `bun:"status,notnull"`
	Payload        domain.BookingPayload `bun:"payload,type:jsonb,notnull"`
	Override       bool                  `bun:"override,notnull"`
	OverrideReason string                `bun:"override_reason,notnull"`
	CreatedAt      time.Time             `bun:"created_at,notnull"`
	UpdatedAt      time.Time             `bun:"updated_at,notnull"`
}

func (a *appointmentRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

type activeSlotRow struct {
	SlotDate time.Time `bun:"slot_date"`
	SlotTime string    `bun:"slot_time"`
}

func toAppointmentRow(a domain.Appointment) appointmentRow {
	return appointmentRow{
		ID:             a.ID,
		ProfessionalID: a.ProfessionalID,
		SlotDate:       a.Date.In(time.UTC),
		SlotTime:       a.Time.String(),
		Status:         string(a.Status),
		Payload:        a.Payload,
		Override:       a.Override,
		OverrideReason: string(a.OverrideReason),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (a appointmentRow) toDomain() (domain.Appointment, error) {
	clock, err := domain.NormalizeClock(a.SlotTime)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("appointment %s: slot_time %q: %w", a.ID, a.SlotTime, err)
	}
	status, ok := domain.ParseAppointmentStatus(a.Status)
	if !ok {
		return domain.Appointment{}, fmt.Errorf("appointment %s: unknown status %q", a.ID, a.Status)
	}
	return domain.Appointment{
		ID:             a.ID,
		ProfessionalID: a.ProfessionalID,
		Date:           civil.DateOf(a.SlotDate),
		Time:           clock,
		Status:         status,
		Payload:        a.Payload,
		Override:       a.Override,
		OverrideReason: domain.OverrideReason(a.OverrideReason),
		CreatedAt:      a.CreatedAt.UTC(),
		UpdatedAt:      a.UpdatedAt.UTC(),
	}, nil
}

func (r activeSlotRow) toDomain() (domain.ActiveSlot, error) {
	clock, err := domain.NormalizeClock(r.SlotTime)
	if err != nil {
		return domain.ActiveSlot{}, fmt.Errorf("slot_time %q: %w", r.SlotTime, err)
	}
	return domain.ActiveSlot{Date: civil.DateOf(r.SlotDate), Time: clock}, nil
}
