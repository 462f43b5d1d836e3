package store

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"slotkeeper/backend/internal/domain"
)

// ProfessionalDirectory resolves the current weekly schedule of a professional.
type ProfessionalDirectory interface {
	// GetSchedule returns ErrNotFound for unknown professionals and wraps
	// ErrMalformedSchedule when the stored schedule fails validation.
	GetSchedule(ctx context.Context, professionalID string) (domain.ScheduleSpec, error)
}

// ScheduleWriter is used by the professional-management collaborator and by
// seeding tools. The engine never writes schedules during a computation.
type ScheduleWriter interface {
	PutSchedule(ctx context.Context, professionalID string, spec domain.ScheduleSpec) error
}

type AppointmentStore interface {
	// QueryActiveAppointments returns pending and confirmed slots with a date in
	// [from, to] from one consistent snapshot.
	QueryActiveAppointments(ctx context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error)

	// InsertIfAbsent atomically inserts appt unless an active appointment
	// already holds its slot, in which case it returns ErrConflict. Reusing an
	// existing id returns the stored appointment when it describes the same
	// claim and ErrIdempotencyConflict otherwise.
	InsertIfAbsent(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)

	GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error)

	// UpdateStatus moves an appointment from one status to another as a single
	// compare-and-swap. ErrConflict means the stored status was no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.AppointmentStatus) (domain.Appointment, error)
}
