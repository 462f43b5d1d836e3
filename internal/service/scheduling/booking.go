package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/store"
)

const (
	claimOutcomeClaimed         = "claimed"
	claimOutcomeSlotTaken       = "slot_taken"
	claimOutcomeOutsideSchedule = "outside_schedule"
	claimOutcomeRejected        = "rejected"
	claimOutcomeError           = "error"
)

type ClaimInput struct {
	ProfessionalID string
	Date           civil.Date
	Time           domain.Clock
	Payload        domain.BookingPayload
	Override       bool
	OverrideReason string
	IdempotencyKey string
}

// ClaimSlot books one slot. At most one pending or confirmed appointment can
// hold a (professional, date, time) triple; the store enforces that with a
// single conditional write. A lost race returns ErrSlotAlreadyTaken and is
// never retried here.
func (s *Service) ClaimSlot(ctx context.Context, in ClaimInput) (domain.Appointment, error) {
	appt, err := s.claimSlot(ctx, in)
	s.recorder.ObserveClaim(claimOutcome(err))
	return appt, err
}

func (s *Service) claimSlot(ctx context.Context, in ClaimInput) (domain.Appointment, error) {
	id, err := normalizeProfessionalID(in.ProfessionalID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if in.Date == (civil.Date{}) {
		return domain.Appointment{}, validationError("date is required")
	}
	if !in.Date.IsValid() {
		return domain.Appointment{}, validationError("date is not a valid date")
	}
	if !in.Time.Valid() {
		return domain.Appointment{}, validationError("time must be between 00:00 and 23:59")
	}

	payload := in.Payload
	payload.ClientName = strings.TrimSpace(payload.ClientName)
	if payload.ClientName == "" {
		return domain.Appointment{}, validationError("payload.client_name is required")
	}

	var reason domain.OverrideReason
	rawReason := strings.TrimSpace(in.OverrideReason)
	switch {
	case in.Override && rawReason == "":
		return domain.Appointment{}, validationError("override_reason is required when override is set")
	case in.Override:
		r, ok := domain.ParseOverrideReason(rawReason)
		if !ok {
			return domain.Appointment{}, validationError("override_reason must be one of emergency, special_case, extended_hours")
		}
		reason = r
	case rawReason != "":
		return domain.Appointment{}, validationError("override_reason requires override")
	}

	if !in.Override {
		spec, err := s.directory.GetSchedule(ctx, id)
		if err != nil {
			return domain.Appointment{}, directoryError(err, id)
		}
		if !spec.Allows(domain.WeekdayOf(in.Date), in.Time) {
			return domain.Appointment{}, ErrOutsideSchedule
		}
	}

	appt := domain.Appointment{
		ProfessionalID: id,
		Date:           in.Date,
		Time:           in.Time,
		Status:         domain.StatusPending,
		Payload:        payload,
		Override:       in.Override,
		OverrideReason: reason,
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return domain.Appointment{}, validationError("idempotency_key too long")
		}
		appt.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("slotkeeper:claim_slot:"+id+":"+key))
	}

	created, err := s.appointments.InsertIfAbsent(ctx, appt)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrConflict):
		return domain.Appointment{}, ErrSlotAlreadyTaken
	case errors.Is(err, store.ErrNotFound):
		return domain.Appointment{}, fmt.Errorf("%w: %s", ErrProfessionalNotFound, id)
	case errors.Is(err, store.ErrIdempotencyConflict):
		return domain.Appointment{}, ErrIdempotencyConflict
	default:
		return domain.Appointment{}, fmt.Errorf("claim slot: %w", err)
	}

	if in.Override {
		s.logger.InfoContext(ctx, "slot claimed with schedule override",
			slog.String("appointment_id", created.ID.String()),
			slog.String("professional_id", id),
			slog.String("date", created.Date.String()),
			slog.String("time", created.Time.String()),
			slog.String("override_reason", string(reason)),
		)
	}
	return created, nil
}

func claimOutcome(err error) string {
	var vErr *ValidationError
	switch {
	case err == nil:
		return claimOutcomeClaimed
	case errors.Is(err, ErrSlotAlreadyTaken):
		return claimOutcomeSlotTaken
	case errors.Is(err, ErrOutsideSchedule):
		return claimOutcomeOutsideSchedule
	case errors.As(err, &vErr), errors.Is(err, ErrProfessionalNotFound), errors.Is(err, ErrIdempotencyConflict):
		return claimOutcomeRejected
	default:
		return claimOutcomeError
	}
}

func (s *Service) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	if appointmentID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	appt, err := s.appointments.GetAppointment(ctx, appointmentID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Appointment{}, ErrAppointmentNotFound
	}
	return appt, err
}

// UpdateAppointmentStatus applies one lifecycle transition. Moving to a
// status that does not occupy the slot frees it for new claims. Freed
// statuses are terminal.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status string) (domain.Appointment, error) {
	to, ok := domain.ParseAppointmentStatus(strings.TrimSpace(status))
	if !ok {
		return domain.Appointment{}, validationErrorf("unknown status %q", status)
	}

	current, err := s.GetAppointment(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if current.Status == to {
		return current, nil
	}
	if !current.Status.CanTransition(to) {
		return domain.Appointment{}, validationErrorf("cannot change status from %s to %s", current.Status, to)
	}

	updated, err := s.appointments.UpdateStatus(ctx, appointmentID, current.Status, to)
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, store.ErrConflict):
		return domain.Appointment{}, ErrAppointmentChanged
	case errors.Is(err, store.ErrNotFound):
		return domain.Appointment{}, ErrAppointmentNotFound
	default:
		return domain.Appointment{}, fmt.Errorf("update appointment status: %w", err)
	}
}
