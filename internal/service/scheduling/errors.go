package scheduling

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	msg   string
	cause error
}

func (e *ValidationError) Error() string {
	return e.msg
}

// Unwrap exposes the rejected input's underlying error, such as a
// *domain.ScheduleError.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

func wrapValidation(err error) error {
	return &ValidationError{msg: err.Error(), cause: err}
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

var (
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")

	// ErrOutsideSchedule rejects a claim whose time falls outside the
	// professional's window for that weekday.
	ErrOutsideSchedule = errors.New("requested time is outside the professional's schedule")

	// ErrSlotAlreadyTaken rejects a claim because another active appointment
	// holds the slot. Callers may retry with a different slot.
	ErrSlotAlreadyTaken = errors.New("slot already taken")

	ErrIdempotencyConflict = errors.New("idempotency key reused with a different claim")

	// ErrAppointmentChanged means the appointment's status changed between
	// the read and the compare-and-swap.
	ErrAppointmentChanged = errors.New("appointment changed concurrently")
)
