package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusReleased  AppointmentStatus = "released"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

// ActiveStatuses are the statuses that occupy a slot.
var ActiveStatuses = []AppointmentStatus{StatusPending, StatusConfirmed}

func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch st := AppointmentStatus(s); st {
	case StatusPending, StatusConfirmed, StatusReleased, StatusCancelled, StatusNoShow:
		return st, true
	}
	return "", false
}

// Occupies reports whether an appointment in this status holds its slot.
func (s AppointmentStatus) Occupies() bool {
	return s == StatusPending || s == StatusConfirmed
}

var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusReleased},
	StatusConfirmed: {StatusCancelled, StatusReleased, StatusNoShow},
}

// CanTransition reports whether an appointment may move from s to next.
// Freed statuses are terminal; reactivation would bypass the claim path.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OverrideReason string

const (
	OverrideEmergency     OverrideReason = "emergency"
	OverrideSpecialCase   OverrideReason = "special_case"
	OverrideExtendedHours OverrideReason = "extended_hours"
)

func ParseOverrideReason(s string) (OverrideReason, bool) {
	switch r := OverrideReason(s); r {
	case OverrideEmergency, OverrideSpecialCase, OverrideExtendedHours:
		return r, true
	}
	return "", false
}

// BookingPayload carries the client-facing details of a claim. The engine
// stores it verbatim.
type BookingPayload struct {
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone,omitempty"`
	Service     string `json:"service,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type Appointment struct {
	ID             uuid.UUID         `json:"id"`
	ProfessionalID string            `json:"professional_id"`
	Date           civil.Date        `json:"date"`
	Time           Clock             `json:"time"`
	Status         AppointmentStatus `json:"status"`
	Payload        BookingPayload    `json:"payload"`
	Override       bool              `json:"override"`
	OverrideReason OverrideReason    `json:"override_reason,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (a Appointment) Slot() SlotKey {
	return SlotKey{Date: a.Date, Time: a.Time}
}

// SameClaim reports whether b requests the same booking as a, ignoring
// server-assigned fields. Used to detect idempotent replays.
func (a Appointment) SameClaim(b Appointment) bool {
	return a.ProfessionalID == b.ProfessionalID &&
		a.Date == b.Date &&
		a.Time == b.Time &&
		a.Payload == b.Payload &&
		a.Override == b.Override &&
		a.OverrideReason == b.OverrideReason
}
