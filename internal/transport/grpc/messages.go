package grpc

import "slotkeeper/backend/internal/domain"

type WeeklyAvailabilityRequest struct {
	ProfessionalID  string `json:"professional_id"`
	WeekStart       string `json:"week_start,omitempty"`
	IntervalMinutes int32  `json:"interval_minutes,omitempty"`
}

type WeeklyAvailabilityResponse struct {
	Report domain.AvailabilityReport `json:"report"`
}

type NextAvailableWeekRequest struct {
	ProfessionalID string `json:"professional_id"`
	WeekStart      string `json:"week_start,omitempty"`
	MaxWeeks       int32  `json:"max_weeks,omitempty"`
}

type NextAvailableWeekResponse struct {
	Found  bool                       `json:"found"`
	Report *domain.AvailabilityReport `json:"report,omitempty"`
}

type ClaimSlotRequest struct {
	ProfessionalID string                `json:"professional_id"`
	Date           string                `json:"date"`
	Time           string                `json:"time"`
	Payload        domain.BookingPayload `json:"payload"`
	Override       bool                  `json:"override,omitempty"`
	OverrideReason string                `json:"override_reason,omitempty"`
}

type ClaimSlotResponse struct {
	Appointment domain.Appointment `json:"appointment"`
}

type UpdateAppointmentStatusRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

type UpdateAppointmentStatusResponse struct {
	Appointment domain.Appointment `json:"appointment"`
}
