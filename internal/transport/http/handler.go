package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/service/scheduling"
)

type bookingService interface {
	WeeklyAvailability(ctx context.Context, professionalID string, weekStart civil.Date, intervalMinutes int) (domain.AvailabilityReport, error)
	NextAvailableWeek(ctx context.Context, professionalID string, weekStart civil.Date, maxWeeks int) (domain.AvailabilityReport, bool, error)
	ClaimSlot(ctx context.Context, in scheduling.ClaimInput) (domain.Appointment, error)
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status string) (domain.Appointment, error)
	SetSchedule(ctx context.Context, professionalID string, raw map[string]*domain.RawWindow) (domain.ScheduleSpec, error)
}

type BookingHandler struct {
	svc bookingService
	log *slog.Logger
}

func NewBookingHandler(svc bookingService, log *slog.Logger) *BookingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BookingHandler{svc: svc, log: log.With(slog.String("component", "http.booking"))}
}

type claimRequest struct {
	Date           string                `json:"date" binding:"required"`
	Time           string                `json:"time" binding:"required"`
	Payload        domain.BookingPayload `json:"payload"`
	Override       bool                  `json:"override"`
	OverrideReason string                `json:"override_reason"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type nextAvailableWeekResponse struct {
	Found  bool                       `json:"found"`
	Report *domain.AvailabilityReport `json:"report,omitempty"`
}

type scheduleResponse struct {
	ProfessionalID string                       `json:"professional_id"`
	Schedule       map[string]*domain.RawWindow `json:"schedule"`
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &APIError{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: name + " must be an integer"}
	}
	return n, nil
}

// Availability handles GET /v1/professionals/:id/availability.
func (h *BookingHandler) Availability(c *gin.Context) {
	weekStart, err := scheduling.ParseDate("week_start", c.Query("week_start"))
	if err != nil {
		h.fail(c, err)
		return
	}
	interval, err := queryInt(c, "interval")
	if err != nil {
		h.fail(c, err)
		return
	}

	report, err := h.svc.WeeklyAvailability(c.Request.Context(), c.Param("id"), weekStart, interval)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, report)
}

// NextAvailableWeek handles GET /v1/professionals/:id/next-available-week.
func (h *BookingHandler) NextAvailableWeek(c *gin.Context) {
	weekStart, err := scheduling.ParseDate("week_start", c.Query("week_start"))
	if err != nil {
		h.fail(c, err)
		return
	}
	maxWeeks, err := queryInt(c, "max_weeks")
	if err != nil {
		h.fail(c, err)
		return
	}

	report, found, err := h.svc.NextAvailableWeek(c.Request.Context(), c.Param("id"), weekStart, maxWeeks)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := nextAvailableWeekResponse{Found: found}
	if found {
		resp.Report = &report
	}
	respond(c, http.StatusOK, resp)
}

// Claim handles POST /v1/professionals/:id/claims.
func (h *BookingHandler) Claim(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, &APIError{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: bindMessage(err)})
		return
	}
	date, err := scheduling.ParseDate("date", req.Date)
	if err != nil {
		h.fail(c, err)
		return
	}
	at, err := scheduling.ParseTime("time", req.Time)
	if err != nil {
		h.fail(c, err)
		return
	}

	appt, err := h.svc.ClaimSlot(c.Request.Context(), scheduling.ClaimInput{
		ProfessionalID: c.Param("id"),
		Date:           date,
		Time:           at,
		Payload:        req.Payload,
		Override:       req.Override,
		OverrideReason: req.OverrideReason,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.log.InfoContext(c.Request.Context(), "slot claimed",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("professional_id", appt.ProfessionalID),
		slog.String("date", appt.Date.String()),
		slog.String("time", appt.Time.String()),
	)
	respond(c, http.StatusCreated, appt)
}

// GetAppointment handles GET /v1/appointments/:id.
func (h *BookingHandler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.fail(c, errInvalidUUID)
		return
	}
	appt, err := h.svc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, appt)
}

// UpdateStatus handles POST /v1/appointments/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.fail(c, errInvalidUUID)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, &APIError{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: bindMessage(err)})
		return
	}

	appt, err := h.svc.UpdateAppointmentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.InfoContext(c.Request.Context(), "appointment status updated",
		slog.String("appointment_id", id.String()),
		slog.String("status", string(appt.Status)),
	)
	respond(c, http.StatusOK, appt)
}

// PutSchedule handles PUT /v1/professionals/:id/schedule.
func (h *BookingHandler) PutSchedule(c *gin.Context) {
	var raw map[string]*domain.RawWindow
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.fail(c, errInvalidBody)
		return
	}
	spec, err := h.svc.SetSchedule(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, scheduleResponse{ProfessionalID: strings.TrimSpace(c.Param("id")), Schedule: spec.Raw()})
}

func (h *BookingHandler) fail(c *gin.Context, err error) {
	apiErr := fromError(err)
	attrs := []any{
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.String("code", apiErr.Code),
	}
	ctx := c.Request.Context()
	switch {
	case apiErr.Status >= http.StatusInternalServerError:
		h.log.ErrorContext(ctx, "request failed", append(attrs, slog.Any("err", err))...)
	case apiErr.Status == http.StatusBadRequest:
		h.log.WarnContext(ctx, "invalid request", append(attrs, slog.Any("err", err))...)
	default:
		h.log.InfoContext(ctx, "request rejected", attrs...)
	}
	respondError(c, apiErr)
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return strings.Join(fields, ", ") + " required"
	}
	return errInvalidBody.Message
}

func idempotencyKey(c *gin.Context) string {
	key := c.GetHeader("Idempotency-Key")
	if key == "" {
		key = c.GetHeader("X-Idempotency-Key")
	}
	return strings.TrimSpace(key)
}
