package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"slotkeeper/backend/internal/service/scheduling"
)

// Envelope is the response body of every endpoint.
type Envelope struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string {
	return e.Message
}

var (
	errInvalidBody   = &APIError{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: "request body must be valid JSON"}
	errInvalidUUID   = &APIError{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: "appointment id must be a UUID"}
	errProfNotFound  = &APIError{Code: "PROFESSIONAL_NOT_FOUND", Status: http.StatusNotFound, Message: "professional not found"}
	errApptNotFound  = &APIError{Code: "APPOINTMENT_NOT_FOUND", Status: http.StatusNotFound, Message: "appointment not found"}
	errOutside       = &APIError{Code: "OUTSIDE_SCHEDULE", Status: http.StatusUnprocessableEntity, Message: "requested time is outside the professional's schedule"}
	errTaken         = &APIError{Code: "SLOT_ALREADY_TAKEN", Status: http.StatusConflict, Message: "slot already taken, pick a different slot"}
	errIdempotency   = &APIError{Code: "IDEMPOTENCY_CONFLICT", Status: http.StatusConflict, Message: "idempotency key was already used for a different claim"}
	errChanged       = &APIError{Code: "APPOINTMENT_CHANGED", Status: http.StatusConflict, Message: "appointment changed concurrently, retry"}
	errTimeout       = &APIError{Code: "TIMEOUT", Status: http.StatusGatewayTimeout, Message: "request timed out"}
	errInternal      = &APIError{Code: "INTERNAL_ERROR", Status: http.StatusInternalServerError, Message: "internal server error"}
	errNotReady      = &APIError{Code: "NOT_READY", Status: http.StatusServiceUnavailable, Message: "dependencies unavailable"}
	errRouteNotFound = &APIError{Code: "NOT_FOUND", Status: http.StatusNotFound, Message: "resource not found"}
)

// fromError maps service errors onto the API error contract.
func fromError(err error) *APIError {
	var apiErr *APIError
	var vErr *scheduling.ValidationError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &vErr):
		return &APIError{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: vErr.Error()}
	case errors.Is(err, scheduling.ErrProfessionalNotFound):
		return errProfNotFound
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		return errApptNotFound
	case errors.Is(err, scheduling.ErrOutsideSchedule):
		return errOutside
	case errors.Is(err, scheduling.ErrSlotAlreadyTaken):
		return errTaken
	case errors.Is(err, scheduling.ErrIdempotencyConflict):
		return errIdempotency
	case errors.Is(err, scheduling.ErrAppointmentChanged):
		return errChanged
	case errors.Is(err, context.DeadlineExceeded):
		return errTimeout
	default:
		return errInternal
	}
}

func respond(c *gin.Context, status int, data any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Data: data})
}

func respondError(c *gin.Context, err error) {
	apiErr := fromError(err)
	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(apiErr.Status, Envelope{Error: apiErr})
}
