package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/service/scheduling"
)

type BookingServer struct {
	svc bookingService
	log *slog.Logger
}

type bookingService interface {
	WeeklyAvailability(ctx context.Context, professionalID string, weekStart civil.Date, intervalMinutes int) (domain.AvailabilityReport, error)
	NextAvailableWeek(ctx context.Context, professionalID string, weekStart civil.Date, maxWeeks int) (domain.AvailabilityReport, bool, error)
	ClaimSlot(ctx context.Context, in scheduling.ClaimInput) (domain.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status string) (domain.Appointment, error)
}

var _ BookingServiceServer = (*BookingServer)(nil)

func NewBookingServer(svc bookingService, log *slog.Logger) *BookingServer {
	if log == nil {
		log = slog.Default()
	}
	return &BookingServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.booking")),
	}
}

func (s *BookingServer) WeeklyAvailability(ctx context.Context, req *WeeklyAvailabilityRequest) (*WeeklyAvailabilityResponse, error) {
	log := s.log.With(slog.String("rpc", methodWeeklyAvailability))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	weekStart, err := scheduling.ParseDate("week_start", req.WeekStart)
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err), slog.String("professional_id", req.ProfessionalID))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	report, err := s.svc.WeeklyAvailability(ctx, req.ProfessionalID, weekStart, int(req.IntervalMinutes))
	if err != nil {
		return nil, s.toStatus(log, err, slog.String("professional_id", req.ProfessionalID))
	}

	log.Debug(
		"availability computed",
		slog.String("professional_id", report.ProfessionalID),
		slog.String("week_start", report.WeekStart.String()),
		slog.Int("total_open_slots", report.Summary.TotalOpenSlots),
	)
	return &WeeklyAvailabilityResponse{Report: report}, nil
}

func (s *BookingServer) NextAvailableWeek(ctx context.Context, req *NextAvailableWeekRequest) (*NextAvailableWeekResponse, error) {
	log := s.log.With(slog.String("rpc", methodNextAvailableWeek))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	weekStart, err := scheduling.ParseDate("week_start", req.WeekStart)
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err), slog.String("professional_id", req.ProfessionalID))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	report, found, err := s.svc.NextAvailableWeek(ctx, req.ProfessionalID, weekStart, int(req.MaxWeeks))
	if err != nil {
		return nil, s.toStatus(log, err, slog.String("professional_id", req.ProfessionalID))
	}
	if !found {
		return &NextAvailableWeekResponse{Found: false}, nil
	}
	return &NextAvailableWeekResponse{Found: true, Report: &report}, nil
}

func (s *BookingServer) ClaimSlot(ctx context.Context, req *ClaimSlotRequest) (*ClaimSlotResponse, error) {
	log := s.log.With(slog.String("rpc", methodClaimSlot))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	date, err := scheduling.ParseDate("date", req.Date)
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err), slog.String("professional_id", req.ProfessionalID))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	at, err := scheduling.ParseTime("time", req.Time)
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err), slog.String("professional_id", req.ProfessionalID))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	appt, err := s.svc.ClaimSlot(ctx, scheduling.ClaimInput{
		ProfessionalID: req.ProfessionalID,
		Date:           date,
		Time:           at,
		Payload:        req.Payload,
		Override:       req.Override,
		OverrideReason: req.OverrideReason,
		IdempotencyKey: idempotencyKey(ctx),
	})
	if err != nil {
		return nil, s.toStatus(log, err,
			slog.String("professional_id", req.ProfessionalID),
			slog.String("date", req.Date),
			slog.String("time", req.Time),
		)
	}

	log.Info(
		"slot claimed",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("professional_id", appt.ProfessionalID),
		slog.String("date", appt.Date.String()),
		slog.String("time", appt.Time.String()),
	)
	return &ClaimSlotResponse{Appointment: appt}, nil
}

func (s *BookingServer) UpdateAppointmentStatus(ctx context.Context, req *UpdateAppointmentStatusRequest) (*UpdateAppointmentStatusResponse, error) {
	log := s.log.With(slog.String("rpc", methodUpdateAppointmentStatus))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "appointment_id must be a UUID")
	}

	appt, err := s.svc.UpdateAppointmentStatus(ctx, id, req.Status)
	if err != nil {
		return nil, s.toStatus(log, err, slog.String("appointment_id", id.String()))
	}

	log.Info("appointment status updated", slog.String("appointment_id", id.String()), slog.String("status", string(appt.Status)))
	return &UpdateAppointmentStatusResponse{Appointment: appt}, nil
}

// toStatus maps service errors onto gRPC codes and logs them at the level
// their class calls for.
func (s *BookingServer) toStatus(log *slog.Logger, err error, attrs ...any) error {
	var vErr *scheduling.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.Is(err, scheduling.ErrProfessionalNotFound):
		log.Info("professional not found", attrs...)
		return status.Error(codes.NotFound, "professional not found")
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		log.Info("appointment not found", attrs...)
		return status.Error(codes.NotFound, "appointment not found")
	case errors.Is(err, scheduling.ErrOutsideSchedule):
		log.Info("claim outside schedule", attrs...)
		return status.Error(codes.FailedPrecondition, "That time is outside the professional's schedule. Pick a different slot.")
	case errors.Is(err, scheduling.ErrSlotAlreadyTaken):
		log.Info("slot already taken", attrs...)
		return status.Error(codes.AlreadyExists, "That slot was just taken. Pick a different slot.")
	case errors.Is(err, scheduling.ErrIdempotencyConflict):
		log.Info("claim idempotency conflict", attrs...)
		return status.Error(codes.FailedPrecondition, "This request key was already used for a different claim. Try again.")
	case errors.Is(err, scheduling.ErrAppointmentChanged):
		log.Info("appointment changed concurrently", attrs...)
		return status.Error(codes.Aborted, "appointment changed concurrently, retry")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("request timed out", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	default:
		log.Error("request failed", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.Internal, "internal error")
	}
}

func idempotencyKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("idempotency-key")
	if len(values) == 0 {
		values = md.Get("x-idempotency-key")
	}
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
