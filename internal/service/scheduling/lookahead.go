package scheduling

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"

	"slotkeeper/backend/internal/domain"
)

// NextAvailableWeek scans the maxWeeks weeks following weekStart and returns
// the first one with at least one open slot. found is false when every
// examined week is fully booked or closed; that is not an error.
func (s *Service) NextAvailableWeek(ctx context.Context, professionalID string, weekStart civil.Date, maxWeeks int) (report domain.AvailabilityReport, found bool, err error) {
	started := time.Now()
	examined := 0
	defer func() {
		s.recorder.ObserveComputation("next_available_week", time.Since(started))
		s.recorder.ObserveLookahead(examined)
	}()

	id, err := normalizeProfessionalID(professionalID)
	if err != nil {
		return domain.AvailabilityReport{}, false, err
	}
	weekStart, err = s.resolveWeekStart(weekStart)
	if err != nil {
		return domain.AvailabilityReport{}, false, err
	}
	weeks, err := s.resolveMaxWeeks(maxWeeks)
	if err != nil {
		return domain.AvailabilityReport{}, false, err
	}

	for i := 1; i <= weeks; i++ {
		if err := ctx.Err(); err != nil {
			return domain.AvailabilityReport{}, false, err
		}
		examined = i
		candidate, err := s.weeklyReport(ctx, id, weekStart.AddDays(7*i), s.defaultInterval)
		if err != nil {
			return domain.AvailabilityReport{}, false, err
		}
		if !candidate.Summary.WeekFullyBooked {
			return candidate, true, nil
		}
	}

	s.logger.InfoContext(ctx, "no available week within lookahead",
		slog.String("professional_id", id),
		slog.String("week_start", weekStart.String()),
		slog.Int("max_weeks", weeks),
	)
	return domain.AvailabilityReport{}, false, nil
}

func (s *Service) resolveMaxWeeks(maxWeeks int) (int, error) {
	switch {
	case maxWeeks == 0:
		return s.defaultMaxWeeks, nil
	case maxWeeks < 0:
		return 0, validationError("max_weeks must be at least 1")
	case maxWeeks > s.maxWeeksLimit:
		return 0, validationErrorf("max_weeks must not exceed %d", s.maxWeeksLimit)
	}
	return maxWeeks, nil
}
