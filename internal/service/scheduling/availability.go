package scheduling

import (
	"context"
	"time"

	"cloud.google.com/go/civil"

	"slotkeeper/backend/internal/domain"
)

// WeeklyAvailability reports the open slots of the seven days starting at
// weekStart. A zero weekStart means today; a zero interval means the
// configured default. The result is a point-in-time snapshot.
func (s *Service) WeeklyAvailability(ctx context.Context, professionalID string, weekStart civil.Date, intervalMinutes int) (domain.AvailabilityReport, error) {
	started := time.Now()
	defer func() {
		s.recorder.ObserveComputation("weekly_availability", time.Since(started))
	}()

	id, err := normalizeProfessionalID(professionalID)
	if err != nil {
		return domain.AvailabilityReport{}, err
	}
	weekStart, err = s.resolveWeekStart(weekStart)
	if err != nil {
		return domain.AvailabilityReport{}, err
	}
	interval, err := s.resolveInterval(intervalMinutes)
	if err != nil {
		return domain.AvailabilityReport{}, err
	}

	return s.weeklyReport(ctx, id, weekStart, interval)
}

func (s *Service) weeklyReport(ctx context.Context, professionalID string, weekStart civil.Date, interval int) (domain.AvailabilityReport, error) {
	spec, err := s.schedules.GetSchedule(ctx, professionalID)
	if err != nil {
		return domain.AvailabilityReport{}, directoryError(err, professionalID)
	}

	// Occupancy is rebuilt for every computation and never cached.
	active, err := s.appointments.QueryActiveAppointments(ctx, professionalID, weekStart, domain.WeekEndOf(weekStart))
	if err != nil {
		return domain.AvailabilityReport{}, err
	}

	return domain.BuildWeeklyReport(professionalID, spec, weekStart, interval, domain.BuildOccupancy(active))
}
