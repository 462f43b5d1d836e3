package scheduling

import (
	"context"
	"errors"

	"slotkeeper/backend/internal/domain"
)

// SetSchedule validates and stores a professional's weekly schedule. A nil
// window closes that day.
func (s *Service) SetSchedule(ctx context.Context, professionalID string, raw map[string]*domain.RawWindow) (domain.ScheduleSpec, error) {
	if s.writer == nil {
		return domain.ScheduleSpec{}, errors.New("schedule writer not configured")
	}
	id, err := normalizeProfessionalID(professionalID)
	if err != nil {
		return domain.ScheduleSpec{}, err
	}
	spec, err := domain.ParseScheduleSpec(raw)
	if err != nil {
		return domain.ScheduleSpec{}, wrapValidation(err)
	}
	if err := s.writer.PutSchedule(ctx, id, spec); err != nil {
		return domain.ScheduleSpec{}, err
	}
	return spec, nil
}
