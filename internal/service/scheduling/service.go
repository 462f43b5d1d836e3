// Package scheduling computes weekly availability and arbitrates slot claims
// for professionals with a fixed weekly schedule.
package scheduling

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/store"
)

const (
	DefaultMaxWeeks      = 4
	DefaultMaxWeeksLimit = 52
)

// Recorder receives engine measurements. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveClaim(outcome string)
	ObserveComputation(operation string, d time.Duration)
	ObserveLookahead(weeksExamined int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveClaim(string) {}
func (nopRecorder) ObserveComputation(string, time.Duration) {}
func (nopRecorder) ObserveLookahead(int) {}

type Deps struct {
	// Schedules serves availability reads and may be cached.
	Schedules store.ProfessionalDirectory
	// Directory is consulted by the claim path and must not be cached.
	// Defaults to Schedules.
	Directory    store.ProfessionalDirectory
	Writer       store.ScheduleWriter
	Appointments store.AppointmentStore
	Recorder     Recorder
	Logger       *slog.Logger
}

type Options struct {
	// Location is the process-wide civil-time offset. Defaults to UTC.
	Location        *time.Location
	DefaultInterval int
	DefaultMaxWeeks int
	MaxWeeksLimit   int
	Now             func() time.Time
}

type Service struct {
	schedules    store.ProfessionalDirectory
	directory    store.ProfessionalDirectory
	writer       store.ScheduleWriter
	appointments store.AppointmentStore
	recorder     Recorder
	logger       *slog.Logger

	loc             *time.Location
	defaultInterval int
	defaultMaxWeeks int
	maxWeeksLimit   int
	now             func() time.Time
}

func NewService(deps Deps, opts Options) *Service {
	s := &Service{
		schedules:       deps.Schedules,
		directory:       deps.Directory,
		writer:          deps.Writer,
		appointments:    deps.Appointments,
		recorder:        deps.Recorder,
		logger:          deps.Logger,
		loc:             opts.Location,
		defaultInterval: opts.DefaultInterval,
		defaultMaxWeeks: opts.DefaultMaxWeeks,
		maxWeeksLimit:   opts.MaxWeeksLimit,
		now:             opts.Now,
	}
	if s.directory == nil {
		s.directory = s.schedules
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(slog.String("component", "scheduling"))
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.defaultInterval <= 0 {
		s.defaultInterval = domain.DefaultSlotInterval
	}
	if s.defaultMaxWeeks <= 0 {
		s.defaultMaxWeeks = DefaultMaxWeeks
	}
	if s.maxWeeksLimit <= 0 {
		s.maxWeeksLimit = DefaultMaxWeeksLimit
	}
	if s.defaultMaxWeeks > s.maxWeeksLimit {
		s.defaultMaxWeeks = s.maxWeeksLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Today is the current civil date in the configured offset.
func (s *Service) Today() civil.Date {
	return civil.DateOf(s.now().In(s.loc))
}

// ParseDate parses a YYYY-MM-DD value. An empty string yields the zero Date.
func ParseDate(field, value string) (civil.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(value)
	if err != nil || !d.IsValid() {
		return civil.Date{}, validationErrorf("%s must be a date in YYYY-MM-DD format", field)
	}
	return d, nil
}

// ParseTime parses a strict HH:MM request value.
func ParseTime(field, value string) (domain.Clock, error) {
	c, err := domain.ParseClock(strings.TrimSpace(value))
	if err != nil {
		return 0, validationErrorf("%s must be a time in HH:MM format", field)
	}
	return c, nil
}

func normalizeProfessionalID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", validationError("professional_id is required")
	}
	if len(id) > 128 {
		return "", validationError("professional_id too long")
	}
	return id, nil
}

func (s *Service) resolveWeekStart(weekStart civil.Date) (civil.Date, error) {
	if weekStart == (civil.Date{}) {
		return s.Today(), nil
	}
	if !weekStart.IsValid() {
		return civil.Date{}, validationError("week_start is not a valid date")
	}
	return weekStart, nil
}

func (s *Service) resolveInterval(intervalMinutes int) (int, error) {
	switch {
	case intervalMinutes == 0:
		return s.defaultInterval, nil
	case intervalMinutes < 0:
		return 0, validationError("interval must be a positive number of minutes")
	case intervalMinutes > domain.MinutesPerDay:
		return 0, validationError("interval must not exceed one day")
	}
	return intervalMinutes, nil
}

func directoryError(err error, professionalID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrProfessionalNotFound, professionalID)
	}
	return err
}
