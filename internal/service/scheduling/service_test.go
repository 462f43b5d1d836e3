package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/store"
	"slotkeeper/backend/internal/store/memory"
)

var monday = civil.Date{Year: 2026, Month: 1, Day: 5}

type fakeDirectory struct {
	getFn func(ctx context.Context, professionalID string) (domain.ScheduleSpec, error)
	calls int
}

func (f *fakeDirectory) GetSchedule(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
	if f.getFn == nil {
		panic("GetSchedule not configured")
	}
	f.calls++
	return f.getFn(ctx, professionalID)
}

type fakeAppointments struct {
	queryFn  func(ctx context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error)
	insertFn func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	getFn    func(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	updateFn func(ctx context.Context, id uuid.UUID, from, to domain.AppointmentStatus) (domain.Appointment, error)
}

func (f *fakeAppointments) QueryActiveAppointments(ctx context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error) {
	if f.queryFn == nil {
		panic("QueryActiveAppointments not configured")
	}
	return f.queryFn(ctx, professionalID, from, to)
}

func (f *fakeAppointments) InsertIfAbsent(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if f.insertFn == nil {
		panic("InsertIfAbsent not configured")
	}
	return f.insertFn(ctx, appt)
}

func (f *fakeAppointments) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if f.getFn == nil {
		panic("GetAppointment not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeAppointments) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.AppointmentStatus) (domain.Appointment, error) {
	if f.updateFn == nil {
		panic("UpdateStatus not configured")
	}
	return f.updateFn(ctx, id, from, to)
}

type recordingRecorder struct {
	mu       sync.Mutex
	claims   map[string]int
	examined []int
}

func (r *recordingRecorder) ObserveClaim(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claims == nil {
		r.claims = map[string]int{}
	}
	r.claims[outcome]++
}

func (r *recordingRecorder) ObserveComputation(string, time.Duration) {}

func (r *recordingRecorder) ObserveLookahead(weeks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.examined = append(r.examined, weeks)
}

func mustSpec(t *testing.T, raw map[string]*domain.RawWindow) domain.ScheduleSpec {
	t.Helper()
	spec, err := domain.ParseScheduleSpec(raw)
	if err != nil {
		t.Fatalf("ParseScheduleSpec error: %v", err)
	}
	return spec
}

func mondayMorning(t *testing.T) domain.ScheduleSpec {
	return mustSpec(t, map[string]*domain.RawWindow{"monday": {Open: "08:00", Close: "10:00"}})
}

func staticDirectory(spec domain.ScheduleSpec) *fakeDirectory {
	return &fakeDirectory{getFn: func(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
		return spec, nil
	}}
}

func clockStrings(cs []domain.Clock) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWeeklyAvailability_FiltersOccupiedSlots(t *testing.T) {
	var gotFrom, gotTo civil.Date
	svc := NewService(Deps{
		Schedules: staticDirectory(mondayMorning(t)),
		Appointments: &fakeAppointments{queryFn: func(ctx context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error) {
			gotFrom, gotTo = from, to
			return []domain.ActiveSlot{{Date: monday, Time: domain.ClockOf(9, 0)}}, nil
		}},
	}, Options{})

	report, err := svc.WeeklyAvailability(context.Background(), "p1", monday, 0)
	if err != nil {
		t.Fatalf("WeeklyAvailability error: %v", err)
	}
	if gotFrom != monday || gotTo != monday.AddDays(6) {
		t.Fatalf("query range = %s..%s, want %s..%s", gotFrom, gotTo, monday, monday.AddDays(6))
	}
	if report.IntervalMinutes != domain.DefaultSlotInterval {
		t.Fatalf("interval = %d, want default", report.IntervalMinutes)
	}
	want := []string{"08:00", "08:30", "09:30"}
	if got := clockStrings(report.Days[0].OpenSlots); !equalStrings(got, want) {
		t.Fatalf("monday slots = %v, want %v", got, want)
	}
	sunday := report.Days[6]
	if sunday.IsOpen || sunday.ClosedReason != domain.ClosedNoSchedule || len(sunday.OpenSlots) != 0 {
		t.Fatalf("sunday = %+v, want closed with no slots", sunday)
	}
	if report.Summary.TotalOpenSlots != 3 || report.Summary.DaysWithAvailability != 1 || report.Summary.WeekFullyBooked {
		t.Fatalf("summary = %+v", report.Summary)
	}
}

func TestWeeklyAvailability_ValidationErrors(t *testing.T) {
	svc := NewService(Deps{Schedules: &fakeDirectory{}, Appointments: &fakeAppointments{}}, Options{})

	cases := []struct {
		name     string
		id       string
		weekDate civil.Date
		interval int
	}{
		{name: "missing professional", id: " ", weekDate: monday},
		{name: "negative interval", id: "p1", weekDate: monday, interval: -15},
		{name: "invalid date", id: "p1", weekDate: civil.Date{Year: 2026, Month: 2, Day: 30}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.WeeklyAvailability(context.Background(), tc.id, tc.weekDate, tc.interval)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v (%T), want *ValidationError", err, err)
			}
		})
	}
}

func TestWeeklyAvailability_DefaultsWeekStartToToday(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	// 01:30 UTC Tuesday is still Monday at UTC-3.
	now := time.Date(2026, 1, 6, 1, 30, 0, 0, time.UTC)
	svc := NewService(Deps{
		Schedules: staticDirectory(mondayMorning(t)),
		Appointments: &fakeAppointments{queryFn: func(ctx context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error) {
			return nil, nil
		}},
	}, Options{Location: loc, Now: func() time.Time { return now }})

	report, err := svc.WeeklyAvailability(context.Background(), "p1", civil.Date{}, 0)
	if err != nil {
		t.Fatalf("WeeklyAvailability error: %v", err)
	}
	if report.WeekStart != monday {
		t.Fatalf("week_start = %s, want %s", report.WeekStart, monday)
	}
}

func TestWeeklyAvailability_UnknownProfessional(t *testing.T) {
	svc := NewService(Deps{
		Schedules: &fakeDirectory{getFn: func(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
			return domain.ScheduleSpec{}, store.ErrNotFound
		}},
		Appointments: &fakeAppointments{},
	}, Options{})

	_, err := svc.WeeklyAvailability(context.Background(), "ghost", monday, 30)
	if !errors.Is(err, ErrProfessionalNotFound) {
		t.Fatalf("err = %v, want ErrProfessionalNotFound", err)
	}
}

func TestWeeklyAvailability_MalformedSchedulePropagates(t *testing.T) {
	svc := NewService(Deps{
		Schedules: &fakeDirectory{getFn: func(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
			return domain.ScheduleSpec{}, store.ErrMalformedSchedule
		}},
		Appointments: &fakeAppointments{},
	}, Options{})

	_, err := svc.WeeklyAvailability(context.Background(), "p1", monday, 30)
	if !errors.Is(err, store.ErrMalformedSchedule) {
		t.Fatalf("err = %v, want ErrMalformedSchedule", err)
	}
}

func TestWeeklyAvailability_IdempotentWithoutBookings(t *testing.T) {
	mem := memory.New()
	if err := mem.PutSchedule(context.Background(), "p1", mondayMorning(t)); err != nil {
		t.Fatalf("PutSchedule error: %v", err)
	}
	svc := NewService(Deps{Schedules: mem, Appointments: mem}, Options{})

	first, err := svc.WeeklyAvailability(context.Background(), "p1", monday, 30)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.WeeklyAvailability(context.Background(), "p1", monday, 30)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Summary != second.Summary || !equalStrings(clockStrings(first.Days[0].OpenSlots), clockStrings(second.Days[0].OpenSlots)) {
		t.Fatalf("reports differ: %+v vs %+v", first.Summary, second.Summary)
	}
}

func TestParseTime_StrictHHMM(t *testing.T) {
	c, err := ParseTime("time", " 09:30 ")
	if err != nil || c != domain.ClockOf(9, 30) {
		t.Fatalf("ParseTime = %s, %v, want 09:30", c, err)
	}
	for _, raw := range []string{"09:00:45", "09:00:+5", "9:30", "24:00", ""} {
		_, err := ParseTime("time", raw)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("ParseTime(%q) err = %v, want *ValidationError", raw, err)
		}
	}
}
