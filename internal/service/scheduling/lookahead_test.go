package scheduling

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/store"
)

// fullyBookedUntil occupies every Monday slot in weeks before open.
func fullyBookedUntil(open civil.Date) *fakeAppointments {
	return &fakeAppointments{queryFn: func(ctx context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error) {
		if !from.Before(open) {
			return nil, nil
		}
		var out []domain.ActiveSlot
		for _, c := range []domain.Clock{domain.ClockOf(8, 0), domain.ClockOf(8, 30), domain.ClockOf(9, 0), domain.ClockOf(9, 30)} {
			out = append(out, domain.ActiveSlot{Date: from, Time: c})
		}
		return out, nil
	}}
}

func TestNextAvailableWeek_ReturnsFirstWeekWithOpenings(t *testing.T) {
	rec := &recordingRecorder{}
	svc := NewService(Deps{
		Schedules:    staticDirectory(mondayMorning(t)),
		Appointments: fullyBookedUntil(monday.AddDays(21)),
		Recorder:     rec,
	}, Options{})

	report, found, err := svc.NextAvailableWeek(context.Background(), "p1", monday, 0)
	if err != nil {
		t.Fatalf("NextAvailableWeek error: %v", err)
	}
	if !found {
		t.Fatalf("found = false, want true")
	}
	if report.WeekStart != monday.AddDays(21) {
		t.Fatalf("week_start = %s, want %s", report.WeekStart, monday.AddDays(21))
	}
	if len(rec.examined) != 1 || rec.examined[0] != 3 {
		t.Fatalf("weeks examined = %v, want [3]", rec.examined)
	}
}

func TestNextAvailableWeek_NotFoundWithinBound(t *testing.T) {
	calls := 0
	svc := NewService(Deps{
		Schedules: staticDirectory(mondayMorning(t)),
		Appointments: &fakeAppointments{queryFn: func(ctx context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error) {
			calls++
			return fullyBookedUntil(monday.AddDays(365)).queryFn(ctx, professionalID, from, to)
		}},
	}, Options{})

	_, found, err := svc.NextAvailableWeek(context.Background(), "p1", monday, 2)
	if err != nil {
		t.Fatalf("NextAvailableWeek error: %v", err)
	}
	if found {
		t.Fatalf("found = true, want false")
	}
	if calls != 2 {
		t.Fatalf("weeks computed = %d, want 2", calls)
	}
}

func TestNextAvailableWeek_NoScheduleNeverFound(t *testing.T) {
	svc := NewService(Deps{
		Schedules: staticDirectory(domain.ScheduleSpec{}),
		Appointments: &fakeAppointments{queryFn: func(ctx context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error) {
			return nil, nil
		}},
	}, Options{})

	_, found, err := svc.NextAvailableWeek(context.Background(), "p1", monday, 4)
	if err != nil || found {
		t.Fatalf("found = %v err = %v, want not found", found, err)
	}
}

func TestNextAvailableWeek_MaxWeeksBounds(t *testing.T) {
	svc := NewService(Deps{Schedules: &fakeDirectory{}, Appointments: &fakeAppointments{}}, Options{MaxWeeksLimit: 10})

	for _, weeks := range []int{-1, 11} {
		_, _, err := svc.NextAvailableWeek(context.Background(), "p1", monday, weeks)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("max_weeks %d: err = %v, want *ValidationError", weeks, err)
		}
	}
}

func TestNextAvailableWeek_PropagatesWeekErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(Deps{
		Schedules: staticDirectory(mondayMorning(t)),
		Appointments: &fakeAppointments{queryFn: func(ctx context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error) {
			return nil, boom
		}},
	}, Options{})

	_, _, err := svc.NextAvailableWeek(context.Background(), "p1", monday, 3)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	svc = NewService(Deps{
		Schedules: &fakeDirectory{getFn: func(ctx context.Context, professionalID string) (domain.ScheduleSpec, error) {
			return domain.ScheduleSpec{}, store.ErrNotFound
		}},
		Appointments: &fakeAppointments{},
	}, Options{})
	_, _, err = svc.NextAvailableWeek(context.Background(), "ghost", monday, 3)
	if !errors.Is(err, ErrProfessionalNotFound) {
		t.Fatalf("err = %v, want ErrProfessionalNotFound", err)
	}
}

func TestNextAvailableWeek_StopsOnCancelledContext(t *testing.T) {
	svc := NewService(Deps{Schedules: staticDirectory(mondayMorning(t)), Appointments: &fakeAppointments{}}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := svc.NextAvailableWeek(ctx, "p1", monday, 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
