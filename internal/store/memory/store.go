// Package memory holds a process-local implementation of the store
// interfaces. It serves local runs and tests; uniqueness holds only within
// one process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"slotkeeper/backend/internal/domain"
	"slotkeeper/backend/internal/store"
)

type activeKey struct {
	professionalID string
	slot           domain.SlotKey
}

type Store struct {
	mu           sync.RWMutex
	schedules    map[string]domain.ScheduleSpec
	appointments map[uuid.UUID]domain.Appointment
	active       map[activeKey]uuid.UUID // slot -> holder; prevents double booking
	now          func() time.Time
}

func New() *Store {
	return &Store{
		schedules:    make(map[string]domain.ScheduleSpec),
		appointments: make(map[uuid.UUID]domain.Appointment),
		active:       make(map[activeKey]uuid.UUID),
		now:          time.Now,
	}
}

var (
	_ store.ProfessionalDirectory = (*Store)(nil)
	_ store.ScheduleWriter        = (*Store)(nil)
	_ store.AppointmentStore      = (*Store)(nil)
)

func (s *Store) GetSchedule(_ context.Context, professionalID string) (domain.ScheduleSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.schedules[professionalID]
	if !ok {
		return domain.ScheduleSpec{}, store.ErrNotFound
	}
	return spec, nil
}

func (s *Store) PutSchedule(_ context.Context, professionalID string, spec domain.ScheduleSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[professionalID] = spec
	return nil
}

func (s *Store) QueryActiveAppointments(_ context.Context, professionalID string, from, to civil.Date) ([]domain.ActiveSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ActiveSlot
	for key := range s.active {
		if key.professionalID != professionalID {
			continue
		}
		if key.slot.Date.Before(from) || key.slot.Date.After(to) {
			continue
		}
		out = append(out, domain.ActiveSlot{Date: key.slot.Date, Time: key.slot.Time})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

// InsertIfAbsent performs the slot check and the insert under one write lock.
func (s *Store) InsertIfAbsent(_ context.Context, appt domain.Appointment) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[appt.ProfessionalID]; !ok {
		return domain.Appointment{}, fmt.Errorf("professional %s: %w", appt.ProfessionalID, store.ErrNotFound)
	}

	if appt.ID != uuid.Nil {
		if existing, ok := s.appointments[appt.ID]; ok {
			if !existing.SameClaim(appt) {
				return domain.Appointment{}, store.ErrIdempotencyConflict
			}
			return existing, nil
		}
	}

	key := activeKey{professionalID: appt.ProfessionalID, slot: appt.Slot()}
	if appt.Status.Occupies() {
		if _, taken := s.active[key]; taken {
			return domain.Appointment{}, store.ErrConflict
		}
	}

	if appt.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.ID = id
	}
	if appt.Status == "" {
		appt.Status = domain.StatusPending
	}
	now := s.now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	s.appointments[appt.ID] = appt
	if appt.Status.Occupies() {
		s.active[key] = appt.ID
	}
	return appt, nil
}

func (s *Store) GetAppointment(_ context.Context, id uuid.UUID) (domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appt, ok := s.appointments[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return appt, nil
}

func (s *Store) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.AppointmentStatus) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appointments[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	if appt.Status != from {
		return domain.Appointment{}, store.ErrConflict
	}

	key := activeKey{professionalID: appt.ProfessionalID, slot: appt.Slot()}
	if to.Occupies() && !from.Occupies() {
		if _, taken := s.active[key]; taken {
			return domain.Appointment{}, store.ErrConflict
		}
	}

	appt.Status = to
	appt.UpdatedAt = s.now().UTC()
	s.appointments[id] = appt

	switch {
	case to.Occupies():
		s.active[key] = id
	case s.active[key] == id:
		delete(s.active, key)
	}
	return appt, nil
}
