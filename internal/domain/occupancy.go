package domain

import "cloud.google.com/go/civil"

// SlotKey identifies one slot of one professional's calendar.
type SlotKey struct {
	Date civil.Date
	Time Clock
}

// ActiveSlot is what the appointment store returns for occupancy queries.
type ActiveSlot struct {
	Date civil.Date
	Time Clock
}

// OccupancyIndex is a request-scoped set of reserved slots. It is built from
// one store snapshot and must not be cached across computations.
type OccupancyIndex struct {
	slots map[SlotKey]struct{}
}

func BuildOccupancy(active []ActiveSlot) OccupancyIndex {
	idx := OccupancyIndex{slots: make(map[SlotKey]struct{}, len(active))}
	for _, a := range active {
		idx.slots[SlotKey{Date: a.Date, Time: a.Time}] = struct{}{}
	}
	return idx
}

func (o OccupancyIndex) Contains(d civil.Date, c Clock) bool {
	_, ok := o.slots[SlotKey{Date: d, Time: c}]
	return ok
}

func (o OccupancyIndex) Len() int {
	return len(o.slots)
}
