package domain

import "cloud.google.com/go/civil"

const ClosedNoSchedule = "no schedule configured"

type DayAvailability struct {
	Date         civil.Date `json:"date"`
	Weekday      Weekday    `json:"weekday"`
	IsOpen       bool       `json:"is_open"`
	ClosedReason string     `json:"closed_reason,omitempty"`
	Window       *Window    `json:"window,omitempty"`
	OpenSlots    []Clock    `json:"open_slots"`
	// OccupiedSlots counts generated slots removed because they are taken.
	OccupiedSlots int `json:"occupied_slots"`
}

type AvailabilitySummary struct {
	TotalOpenSlots       int  `json:"total_open_slots"`
	DaysWithAvailability int  `json:"days_with_availability"`
	WeekFullyBooked      bool `json:"week_fully_booked"`
}

type AvailabilityReport struct {
	ProfessionalID  string              `json:"professional_id"`
	WeekStart       civil.Date          `json:"week_start"`
	WeekEnd         civil.Date          `json:"week_end"`
	IntervalMinutes int                 `json:"interval_minutes"`
	Days            []DayAvailability   `json:"days"`
	Summary         AvailabilitySummary `json:"summary"`
}

// WeekEndOf returns the last date of the 7-day week starting at weekStart.
func WeekEndOf(weekStart civil.Date) civil.Date {
	return weekStart.AddDays(6)
}

// BuildWeeklyReport assembles the report for the 7 dates starting at
// weekStart. occupied must cover at least [weekStart, weekStart+6].
func BuildWeeklyReport(professionalID string, spec ScheduleSpec, weekStart civil.Date, intervalMinutes int, occupied OccupancyIndex) (AvailabilityReport, error) {
	if intervalMinutes <= 0 {
		return AvailabilityReport{}, ErrInvalidInterval
	}

	report := AvailabilityReport{
		ProfessionalID:  professionalID,
		WeekStart:       weekStart,
		WeekEnd:         WeekEndOf(weekStart),
		IntervalMinutes: intervalMinutes,
		Days:            make([]DayAvailability, 0, 7),
	}

	for i := 0; i < 7; i++ {
		date := weekStart.AddDays(i)
		wd := WeekdayOf(date)
		day := DayAvailability{
			Date:      date,
			Weekday:   wd,
			OpenSlots: []Clock{},
		}

		w, ok := spec.Window(wd)
		if !ok {
			day.ClosedReason = ClosedNoSchedule
			report.Days = append(report.Days, day)
			continue
		}

		slots, err := GenerateSlots(w.Open, w.Close, intervalMinutes)
		if err != nil {
			return AvailabilityReport{}, err
		}
		window := w
		day.IsOpen = true
		day.Window = &window
		for _, s := range slots {
			if occupied.Contains(date, s) {
				day.OccupiedSlots++
				continue
			}
			day.OpenSlots = append(day.OpenSlots, s)
		}

		report.Summary.TotalOpenSlots += len(day.OpenSlots)
		if len(day.OpenSlots) > 0 {
			report.Summary.DaysWithAvailability++
		}
		report.Days = append(report.Days, day)
	}

	report.Summary.WeekFullyBooked = report.Summary.TotalOpenSlots == 0
	return report, nil
}
