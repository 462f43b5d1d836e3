package domain

import "errors"

// DefaultSlotInterval is used when a caller does not pick an interval.
const DefaultSlotInterval = 30

var ErrInvalidInterval = errors.New("interval must be a positive number of minutes")

// GenerateSlots returns slot starts from open, stepping by intervalMinutes,
// strictly before close. A start equal to close is never emitted.
func GenerateSlots(open, closeAt Clock, intervalMinutes int) ([]Clock, error) {
	if intervalMinutes <= 0 {
		return nil, ErrInvalidInterval
	}
	if closeAt <= open {
		return []Clock{}, nil
	}
	out := make([]Clock, 0, (int(closeAt-open)+intervalMinutes-1)/intervalMinutes)
	for s := open; s < closeAt; s += Clock(intervalMinutes) {
		out = append(out, s)
	}
	return out, nil
}
