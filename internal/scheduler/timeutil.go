package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimeToMinutes converts an "HH:MM" clock string to minutes since
// midnight. It does not validate that hh/mm fall within ordinary bounds
// beyond what strconv rejects.
func ParseTimeToMinutes(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("scheduler: invalid time string %q", clock)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("scheduler: invalid hour in %q: %w", clock, err)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("scheduler: invalid minute in %q: %w", clock, err)
	}
	return hh*60 + mm, nil
}

// MustMinutes is ParseTimeToMinutes without an error return, for call
// sites that only ever pass config-validated strings.
func MustMinutes(clock string) int {
	m, err := ParseTimeToMinutes(clock)
	if err != nil {
		return 0
	}
	return m
}

// MinutesToTime renders minutes-since-midnight back to "HH:MM", wrapping
// past 24h with `% (24*60)`.
func MinutesToTime(minutes int) string {
	minutes = ((minutes % (24 * 60)) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutesToTime returns the "HH:MM" clock time durationMinutes after
// start.
func AddMinutesToTime(start string, durationMinutes int) string {
	return MinutesToTime(MustMinutes(start) + durationMinutes)
}

// SlotsOverlap implements the half-open interval overlap law:
// two intervals overlap unless one ends at or before the other starts.
// Touching intervals (end1 == start2) do NOT overlap.
func SlotsOverlap(start1, end1, start2, end2 int) bool {
	return !(end1 <= start2 || end2 <= start1)
}

// SlotsOverlapClock is the string-time convenience wrapper used
// throughout the evaluator/operators/repair code.
func SlotsOverlapClock(start1, end1, start2, end2 string) bool {
	return SlotsOverlap(MustMinutes(start1), MustMinutes(end1), MustMinutes(start2), MustMinutes(end2))
}
