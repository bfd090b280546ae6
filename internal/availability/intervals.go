// Package availability computes busy/free date intervals for vehicles.
// Intervals are half-open: [start, end). Touching endpoints do not overlap,
// which enables back-to-back bookings.
package availability

import (
	"sort"
	"time"
)

// Interval is a half-open date range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsValid reports whether the interval is forward-ordered and non-empty.
func (i Interval) IsValid() bool {
	return i.Start.Before(i.End)
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Touches reports whether the intervals share exactly one endpoint without
// overlapping.
func (i Interval) Touches(other Interval) bool {
	return i.End.Equal(other.Start) || other.End.Equal(i.Start)
}

// Merge collapses overlapping or touching intervals into maximal runs,
// returned in ascending start order. Empty and inverted inputs are dropped.
func Merge(intervals []Interval) []Interval {
	cleaned := make([]Interval, 0, len(intervals))
	for _, interval := range intervals {
		if interval.IsValid() {
			cleaned = append(cleaned, interval)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	sort.Slice(cleaned, func(a, b int) bool {
		return cleaned[a].Start.Before(cleaned[b].Start)
	})

	merged := []Interval{cleaned[0]}
	for _, interval := range cleaned[1:] {
		last := &merged[len(merged)-1]
		if !interval.Start.After(last.End) {
			if interval.End.After(last.End) {
				last.End = interval.End
			}
			continue
		}
		merged = append(merged, interval)
	}
	return merged
}

// FreeSlices subtracts the merged busy intervals from the query window and
// returns the ordered, pairwise-disjoint free sub-ranges. The result is empty
// when the window is fully covered or invalid.
func FreeSlices(window Interval, busy []Interval) []Interval {
	if !window.IsValid() {
		return nil
	}

	clipped := make([]Interval, 0, len(busy))
	for _, interval := range busy {
		start := maxTime(window.Start, interval.Start)
		end := minTime(window.End, interval.End)
		if start.Before(end) {
			clipped = append(clipped, Interval{Start: start, End: end})
		}
	}

	var slices []Interval
	cursor := window.Start
	for _, interval := range Merge(clipped) {
		if cursor.Before(interval.Start) {
			slices = append(slices, Interval{Start: cursor, End: interval.Start})
		}
		if interval.End.After(cursor) {
			cursor = interval.End
		}
	}
	if cursor.Before(window.End) {
		slices = append(slices, Interval{Start: cursor, End: window.End})
	}
	return slices
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
