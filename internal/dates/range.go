package dates

import "time"

// Range is an inclusive span of calendar dates.
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains reports whether d falls within the range, inclusive at both ends.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// WeekRange returns the Sunday–Saturday week containing d.
func WeekRange(d Date) Range {
	start := d.AddDays(-int(d.Weekday()))
	return Range{Start: start, End: start.AddDays(6)}
}

// MonthGridRange returns the full range of a 7-column month grid covering the
// month containing d, padded to complete Sunday-start weeks at both ends.
func MonthGridRange(d Date) Range {
	monthStart := New(d.Year(), d.Month(), 1)
	monthEnd := monthStart.AddDays(daysInMonth(d.Year(), d.Month()) - 1)
	return Range{
		Start: WeekRange(monthStart).Start,
		End:   WeekRange(monthEnd).End,
	}
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SpanOverlaps reports whether an entity with optional start/end dates
// intersects the query range. The effective start is start when set, otherwise
// end; the effective end is end when set, otherwise start. An entity with
// neither date never overlaps.
func SpanOverlaps(start, end *Date, query Range) bool {
	if start == nil && end == nil {
		return false
	}
	effStart := end
	if start != nil {
		effStart = start
	}
	effEnd := start
	if end != nil {
		effEnd = end
	}
	return !effEnd.Before(query.Start) && !effStart.After(query.End)
}
