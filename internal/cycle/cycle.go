// Package cycle implements the 12-week planning cycle arithmetic.
//
// A cycle spans exactly 84 days (12 weeks) inclusive of both endpoints, so
// the end date is always start + 83 days. The week after the end date is the
// "buffer" week 13. All arithmetic is day-granular; UI badges and progress
// bars depend on these results being exact.
package cycle

import (
	"math"

	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/types"
)

const (
	// Weeks is the number of planning weeks in a cycle.
	Weeks = 12

	// Days is the total day count of a cycle.
	Days = Weeks * 7

	// BufferWeek is the week number of the one-week grace period past the
	// cycle's end date.
	BufferWeek = Weeks + 1
)

// EndDate returns the inclusive end date for a cycle starting at start.
func EndDate(start dates.Date) dates.Date {
	return start.AddDays(Days - 1)
}

// WeekNumber returns the week number (1–13) containing d within c.
// Week 13 is the buffer week. The second return is false when d falls
// outside [start_date, end_date + 7 days].
func WeekNumber(d dates.Date, c types.TwelveWeekCycle) (int, bool) {
	bufferEnd := c.EndDate.AddDays(7)
	if d.Before(c.StartDate) || d.After(bufferEnd) {
		return 0, false
	}
	daysDiff := dates.DaysBetween(c.StartDate, d)
	return daysDiff/7 + 1, true
}

// WeekRange returns the date range for week weekNumber (1–13) of c.
func WeekRange(weekNumber int, c types.TwelveWeekCycle) dates.Range {
	start := c.StartDate.AddDays(7 * (weekNumber - 1))
	return dates.Range{Start: start, End: start.AddDays(6)}
}

// Progress returns the cycle's completion percentage (0–100) as of now,
// measured in whole days. A zero-length cycle reports 100.
func Progress(c types.TwelveWeekCycle, now dates.Date) int {
	if now.Before(c.StartDate) {
		return 0
	}
	if now.After(c.EndDate) {
		return 100
	}
	totalDays := dates.DaysBetween(c.StartDate, c.EndDate)
	if totalDays == 0 {
		return 100
	}
	elapsedDays := dates.DaysBetween(c.StartDate, now)
	return int(math.Round(float64(elapsedDays) / float64(totalDays) * 100))
}

// Contains reports whether d falls within c, including the buffer week.
func Contains(d dates.Date, c types.TwelveWeekCycle) bool {
	return !d.Before(c.StartDate) && !d.After(c.EndDate.AddDays(7))
}
