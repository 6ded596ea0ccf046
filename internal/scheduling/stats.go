package scheduling

import (
	"math"
	"time"

	"github.com/spec-kit/appointment-service/internal/domain"
)

// DayCount is the date with the highest appointment count in a range.
type DayCount struct {
	Date  time.Time
	Count int
}

// DayHours is the date with the largest summed duration in a range.
type DayHours struct {
	Date  time.Time
	Hours float64
}

// DayOccupancy is the scheduled load of one date relative to the daily
// hours capacity, capped at 100.
type DayOccupancy struct {
	Date    time.Time
	Percent float64
}

// Stats aggregates the dashboard metrics for one date range. All figures
// are folded from the same appointment snapshot so they cannot disagree
// with each other.
type Stats struct {
	TotalEvents    int
	BusiestByCount DayCount
	BusiestByHours DayHours
	DailyOccupancy []DayOccupancy
}

// StartOfWeek returns the most recent Monday at or before t, at midnight.
func StartOfWeek(t time.Time) time.Time {
	diff := (int(t.Weekday()) - int(time.Monday) + 7) % 7
	return domain.DateOnly(t.AddDate(0, 0, -diff))
}

// ResolveRange picks the statistics window: an explicit [start, end) pair
// wins, then an explicit week start, then the current ISO week (Monday
// through the following Monday) derived from now.
func ResolveRange(start, end, weekStart *time.Time, now time.Time) (time.Time, time.Time) {
	if start != nil && end != nil {
		return *start, *end
	}
	from := StartOfWeek(now)
	if weekStart != nil {
		from = *weekStart
	}
	return from, from.AddDate(0, 0, 7)
}

// Aggregate folds appointments with StartTime in [start, end) into the
// dashboard metrics. Appointments outside the range are ignored so callers
// may pass a superset snapshot. Busiest-day ties break toward the earlier
// date; an empty range reports the range start with zero count and hours,
// matching what the dashboard renders for a blank week.
func Aggregate(limits Limits, start, end time.Time, appointments []domain.Appointment) Stats {
	// Keyed by calendar date string, not time.Time: map equality on
	// time.Time compares the location pointer, and pgx-scanned timestamps
	// do not share a location with the parsed range bounds.
	counts := make(map[string]int)
	hours := make(map[string]float64)
	total := 0

	for i := range appointments {
		a := &appointments[i]
		if a.StartTime.Before(start) || !a.StartTime.Before(end) {
			continue
		}
		day := dateKey(a.StartTime)
		counts[day]++
		hours[day] += a.Hours()
		total++
	}

	stats := Stats{
		TotalEvents:    total,
		BusiestByCount: DayCount{Date: start},
		BusiestByHours: DayHours{Date: start},
	}

	for day := domain.DateOnly(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		key := dateKey(day)
		if c := counts[key]; c > stats.BusiestByCount.Count {
			stats.BusiestByCount = DayCount{Date: day, Count: c}
		}
		if h := hours[key]; h > stats.BusiestByHours.Hours {
			stats.BusiestByHours = DayHours{Date: day, Hours: h}
		}
		stats.DailyOccupancy = append(stats.DailyOccupancy, DayOccupancy{
			Date:    day,
			Percent: occupancyPercent(limits, hours[key]),
		})
	}

	return stats
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func occupancyPercent(limits Limits, bookedHours float64) float64 {
	if limits.MaxDailyHours <= 0 {
		return 0
	}
	return math.Min(100, bookedHours/limits.MaxDailyHours*100)
}
