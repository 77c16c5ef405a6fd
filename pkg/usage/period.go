package usage

import "time"

// BillingAnchor returns the calendar month considered active for usage-based
// charges. Before the cutoff day, invoices still accrue to the previous
// month.
func BillingAnchor(now time.Time, cutoffDay int) (time.Month, int) {
	if now.Day() < cutoffDay {
		return PreviousMonth(now.Month(), now.Year())
	}
	return now.Month(), now.Year()
}

// PreviousMonth steps one month back with year rollover.
func PreviousMonth(month time.Month, year int) (time.Month, int) {
	if month == time.January {
		return time.December, year - 1
	}
	return month - 1, year
}

// PeriodProgress reports how far through the billing period now is, as a
// percentage of [start, start+1 month). With excludeWeekends set, only
// weekdays count on both sides of the ratio.
func PeriodProgress(now, start time.Time, excludeWeekends bool) float64 {
	if start.IsZero() || !now.After(start) {
		return 0
	}
	end := start.AddDate(0, 1, 0)
	if !now.Before(end) {
		return 100
	}

	total := countDays(start, end, excludeWeekends)
	elapsed := countDays(start, now, excludeWeekends)
	if total == 0 {
		return 0
	}
	return float64(elapsed) / float64(total) * 100
}

func countDays(from, to time.Time, excludeWeekends bool) int {
	days := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if excludeWeekends {
			if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
		}
		days++
	}
	return days
}
