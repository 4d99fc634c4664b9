package market

import "time"

// IsBusinessDay reports whether t falls on a weekday. Exchange
// holidays are not modeled; the broker rejects orders on those days
// anyway.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDays counts the business days in (from, to], ignoring the
// time-of-day component. A trade opened Thursday and closed the
// following Monday held for 2 business days.
func BusinessDays(from, to time.Time) int {
	from = midnight(from)
	to = midnight(to)
	if !to.After(from) {
		return 0
	}

	days := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			days++
		}
	}
	return days
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
