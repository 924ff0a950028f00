package accounting

import (
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
)

// StartOfDay truncates t to midnight UTC of its calendar date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds calendar months, clamping to the last day of the target
// month: Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	h, mi, s := t.Clock()
	return time.Date(first.Year(), first.Month(), d, h, mi, s, t.Nanosecond(), t.Location())
}

// AddPeriod advances date by count periods of the given frequency.
func AddPeriod(date time.Time, freq domain.Frequency, count int) time.Time {
	switch freq {
	case domain.FrequencyDaily:
		return date.AddDate(0, 0, count)
	case domain.FrequencyWeekly:
		return date.AddDate(0, 0, 7*count)
	case domain.FrequencyMonthly:
		return AddMonths(date, count)
	case domain.FrequencyQuarterly:
		return AddMonths(date, 3*count)
	case domain.FrequencyYearly:
		return AddMonths(date, 12*count)
	}
	return date
}

// DaysBetween counts whole calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(StartOfDay(end).Sub(StartOfDay(start)).Hours() / 24)
}
