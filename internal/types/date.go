package types

import (
	"fmt"
	"time"
)

// NextBillingDate calculates the next billing date based on the given start
// time, billing period, and billing period unit (the frequency multiplier).
// For example:
// - If billing period is MONTHLY and unit is 2, we add two months.
// - If billing period is ANNUAL and unit is 1, we add one year.
// - If billing period is WEEKLY and unit is 3, we add 21 days (3 weeks).
// Month-based additions clamp to the last valid day of the target month so a
// Jan 31 anchor lands on Feb 28/29 rather than overflowing into March.
func NextBillingDate(start time.Time, unit int, period BillingPeriod) (time.Time, error) {
	if unit <= 0 {
		return start, fmt.Errorf("billing period unit must be a positive integer, got %d", unit)
	}

	switch period {
	case BILLING_PERIOD_DAILY, BILLING_PERIOD_WEEKLY:
		return AddClampedDate(start, 0, 0, period.Days()*unit), nil
	case BILLING_PERIOD_MONTHLY, BILLING_PERIOD_QUARTER, BILLING_PERIOD_HALF_YEAR, BILLING_PERIOD_ANNUAL:
		return AddClampedDate(start, 0, period.Months()*unit, 0), nil
	default:
		return start, fmt.Errorf("invalid billing period type: %s", period)
	}
}

// AddClampedDate is like time.AddDate but clamps the day of month to the last
// valid day of the target month instead of normalizing into the next month.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY, newM := AddMonths(y+years, m, months)

	lastDay := LastDayOfMonth(newY, newM)
	newD := d
	if newD > lastDay {
		newD = lastDay
	}

	result := time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
	if days != 0 {
		result = result.AddDate(0, 0, days)
	}
	return result
}

// AddMonths shifts a (year, month) pair by n months, n may be negative
func AddMonths(year int, month time.Month, n int) (int, time.Month) {
	total := year*12 + int(month) - 1 + n
	return total / 12, time.Month(total%12 + 1)
}

// LastDayOfMonth returns the number of days in the given month
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BillCycleDate returns the occurrence of the bill cycle day in the given
// month at midnight, clamping to the last day of short months so BCD=31 in
// February yields the 28th (or 29th).
func BillCycleDate(year int, month time.Month, bcd int, loc *time.Location) time.Time {
	day := bcd
	if last := LastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// AlignBillingDate aligns a proposed billing date with the bill cycle day for
// month-based periods. The rule is deliberately asymmetric: if the proposed
// day of month is before the BCD, the day advances to min(bcd, lastDayOfMonth)
// within the same month; a date is never moved earlier. Weekly and daily
// periods return the proposed date unchanged.
func AlignBillingDate(proposed time.Time, bcd int, period BillingPeriod) time.Time {
	if !period.IsMonthBased() || bcd <= 0 {
		return proposed
	}

	day := bcd
	if last := LastDayOfMonth(proposed.Year(), proposed.Month()); day > last {
		day = last
	}
	if proposed.Day() >= day {
		return proposed
	}

	h, min, sec := proposed.Clock()
	return time.Date(proposed.Year(), proposed.Month(), day, h, min, sec, proposed.Nanosecond(), proposed.Location())
}

// DaysBetween counts calendar days from start (inclusive) to end (exclusive),
// normalizing both to midnight UTC. Returns 0 when end is not after start.
func DaysBetween(start, end time.Time) int {
	startDay := toUTCDate(start)
	endDay := toUTCDate(end)
	if !endDay.After(startDay) {
		return 0
	}
	return int(endDay.Sub(startDay).Hours() / 24)
}

func toUTCDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
