package calendar

import "time"

type monthDay struct {
	month time.Month
	day   int
}

// Fixed solar public holidays. Lunar holidays are not tracked.
var fixedHolidays = map[monthDay]string{
	{time.January, 1}:   "New Year's Day",
	{time.March, 1}:     "Independence Movement Day",
	{time.May, 5}:       "Children's Day",
	{time.June, 6}:      "Memorial Day",
	{time.August, 15}:   "Liberation Day",
	{time.October, 3}:   "National Foundation Day",
	{time.October, 9}:   "Hangul Day",
	{time.December, 25}: "Christmas",
}

// IsHoliday reports fixed holidays and the Monday substitute for a fixed
// holiday that fell on Sunday.
func IsHoliday(t time.Time) bool {
	_, ok := HolidayName(t)
	return ok
}

// HolidayName names the holiday on t, if any.
func HolidayName(t time.Time) (string, bool) {
	if name, ok := fixedHolidays[monthDay{t.Month(), t.Day()}]; ok {
		return name, true
	}
	if t.Weekday() == time.Monday {
		prev := t.AddDate(0, 0, -1)
		if name, ok := fixedHolidays[monthDay{prev.Month(), prev.Day()}]; ok {
			return name + " (substitute)", true
		}
	}
	return "", false
}
