// Package dates provides calendar arithmetic over ISO-8601 date strings
// (YYYY-MM-DD). Appointment dates are stored and compared as strings, so
// lexicographic order is chronological order everywhere in this package.
package dates

import "time"

const ISODate = "2006-01-02"

// Parse parses an ISO date string. The bool reports whether it was valid.
func Parse(s string) (time.Time, bool) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Age returns the age in whole years at now for the given ISO date of
// birth, or nil when the date of birth is absent or malformed.
func Age(dateOfBirth string, now time.Time) *int {
	dob, ok := Parse(dateOfBirth)
	if !ok {
		return nil
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}

// MonthsSince returns the number of calendar months between the given ISO
// date and now, ignoring the day of month. A visit on Jan 31 is one month
// before a now of Feb 1.
func MonthsSince(date string, now time.Time) int {
	d, ok := Parse(date)
	if !ok {
		return 0
	}
	return (now.Year()-d.Year())*12 + int(now.Month()) - int(d.Month())
}

// WeekStart returns the ISO date of the Monday of the week containing the
// given date. Malformed input is returned unchanged.
func WeekStart(date string) string {
	d, ok := Parse(date)
	if !ok {
		return date
	}
	dow := int(d.Weekday())
	back := dow - 1
	if dow == 0 {
		back = 6
	}
	return d.AddDate(0, 0, -back).Format(ISODate)
}

// Month returns the YYYY-MM prefix of an ISO date.
func Month(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// OneYearBefore returns the ISO date one calendar year before now.
func OneYearBefore(now time.Time) string {
	return now.AddDate(-1, 0, 0).Format(ISODate)
}
