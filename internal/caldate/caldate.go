// Package caldate implements the calendar primitives and date-tuple algebra
// the zone processor builds its three-frame (wall/standard/UTC) transition
// model on: day-of-week and days-in-month arithmetic on a proleptic
// Gregorian calendar, and an ordered (year, month, day, seconds-of-day)
// tuple with comparison, normalization and epoch conversion.
//
// None of this package depends on time.Location; it is the low-level
// utility the zone processor needs to reason about dates without involving
// the host date/time library it is meant to sit underneath.
package caldate

import "time"

const secondsPerDay = 86400

// IsLeapYear reports whether year is a leap year in the proleptic Gregorian
// calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// daysFromCivil converts a proleptic Gregorian (year, month, day) into a
// signed day count relative to 1970-01-01. This is Howard Hinnant's
// days_from_civil algorithm: pure integer arithmetic, valid for the entire
// proleptic Gregorian calendar.
func daysFromCivil(year int, month time.Month, day int) int64 {
	y := int64(year)
	m := int64(month)
	d := int64(day)
	if m <= 2 {
		y--
	}
	var era int64
	if y >= 0 {
		era = y / 400
	} else {
		era = (y - 399) / 400
	}
	yoe := y - era*400 // [0, 399]
	var mp int64
	if m > 2 {
		mp = m - 3
	} else {
		mp = m + 9
	}
	doy := (153*mp+2)/5 + d - 1 // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(z int64) (year int, month time.Month, day int) {
	z += 719468
	var era int64
	if z >= 0 {
		era = z / 146097
	} else {
		era = (z - 146096) / 146097
	}
	doe := z - era*146097                                       // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365       // [0, 399]
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100) // [0, 365]
	mp := (5*doy + 2) / 153                  // [0, 11]
	d := doy - (153*mp+2)/5 + 1              // [1, 31]
	var m int64
	if mp < 10 {
		m = mp + 3
	} else {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return int(y), time.Month(m), int(d)
}

// DayOfWeek returns the weekday of the given proleptic Gregorian date.
func DayOfWeek(year int, month time.Month, day int) time.Weekday {
	z := daysFromCivil(year, month, day)
	var wd int64
	if z >= -4 {
		wd = (z + 4) % 7
	} else {
		wd = (z+5)%7 + 6
	}
	return time.Weekday(wd)
}

// lastWeekdayOfMonth returns the day-of-month of the last occurrence of wd
// in month of year.
func lastWeekdayOfMonth(year int, month time.Month, wd time.Weekday) int {
	last := DaysInMonth(year, month)
	lastWd := DayOfWeek(year, month, last)
	offset := (int(lastWd) - int(wd) + 7) % 7
	return last - offset
}

// onOrAfterWeekday returns the date of the first occurrence of wd on or
// after day in month of year, spilling into the following month/year if
// necessary.
func onOrAfterWeekday(year int, month time.Month, day int, wd time.Weekday) (int, time.Month, int) {
	cur := DayOfWeek(year, month, day)
	diff := (int(wd) - int(cur) + 7) % 7
	d := day + diff
	dim := DaysInMonth(year, month)
	if d <= dim {
		return year, month, d
	}
	d -= dim
	month++
	if month > time.December {
		month = time.January
		year++
	}
	return year, month, d
}

// ResolveDay resolves a rule's day selector (§4.1.3) into a concrete date.
// dayOfWeek == 0 means "use dayOfMonth literally". dayOfMonth == 0 with a
// nonzero dayOfWeek means "the last such weekday of the month". Otherwise it
// means "the first such weekday on or after dayOfMonth".
func ResolveDay(year int, month time.Month, dayOfMonth int, dayOfWeek time.Weekday, hasWeekday bool) (int, time.Month, int) {
	if !hasWeekday {
		return year, month, dayOfMonth
	}
	if dayOfMonth == 0 {
		return year, month, lastWeekdayOfMonth(year, month, dayOfWeek)
	}
	return onOrAfterWeekday(year, month, dayOfMonth, dayOfWeek)
}

// DateTuple is an ordered (year, month, day, seconds-of-day) quadruple, the
// unit the zone processor compares transitions and queries against. Seconds
// may be negative or exceed a day's length before Normalize is applied.
type DateTuple struct {
	Year    int
	Month   time.Month
	Day     int
	Seconds int
}

// Compare orders two date tuples. Both must already be normalized (or at
// least agree on range of Seconds) for the result to be meaningful; callers
// that built a tuple by hand should call Normalize first.
func (d DateTuple) Compare(o DateTuple) int {
	if d.Year != o.Year {
		return compareInts(d.Year, o.Year)
	}
	if d.Month != o.Month {
		return compareInts(int(d.Month), int(o.Month))
	}
	if d.Day != o.Day {
		return compareInts(d.Day, o.Day)
	}
	return compareInts(d.Seconds, o.Seconds)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether d occurs strictly before o.
func (d DateTuple) Before(o DateTuple) bool { return d.Compare(o) < 0 }

// Normalize carries an out-of-range Seconds value into Day, Month and Year,
// so that 0 <= Seconds < secondsPerDay afterwards.
func (d DateTuple) Normalize() DateTuple {
	if d.Seconds >= 0 && d.Seconds < secondsPerDay {
		return d
	}
	days := daysFromCivil(d.Year, d.Month, d.Day)
	extraDays := floorDiv(d.Seconds, secondsPerDay)
	secs := d.Seconds - extraDays*secondsPerDay
	y, m, day := civilFromDays(days + int64(extraDays))
	return DateTuple{Year: y, Month: m, Day: day, Seconds: secs}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AddSeconds returns the tuple shifted by secs seconds, normalized.
func (d DateTuple) AddSeconds(secs int) DateTuple {
	return DateTuple{d.Year, d.Month, d.Day, d.Seconds + secs}.Normalize()
}

// ToEpochSeconds converts a normalized date tuple to Unix epoch seconds.
func (d DateTuple) ToEpochSeconds() int64 {
	n := d.Normalize()
	days := daysFromCivil(n.Year, n.Month, n.Day)
	return days*secondsPerDay + int64(n.Seconds)
}

// FromEpochSeconds converts Unix epoch seconds into a normalized date
// tuple.
func FromEpochSeconds(epoch int64) DateTuple {
	days := floorDiv64(epoch, secondsPerDay)
	secs := epoch - days*secondsPerDay
	y, m, d := civilFromDays(days)
	return DateTuple{Year: y, Month: m, Day: d, Seconds: int(secs)}
}

func floorDiv64(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
