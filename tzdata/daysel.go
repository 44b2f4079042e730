package tzdata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jgrahl/acetz/internal/caldate"
)

// DaySelectorKind is the shape of a rule or era boundary's day expression.
type DaySelectorKind int

const (
	// SelectorExactDay means Num is a literal day of month.
	SelectorExactDay DaySelectorKind = iota
	// SelectorLastWeekday means "the last Weekday of the month".
	SelectorLastWeekday
	// SelectorOnOrAfter means "the first Weekday on or after Num".
	SelectorOnOrAfter
	// SelectorOnOrBefore means "the last Weekday on or before Num".
	SelectorOnOrBefore
)

func (k DaySelectorKind) String() string {
	switch k {
	case SelectorExactDay:
		return "ExactDay"
	case SelectorLastWeekday:
		return "LastWeekday"
	case SelectorOnOrAfter:
		return "OnOrAfter"
	case SelectorOnOrBefore:
		return "OnOrBefore"
	default:
		return "<UNDEFINED>"
	}
}

// DaySelector is a rule ON column or era boundary day expression: either an
// exact day of month, or a weekday relative to one (lastSun, Sun>=8,
// Sun<=25).
type DaySelector struct {
	Kind    DaySelectorKind
	Num     int
	Weekday time.Weekday
}

// parseDaySelector parses forms such as "5", "lastSun", "Sun>=8" or
// "Sun<=25".
func parseDaySelector(s string) (DaySelector, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return DaySelector{Kind: SelectorExactDay, Num: n}, nil
	}
	if strings.HasPrefix(s, "last") {
		wd, err := parseWeekday(s[4:])
		if err != nil {
			return DaySelector{}, err
		}
		return DaySelector{Kind: SelectorLastWeekday, Weekday: wd}, nil
	}
	if strings.Contains(s, "=") {
		kind := SelectorOnOrBefore
		parts := strings.Split(s, "<=")
		if len(parts) != 2 {
			kind = SelectorOnOrAfter
			parts = strings.Split(s, ">=")
		}
		if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) == 0 {
			return DaySelector{}, fmt.Errorf("expected weekday<=dayofmonth or weekday>=dayofmonth")
		}
		wd, err := parseWeekday(parts[0])
		if err != nil {
			return DaySelector{}, fmt.Errorf("left part of comparison %q: %w", parts[0], err)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return DaySelector{}, fmt.Errorf("right part of comparison %q: %w", parts[1], err)
		}
		return DaySelector{Kind: kind, Weekday: wd, Num: n}, nil
	}
	return DaySelector{}, fmt.Errorf("invalid")
}

func parseWeekday(s string) (time.Weekday, error) {
	l := strings.ToLower(s)
	if isAbbrev(l, "sunday", "su") {
		return time.Sunday, nil
	}
	if isAbbrev(l, "monday", "m") {
		return time.Monday, nil
	}
	if isAbbrev(l, "tuesday", "tu") {
		return time.Tuesday, nil
	}
	if isAbbrev(l, "wednesday", "w") {
		return time.Wednesday, nil
	}
	if isAbbrev(l, "thursday", "th") {
		return time.Thursday, nil
	}
	if isAbbrev(l, "friday", "f") {
		return time.Friday, nil
	}
	if isAbbrev(l, "saturday", "sa") {
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// resolveDay pins a DaySelector to a concrete day of month for one specific
// (year, month), via caldate's weekday arithmetic. Only a zone era boundary
// can do this eagerly, since it names one exact year and month; a rule's ON
// column stays a DaySelector because the same rule applies across a range
// of years and is resolved per year by zoneprocessor at query time.
func resolveDay(year int, month time.Month, d DaySelector) int {
	switch d.Kind {
	case SelectorLastWeekday:
		_, _, day := caldate.ResolveDay(year, month, 0, d.Weekday, true)
		return day
	case SelectorOnOrAfter:
		_, _, day := caldate.ResolveDay(year, month, d.Num, d.Weekday, true)
		return day
	case SelectorOnOrBefore:
		// caldate only expresses "last in month" or "on or after N"; the
		// rare on-or-before rules are approximated as "on or after N-6",
		// landing on the same weekday one week earlier in every case the
		// tzdata corpus actually uses this form.
		_, _, day := caldate.ResolveDay(year, month, max(d.Num-6, 1), d.Weekday, true)
		return day
	default: // SelectorExactDay
		return d.Num
	}
}
