package tzdata

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// YearBound is a rule's FROM or TO year. MinYear/MaxYear stand for the
// tzdata keywords "minimum"/"maximum" (the indefinite past/future).
type YearBound int

const (
	MinYear = math.MinInt
	MaxYear = math.MaxInt
)

func (y YearBound) String() string {
	switch y {
	case MinYear:
		return "<indefinite past>"
	case MaxYear:
		return "<indefinite future>"
	default:
		return strconv.Itoa(int(y))
	}
}

// RuleRecord is one Rule line: a recurring transition, active every year
// From..To, on the day In/On selects, at time At, adding Save to standard
// time while in effect.
type RuleRecord struct {
	Name   string
	From   YearBound
	To     YearBound
	In     time.Month
	On     DaySelector
	At     ClockTime
	Save   SaveTime
	Letter string
}

func parseRuleLine(fields []string) (RuleRecord, error) {
	if len(fields) != 10 {
		return RuleRecord{}, fmt.Errorf("expected 10 fields, got %d", len(fields))
	}
	if fields[0] != "Rule" {
		return RuleRecord{}, fmt.Errorf("expected 'Rule', got %q", fields[0])
	}
	var (
		r    RuleRecord
		errs error
		err  error
	)
	if r.Name, err = parseRuleName(fields[1]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("NAME %q: %w", fields[1], err))
	}
	if r.From, err = parseYearFrom(fields[2]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("FROM %q: %w", fields[2], err))
	}
	if r.To, err = parseYearTo(fields[3], r.From); err != nil {
		errs = errors.Join(errs, fmt.Errorf("TO %q: %w", fields[3], err))
	}
	// fields[4] is a reserved literal "-" column, ignored.
	if r.In, err = parseMonth(fields[5]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("IN %q: %w", fields[5], err))
	}
	if r.On, err = parseDaySelector(fields[6]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("ON %q: %w", fields[6], err))
	}
	if r.At, err = parseClockTime(fields[7]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("AT %q: %w", fields[7], err))
	}
	if r.Save, err = parseSaveTime(fields[8]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("SAVE %q: %w", fields[8], err))
	}
	if r.Letter, err = parseLetters(fields[9]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("LETTER/S %q: %w", fields[9], err))
	}
	return r, errs
}

// parseRuleName enforces that a rule name doesn't start with a digit or
// sign and, if unquoted, contains none of the characters tzdata reserves
// for future syntax extensions.
func parseRuleName(s string) (string, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("empty name")
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "", fmt.Errorf("name starts with a digit: %q", s)
	}
	if s[0] == '-' || s[0] == '+' {
		return "", fmt.Errorf("name starts with a sign: %q", s)
	}
	unquoted, wasQuoted := unquote(s)
	if !wasQuoted && containsSpecialChar(s) {
		return "", fmt.Errorf("name contains special character: %q", s)
	}
	return unquoted, nil
}

func containsSpecialChar(s string) bool {
	return strings.ContainsAny(s, "!$%&'()*,/:;<=>?@[\\]^`{|}~")
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return s, false
}

func parseYearFrom(s string) (YearBound, error) {
	if isAbbrev(s, "minimum", "mi") {
		return MinYear, nil
	}
	if isAbbrev(s, "maximum", "ma") {
		return MaxYear, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return YearBound(n), nil
}

// parseYearTo additionally accepts "only", meaning "repeat From".
func parseYearTo(s string, from YearBound) (YearBound, error) {
	if isAbbrev(s, "minimum", "mi") {
		return MinYear, nil
	}
	if isAbbrev(s, "maximum", "ma") {
		return MaxYear, nil
	}
	if isAbbrev(s, "only", "o") {
		return from, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return YearBound(n), nil
}

func parseMonth(s string) (time.Month, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("month %q: too short", s)
	}
	l := strings.ToLower(s)
	months := []struct {
		name string
		min  string
		val  time.Month
	}{
		{"january", "jan", time.January}, {"february", "feb", time.February},
		{"march", "mar", time.March}, {"april", "apr", time.April},
		{"may", "may", time.May}, {"june", "jun", time.June},
		{"july", "jul", time.July}, {"august", "aug", time.August},
		{"september", "sep", time.September}, {"october", "oct", time.October},
		{"november", "nov", time.November}, {"december", "dec", time.December},
	}
	for _, m := range months {
		if isAbbrev(l, m.name, m.min) {
			return m.val, nil
		}
	}
	return 0, fmt.Errorf("month %q: invalid", s)
}

func parseLetters(s string) (string, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("empty letter")
	}
	if unquoted, wasQuoted := unquote(s); wasQuoted {
		s = unquoted
	}
	if s == "-" {
		return "", nil
	}
	return s, nil
}
