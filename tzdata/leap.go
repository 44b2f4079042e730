package tzdata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LeapCorr is the direction of a leap-second correction.
type LeapCorr string

const (
	LeapAdded   LeapCorr = "+"
	LeapSkipped LeapCorr = "-"
)

// LeapTimeMode says whether a leap line's time is UTC (Stationary) or local
// wall-clock time (Rolling). Rolling leap seconds are a reserved-but-unused
// feature of the format; no published leapsecond file contains one.
type LeapTimeMode int

const (
	StationaryLeapTime LeapTimeMode = iota
	RollingLeapTime
)

// Clock is a plain hours/minutes/seconds time of day, used by leap and
// expires lines where no wall/standard/UTC suffix applies.
type Clock struct {
	Hours   int
	Minutes int
	Seconds int
}

// LeapRecord is one entry of a leapsecond file's Leap table.
type LeapRecord struct {
	Year  int
	Month time.Month
	Day   int
	At    Clock
	Corr  LeapCorr
	Mode  LeapTimeMode
}

func parseLeapLine(fields []string) (LeapRecord, error) {
	if len(fields) != 7 {
		return LeapRecord{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}
	if fields[0] != "Leap" {
		return LeapRecord{}, fmt.Errorf("expected 'Leap', got %q", fields[0])
	}
	var (
		l    LeapRecord
		errs error
		err  error
	)
	if l.Year, err = strconv.Atoi(fields[1]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("YEAR %q: %w", fields[1], err))
	}
	if l.Month, err = parseMonth(fields[2]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("MONTH %q: %w", fields[2], err))
	}
	if l.Day, err = strconv.Atoi(fields[3]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("DAY %q: %w", fields[3], err))
	}
	if l.At, err = parseClock(fields[4]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("HH:MM:SS %q: %w", fields[4], err))
	}
	if l.Corr, err = parseLeapCorr(fields[5]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("CORR %q: %w", fields[5], err))
	}
	if l.Mode, err = parseLeapTimeMode(fields[6]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("R/S %q: %w", fields[6], err))
	}
	return l, errs
}

func parseLeapCorr(s string) (LeapCorr, error) {
	switch s {
	case "+":
		return LeapAdded, nil
	case "-":
		return LeapSkipped, nil
	default:
		return "", fmt.Errorf("invalid leap correction: %q", s)
	}
}

func parseLeapTimeMode(s string) (LeapTimeMode, error) {
	l := strings.ToLower(s)
	if isAbbrev(l, "rolling", "r") {
		return RollingLeapTime, nil
	}
	if isAbbrev(l, "stationary", "s") {
		return StationaryLeapTime, nil
	}
	return 0, fmt.Errorf("invalid leap mode: %q", s)
}

// parseClock parses an HH:MM:SS time of day.
func parseClock(s string) (Clock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Clock{}, fmt.Errorf("expected 3 parts, got %d", len(parts))
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return Clock{}, fmt.Errorf("hours: %v", err)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return Clock{}, fmt.Errorf("minutes: %v", err)
	}
	ss, err := strconv.Atoi(parts[2])
	if err != nil {
		return Clock{}, fmt.Errorf("seconds: %v", err)
	}
	return Clock{Hours: hh, Minutes: mm, Seconds: ss}, nil
}
