package tzdata

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ExpiresRecord is a leapsecond file's Expires line: the date after which
// the file's leap-second table is no longer known to be complete.
type ExpiresRecord struct {
	Year  int
	Month time.Month
	Day   int
	At    Clock
}

func parseExpiresLine(fields []string) (ExpiresRecord, error) {
	if len(fields) != 5 {
		return ExpiresRecord{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}
	if fields[0] != "Expires" {
		return ExpiresRecord{}, fmt.Errorf("expected 'Expires', got %q", fields[0])
	}
	var (
		ex   ExpiresRecord
		errs error
		err  error
	)
	if ex.Year, err = strconv.Atoi(fields[1]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("YEAR %q: %w", fields[1], err))
	}
	if ex.Month, err = parseMonth(fields[2]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("MONTH %q: %w", fields[2], err))
	}
	if ex.Day, err = strconv.Atoi(fields[3]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("DAY %q: %w", fields[3], err))
	}
	if ex.At, err = parseClock(fields[4]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("HH:MM:SS %q: %w", fields[4], err))
	}
	return ex, errs
}
