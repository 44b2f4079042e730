package tzdata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jgrahl/acetz/zonedb"
)

// BindingKind says how a zone era's standard offset is modulated.
type BindingKind int

const (
	// BindingStandard means standard time always applies (RULES is "-").
	BindingStandard BindingKind = iota
	// BindingNamedPolicy means RULES names a Policy of RuleRecords.
	BindingNamedPolicy
	// BindingFixedSave means RULES gives a literal, constant SAVE value.
	BindingFixedSave
)

func (k BindingKind) String() string {
	switch k {
	case BindingStandard:
		return "Standard"
	case BindingNamedPolicy:
		return "NamedPolicy"
	case BindingFixedSave:
		return "FixedSave"
	default:
		return "<UNDEFINED>"
	}
}

// RuleBinding is a zone era's RULES column.
type RuleBinding struct {
	Kind       BindingKind
	PolicyName string   // set when Kind == BindingNamedPolicy.
	Save       SaveTime // set when Kind == BindingFixedSave.
}

func parseRuleBinding(s string) (RuleBinding, error) {
	if s == "-" {
		return RuleBinding{Kind: BindingStandard}, nil
	}
	if d, err := parseSaveTime(s); err == nil {
		return RuleBinding{Kind: BindingFixedSave, Save: d}, nil
	}
	// Not "-" and not a SAVE-shaped value: must be a policy name. Whether
	// that name actually has Rule lines is tzcompile's job to check once
	// every Rule line has been seen.
	return RuleBinding{Kind: BindingNamedPolicy, PolicyName: s}, nil
}

// EraBoundary is a zone era's UNTIL column, fully resolved at parse time:
// a concrete (year, month, day) plus a seconds-of-day offset and the frame
// it's expressed in. Trailing fields tzdata allows to be omitted (month,
// day, time) default to the earliest possible value, per the format's
// rule that "[missing columns] default to the earliest possible value for
// the missing fields".
type EraBoundary struct {
	Defined  bool
	Year     int
	Month    time.Month
	Day      int
	Seconds  int32
	Modifier zonedb.Modifier
}

func parseEraBoundary(s string) (EraBoundary, error) {
	if len(s) == 0 {
		return EraBoundary{}, nil
	}

	parts := strings.Fields(s)
	if len(parts) > 4 {
		return EraBoundary{}, fmt.Errorf("too many fields: %d", len(parts))
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return EraBoundary{}, fmt.Errorf("year: %v", err)
	}

	month := time.January
	if len(parts) > 1 {
		if month, err = parseMonth(parts[1]); err != nil {
			return EraBoundary{}, fmt.Errorf("month: %v", err)
		}
	}

	daySel := DaySelector{Kind: SelectorExactDay, Num: 1}
	if len(parts) > 2 {
		if daySel, err = parseDaySelector(parts[2]); err != nil {
			return EraBoundary{}, fmt.Errorf("day: %v", err)
		}
	}

	clk := ClockTime{Modifier: zonedb.Wall}
	if len(parts) > 3 {
		if clk, err = parseClockTime(parts[3]); err != nil {
			return EraBoundary{}, fmt.Errorf("time: %v", err)
		}
	}

	return EraBoundary{
		Defined:  true,
		Year:     year,
		Month:    month,
		Day:      resolveDay(year, month, daySel),
		Seconds:  int32(clk.Duration / time.Second),
		Modifier: clk.Modifier,
	}, nil
}

// ZoneRecord is a Zone line or one of its continuation lines: one era in a
// zone's history.
type ZoneRecord struct {
	// Continuation is true for every line after the first in a zone's
	// block; Name is only set on the first.
	Continuation bool
	Name         string
	Offset       time.Duration
	Rules        RuleBinding
	Format       string
	Until        EraBoundary
}

// parseZoneName rejects names containing a "." path component, matching
// zic's restriction on generated file names.
func parseZoneName(s string) (string, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("empty name")
	}
	if strings.Contains(s, ".") {
		return "", fmt.Errorf("name contains a dot: %q", s)
	}
	return s, nil
}

func parseZoneFormat(s string) (string, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("empty format")
	}
	unquoted, _ := unquote(s)
	return unquoted, nil
}

func parseZoneLine(fields []string) (ZoneRecord, error) {
	if len(fields) < 5 {
		return ZoneRecord{}, fmt.Errorf("expected at least 5 fields, got %d", len(fields))
	}
	if len(fields) > 9 {
		return ZoneRecord{}, fmt.Errorf("expected at most 9 fields, got %d", len(fields))
	}
	if fields[0] != "Zone" {
		return ZoneRecord{}, fmt.Errorf("expected 'Zone', got %q", fields[0])
	}
	var (
		z    ZoneRecord
		errs error
		err  error
	)
	if z.Name, err = parseZoneName(fields[1]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("NAME %q: %w", fields[1], err))
	}
	if z.Offset, err = parseDuration(fields[2]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("STDOFF %q: %w", fields[2], err))
	}
	if z.Rules, err = parseRuleBinding(fields[3]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("RULES %q: %w", fields[3], err))
	}
	if z.Format, err = parseZoneFormat(fields[4]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("FORMAT %q: %w", fields[4], err))
	}
	if len(fields) > 5 {
		if z.Until, err = parseEraBoundary(strings.Join(fields[5:], " ")); err != nil {
			errs = errors.Join(errs, fmt.Errorf("UNTIL %q: %w", fields[5], err))
		}
	}
	return z, errs
}

// parseZoneContinuationLine parses a zone continuation line: the same
// columns as a zone line, minus NAME (a continuation stays in its parent
// zone, picking up where the previous line's UNTIL left off).
func parseZoneContinuationLine(fields []string) (ZoneRecord, error) {
	if len(fields) < 3 {
		return ZoneRecord{}, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}
	if len(fields) > 7 {
		return ZoneRecord{}, fmt.Errorf("expected at most 7 fields, got %d", len(fields))
	}
	var (
		z    ZoneRecord
		errs error
		err  error
	)
	z.Continuation = true
	if z.Offset, err = parseDuration(fields[0]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("STDOFF %q: %w", fields[0], err))
	}
	if z.Rules, err = parseRuleBinding(fields[1]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("RULES %q: %w", fields[1], err))
	}
	if z.Format, err = parseZoneFormat(fields[2]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("FORMAT %q: %w", fields[2], err))
	}
	if len(fields) > 3 {
		if z.Until, err = parseEraBoundary(strings.Join(fields[3:], " ")); err != nil {
			errs = errors.Join(errs, fmt.Errorf("UNTIL %q: %w", fields[3], err))
		}
	}
	return z, errs
}
