package tzdata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jgrahl/acetz/zonedb"
)

// ClockTime is a rule AT column or era boundary time of day: a duration
// since local midnight plus the frame (wall/standard/UTC) it's expressed
// in. The frame is zonedb.Modifier directly, since a rule's AtModifier and
// an era's UntilModifier mean exactly the same thing tzdata's AT suffix
// does - there is no translation step left for tzcompile to perform.
type ClockTime struct {
	Duration time.Duration
	Modifier zonedb.Modifier
}

// parseClockTime parses a rule AT or era boundary time, honoring the w/s/u
// (and the u-equivalent g/z) suffix letters. An absent suffix means wall
// time.
func parseClockTime(s string) (ClockTime, error) {
	d, suffix, err := parseDurationWithSuffix(s, []string{"w", "s", "u", "g", "z"})
	if err != nil {
		return ClockTime{}, err
	}
	m := zonedb.Wall
	switch suffix {
	case "s":
		m = zonedb.Standard
	case "u", "g", "z":
		m = zonedb.UTC
	}
	return ClockTime{Duration: d, Modifier: m}, nil
}

// SaveTime is a rule SAVE column or fixed-save RULES column value: the
// amount added to standard time, and whether that addition counts as
// daylight saving. An absent s/d suffix defaults to standard when the
// amount is zero and daylight otherwise.
type SaveTime struct {
	Duration time.Duration
	DST      bool
}

func parseSaveTime(s string) (SaveTime, error) {
	d, suffix, err := parseDurationWithSuffix(s, []string{"s", "d"})
	if err != nil {
		return SaveTime{}, err
	}
	dst := suffix == "d"
	if suffix == "" {
		dst = d != 0
	}
	return SaveTime{Duration: d, DST: dst}, nil
}

func parseDurationWithSuffix(s string, suffixes []string) (time.Duration, string, error) {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			d, err := parseDuration(strings.TrimSuffix(s, suffix))
			if err != nil {
				return 0, "", err
			}
			return d, suffix, nil
		}
	}
	d, err := parseDuration(s)
	if err != nil {
		return 0, "", err
	}
	return d, "", nil
}

// parseDuration parses a time of day relative to 00:00 - "2", "2:00",
// "01:28:14", "00:19:32.13", "-2:30" or "-" (meaning zero).
func parseDuration(s string) (time.Duration, error) {
	if s == "-" {
		return 0, nil
	}

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = strings.TrimPrefix(s, "-")
	}

	parts := strings.Split(s, ":")
	var hours, minutes, seconds, millis int
	var err error

	if hours, err = strconv.Atoi(parts[0]); err != nil {
		return 0, fmt.Errorf("invalid hour format: %v", err)
	}
	if len(parts) > 1 {
		if minutes, err = strconv.Atoi(parts[1]); err != nil {
			return 0, fmt.Errorf("invalid minute format: %v", err)
		}
	}
	if len(parts) > 2 {
		secParts := strings.Split(parts[2], ".")
		if seconds, err = strconv.Atoi(secParts[0]); err != nil {
			return 0, fmt.Errorf("invalid second format: %v", err)
		}
		if len(secParts) > 1 {
			frac := secParts[1]
			if len(frac) > 3 {
				frac = frac[:3]
			} else {
				for len(frac) < 3 {
					frac += "0"
				}
			}
			if millis, err = strconv.Atoi(frac); err != nil {
				return 0, fmt.Errorf("invalid fractional second format: %v", err)
			}
		}
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	if negative {
		d = -d
	}
	return d, nil
}
