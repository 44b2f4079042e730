// Package acetz is the tzinfo-style adapter (spec §4.3/§6): it wraps a
// zoneprocessor.Processor bound to one zonedb.Info and exposes the
// capability set a host date/time library needs from a pluggable timezone
// object — offset/DST/abbreviation at an instant, and local-to-UTC
// resolution with fold — built around time.Time/time.Duration the way
// martin-sucha-timezones's NewLocation adapts zone data for the time
// package, rather than constructing an actual time.Location.
package acetz

import (
	"time"

	"github.com/jgrahl/acetz/zonedb"
	"github.com/jgrahl/acetz/zoneprocessor"
)

// TimeZone wraps a zoneprocessor.Processor over one zone or link. The
// processor is bound when the TimeZone is constructed, not on first query.
// The zero value is unusable; construct with New or NewFromName.
type TimeZone struct {
	info *zonedb.Info
	proc zoneprocessor.Processor
}

// New returns a TimeZone for info, binding its processor immediately.
func New(info *zonedb.Info) (*TimeZone, error) {
	tz := &TimeZone{info: info}
	if err := tz.proc.Bind(info); err != nil {
		return nil, err
	}
	return tz, nil
}

// manager is the minimal capability NewFromName needs from tzmanager.Manager,
// expressed as an interface so this package doesn't import it directly
// (tzmanager already depends on zonedb; acetz stays a leaf alongside it).
type manager interface {
	Get(name string) (*zonedb.Info, bool)
}

// NewFromName resolves name through mgr and returns a bound TimeZone, or
// an error if the name isn't registered.
func NewFromName(mgr manager, name string) (*TimeZone, error) {
	info, ok := mgr.Get(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return New(info)
}

// NotFoundError reports that a zone or link name isn't registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "acetz: zone not found: " + e.Name
}

// FullName returns the zone's own name (the link name, for a link).
func (tz *TimeZone) FullName() string { return tz.proc.Name() }

// TargetName returns the name of the zone whose data is actually used.
func (tz *TimeZone) TargetName() string { return tz.proc.TargetName() }

// IsLink reports whether this TimeZone was constructed from a link.
func (tz *TimeZone) IsLink() bool { return tz.proc.IsLink() }

// String implements fmt.Stringer, returning the zone's display name.
func (tz *TimeZone) String() string { return tz.FullName() }

// Equal reports whether tz and other name the same zone. Equality is by
// name, per spec §4.3.
func (tz *TimeZone) Equal(other *TimeZone) bool {
	if tz == nil || other == nil {
		return tz == other
	}
	return tz.FullName() == other.FullName()
}

// UTCOffset returns the total UTC offset (standard plus DST) in effect at t.
func (tz *TimeZone) UTCOffset(t time.Time) (time.Duration, error) {
	r, err := tz.proc.OffsetForInstant(t.Unix())
	if err != nil {
		return 0, err
	}
	return time.Duration(r.TotalOffsetSeconds()) * time.Second, nil
}

// DST returns the DST component in effect at t (zero outside DST).
func (tz *TimeZone) DST(t time.Time) (time.Duration, error) {
	r, err := tz.proc.OffsetForInstant(t.Unix())
	if err != nil {
		return 0, err
	}
	return time.Duration(r.DSTOffsetSeconds) * time.Second, nil
}

// Abbrev returns the abbreviation in effect at t, e.g. "PST" or "PDT".
func (tz *TimeZone) Abbrev(t time.Time) (string, error) {
	r, err := tz.proc.OffsetForInstant(t.Unix())
	if err != nil {
		return "", err
	}
	return r.Abbrev, nil
}

// FromUTC returns the local wall-clock representation of the UTC instant t
// (t's own location is ignored; t.Unix() is used as the instant).
func (tz *TimeZone) FromUTC(t time.Time) (time.Time, error) {
	r, err := tz.proc.OffsetForInstant(t.Unix())
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Add(time.Duration(r.TotalOffsetSeconds()) * time.Second), nil
}

// Localize resolves a wall-clock local date-time to its governing instant
// and offset, disambiguating gaps/overlaps per fold (0 or 1). It returns
// the offset/DST/abbrev in effect and the corresponding UTC instant.
func (tz *TimeZone) Localize(year int, month time.Month, day, hour, min, sec, fold int) (time.Time, zoneprocessor.Result, error) {
	secOfDay := hour*3600 + min*60 + sec
	r, err := tz.proc.OffsetForLocal(year, month, day, secOfDay, fold)
	if err != nil {
		return time.Time{}, zoneprocessor.Result{}, err
	}
	local := time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	utc := local.Add(-time.Duration(r.TotalOffsetSeconds()) * time.Second)
	return utc, r, nil
}
