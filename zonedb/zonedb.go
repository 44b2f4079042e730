// Package zonedb defines the compiled, read-only representation of a tz
// database zone: contexts, rules, policies, eras and the zone/link
// registries that the zone processor queries against.
//
// Values in this package are produced by the tzcompile package and are never
// mutated once built; they are shared freely across zoneprocessor instances.
package zonedb

import "time"

// Modifier identifies the frame a rule's AT time or an era's UNTIL time is
// expressed in.
type Modifier uint8

const (
	// Wall is local wall-clock time, i.e. standard time plus any DST in
	// effect at that moment.
	Wall Modifier = iota
	// Standard is local standard time, with no DST applied.
	Standard
	// UTC is universal time.
	UTC
)

func (m Modifier) String() string {
	switch m {
	case Wall:
		return "w"
	case Standard:
		return "s"
	case UTC:
		return "u"
	default:
		return "?"
	}
}

// MinYear and MaxYear are the sentinels used for a Rule's FromYear/ToYear to
// mean "indefinite past" and "indefinite future" respectively.
const (
	MinYear = -1 << 31
	MaxYear = 1<<31 - 1
)

// Weekday encodes a rule's day-of-week selector. Zero means the rule's
// DayOfMonth is exact; 1-7 select Sunday-Saturday (time.Weekday + 1), so that
// the zero value of Weekday is distinguishable from Sunday.
type Weekday uint8

// AsTime converts w (which must be nonzero) to a time.Weekday.
func (w Weekday) AsTime() time.Weekday {
	return time.Weekday(w - 1)
}

// Rule is one recurrence rule within a Policy.
//
// A rule applies in calendar year Y iff FromYear <= Y <= ToYear.
type Rule struct {
	FromYear int
	ToYear   int

	Month time.Month

	// DayOfMonth is the day of month the rule refers to. If DayOfWeek is
	// zero, this is the exact day. If DayOfWeek is nonzero and DayOfMonth
	// is zero, the rule means "the last DayOfWeek of Month". Otherwise it
	// means "the first DayOfWeek on or after DayOfMonth".
	DayOfMonth int
	DayOfWeek  Weekday

	// AtSeconds is the transition time of day, in seconds since local
	// midnight, expressed in the frame named by AtModifier.
	AtSeconds    int32
	AtModifier   Modifier
	DeltaSeconds int32 // DST offset added to the era's standard offset.
	Letter       string
}

// Applies reports whether the rule is in effect during calendar year y.
func (r Rule) Applies(y int) bool {
	return r.FromYear <= y && y <= r.ToYear
}

// Policy is a named, ordered set of recurrence rules.
type Policy struct {
	Name  string
	Rules []Rule
}

// Era is one row of a zone's history: a fixed standard offset, optionally
// modulated by a Policy or a fixed DST delta, active until the moment named
// by the Until* fields (or indefinitely, for the last era of a zone, in
// which case UntilDefined is false).
type Era struct {
	OffsetSeconds int32
	Policy        *Policy // nil if the era has no DST rules.

	// DeltaSeconds is the fixed DST offset applied when Policy is nil and
	// the era nonetheless observes a constant DST offset (rare, but used
	// by a handful of zones). Zero when the era is pure standard time.
	DeltaSeconds int32

	// Format is the abbreviation template: a literal, a template containing
	// "%s" (substitute the governing rule's Letter), or a "STD/DST" pair
	// separated by a slash.
	Format string

	UntilDefined  bool
	UntilYear     int
	UntilMonth    time.Month
	UntilDay      int
	UntilSeconds  int32
	UntilModifier Modifier
}

// HasPolicy reports whether the era's DST behaviour comes from a rule
// policy rather than a fixed delta.
func (e Era) HasPolicy() bool {
	return e.Policy != nil
}

// Context carries database-wide metadata shared by every zone compiled from
// the same tzdata release.
type Context struct {
	TZDBVersion   string
	StartYear     int
	UntilYear     int
	BaseEpochYear int
}

// Info is a zone's identity: either a true zone with its own era list, or a
// link whose Target points at the zone the data actually lives on.
type Info struct {
	Name    string
	Target  *Info // non-nil for links.
	Eras    []Era // empty for links.
	Context *Context

	// TransitionBufSize is the compiler-computed upper bound on the number
	// of active transitions this zone can produce in any single year. The
	// zone processor must never exceed it.
	TransitionBufSize int
}

// IsLink reports whether the zone is a link (an alias for another zone's
// data).
func (z *Info) IsLink() bool {
	return z.Target != nil
}

// Resolve follows a single link hop and returns the zone that actually
// carries era data. Resolve never recurses: the compiler guarantees links
// point directly at a true zone.
func (z *Info) Resolve() *Info {
	if z.Target != nil {
		return z.Target
	}
	return z
}

// Registry is an immutable, name-sorted lookup table of zones (and
// optionally links). See tzmanager for the binary-search accessor built on
// top of it.
type Registry struct {
	// Zones holds true zones only, sorted by Name.
	Zones []*Info
	// ZonesAndLinks holds every zone and link, sorted by Name.
	ZonesAndLinks []*Info
}
