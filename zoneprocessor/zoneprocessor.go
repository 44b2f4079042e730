// Package zoneprocessor implements the core of the engine: given a compiled
// zonedb.Info and a calendar year, it materialises the year's ordered,
// bounded-capacity set of active transitions and answers offset-for-instant
// and offset-for-local-datetime queries against them (the latter honouring
// PEP-495-style gap/overlap "fold" semantics).
//
// A Processor caches at most one year at a time (the "YearCached" state of
// the per-processor state machine); recomputing on every year change. It is
// not safe for concurrent use by multiple goroutines against the same
// instance: callers either serialise access or instantiate one Processor per
// goroutine.
package zoneprocessor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jgrahl/acetz/internal/caldate"
	"github.com/jgrahl/acetz/zonedb"
)

// ErrOutOfRange is returned when the requested year falls outside the
// owning ZoneContext's [StartYear, UntilYear) window.
var ErrOutOfRange = errors.New("zoneprocessor: year out of range")

// ErrBadZoneData is returned when a zone record violates an invariant the
// processor relies on (non-monotonic eras, a fixed buffer exceeded during
// expansion, an unbound processor queried directly). It is fatal: the cache
// is left invalid so the next query recomputes cleanly, but there is no
// in-band recovery.
var ErrBadZoneData = errors.New("zoneprocessor: malformed zone data")

// Fixed capacities for the per-processor buffers. These bound the engine's
// working set regardless of which zone is bound; no real tzdata zone comes
// close to exhausting them within a 3-year matching window.
const (
	maxMatchingEras = 8
	maxCandidates   = 64
	maxTransitions  = 32
)

const (
	negInfYear = -30000
	posInfYear = 30000
)

var negInf = caldate.DateTuple{Year: negInfYear, Month: time.January, Day: 1, Seconds: 0}
var posInf = caldate.DateTuple{Year: posInfYear, Month: time.January, Day: 1, Seconds: 0}

// Result is the outcome of an offset query: the standard UTC offset, the
// DST component currently added to it, and the abbreviation in effect.
type Result struct {
	UTCOffsetSeconds int32
	DSTOffsetSeconds int32
	Abbrev           string
}

// TotalOffsetSeconds returns the full local-minus-UTC offset, DST included.
func (r Result) TotalOffsetSeconds() int32 { return r.UTCOffsetSeconds + r.DSTOffsetSeconds }

func resultOf(t transition) Result {
	return Result{UTCOffsetSeconds: t.utcOffset, DSTOffsetSeconds: t.dstOffset, Abbrev: t.abbrev}
}

// matchingEra is a zone era clipped to the processor's 3-year working
// window for some requested year.
type matchingEra struct {
	era     *zonedb.Era
	startDT caldate.DateTuple // wall frame (approximate; see eraUntilWall)
	untilDT caldate.DateTuple // wall frame (approximate; see eraUntilWall)

	// lastUTC/lastDST are the exit offsets observed leaving this matching
	// era, set once its candidate transitions have been fixed up. They seed
	// the frame expansion of the next matching era's own transitions.
	lastUTC int32
	lastDST int32
}

// transition is a concrete instant at which (utcOffset, dstOffset) changes,
// derived either from a recurrence rule or synthetically at a matching
// era's start.
type transition struct {
	rule       *zonedb.Rule
	raw        caldate.DateTuple
	modifier   zonedb.Modifier
	isEraStart bool

	w, s, u                caldate.DateTuple
	startW, startS, startU caldate.DateTuple

	utcOffset int32
	dstOffset int32
	abbrev    string
}

// Processor is the per-zone offset engine. The zero value is an unbound
// processor; call Bind before querying it.
type Processor struct {
	zone       *zonedb.Info // resolved (target, for a link)
	linkName   string
	targetName string
	bound      bool

	cachedYear int
	yearValid  bool

	seedUTC, seedDST int32

	matches    [maxMatchingEras]matchingEra
	numMatches int

	candidates [maxCandidates]transition
	numCand    int

	active    [maxTransitions]transition
	numActive int
}

// Bind associates p with zone. If zone is a Link, it is resolved to its
// target once; Name reports the link's own name while TargetName reports
// where the era data actually lives. Binding discards any cached year.
func (p *Processor) Bind(zone *zonedb.Info) error {
	if zone == nil {
		return fmt.Errorf("%w: nil zone", ErrBadZoneData)
	}
	resolved := zone.Resolve()
	if resolved == nil || len(resolved.Eras) == 0 {
		return fmt.Errorf("%w: zone %s has no eras", ErrBadZoneData, zone.Name)
	}
	p.linkName = zone.Name
	p.targetName = resolved.Name
	p.zone = resolved
	p.bound = true
	p.yearValid = false
	return nil
}

// Name returns the bound zone's display name (the link name, for a link).
func (p *Processor) Name() string { return p.linkName }

// TargetName returns the name of the zone whose era data is actually used
// (equal to Name for a true zone).
func (p *Processor) TargetName() string { return p.targetName }

// IsLink reports whether the bound zone is a link.
func (p *Processor) IsLink() bool { return p.bound && p.linkName != p.targetName }

// OffsetForInstant returns the offset and abbreviation in effect at the
// given Unix epoch second.
func (p *Processor) OffsetForInstant(epochSeconds int64) (Result, error) {
	dt := caldate.FromEpochSeconds(epochSeconds)
	if err := p.ensureYear(dt.Year); err != nil {
		return Result{}, err
	}
	if idx, ok := p.lastAtOrBefore(epochSeconds); ok {
		return resultOf(p.active[idx]), nil
	}
	// Instant precedes every transition cached for this year; this can
	// happen right at the lower edge of the cached window. Widen to the
	// prior year and retry once.
	if err := p.ensureYear(dt.Year - 1); err != nil {
		return Result{}, err
	}
	if idx, ok := p.lastAtOrBefore(epochSeconds); ok {
		return resultOf(p.active[idx]), nil
	}
	return Result{}, fmt.Errorf("%w: no governing transition for instant %d", ErrBadZoneData, epochSeconds)
}

func (p *Processor) lastAtOrBefore(epochSeconds int64) (int, bool) {
	idx := -1
	for i := 0; i < p.numActive; i++ {
		if p.active[i].startU.ToEpochSeconds() <= epochSeconds {
			idx = i
		} else {
			break
		}
	}
	return idx, idx >= 0
}

// OffsetForLocal resolves a wall-clock local date-time to the offset in
// effect, disambiguating gaps and overlaps per fold (0 or 1), PEP-495 style.
func (p *Processor) OffsetForLocal(year int, month time.Month, day, secondsOfDay, fold int) (Result, error) {
	local := caldate.DateTuple{Year: year, Month: month, Day: day, Seconds: secondsOfDay}.Normalize()
	if err := p.ensureYear(local.Year); err != nil {
		return Result{}, err
	}
	t0, t1, t2, err := p.findBracket(local)
	if err != nil {
		return Result{}, err
	}
	return p.classify(local, t0, t1, t2, fold), nil
}

// findBracket returns T0, T1 (and T2, if available) such that
// T0.startW <= local < T1.startW, widening the cached year by one step in
// either direction if local falls outside the currently cached buffer.
func (p *Processor) findBracket(local caldate.DateTuple) (t0, t1 transition, t2 *transition, err error) {
	idx := p.searchStartW(local)
	if idx == 0 {
		if err = p.ensureYear(local.Year - 1); err != nil {
			return
		}
		idx = p.searchStartW(local)
		if idx == 0 {
			err = fmt.Errorf("%w: no governing transition before %v", ErrBadZoneData, local)
			return
		}
	}
	t0 = p.active[idx-1]
	if idx < p.numActive {
		t1 = p.active[idx]
		if idx+1 < p.numActive {
			t2c := p.active[idx+1]
			t2 = &t2c
		}
		return
	}

	// T1 isn't present in the cached year's buffer: widen to the next year
	// and search again. t0 was already captured by value above, so
	// recomputing the buffer here is safe.
	if err = p.ensureYear(local.Year + 1); err != nil {
		return
	}
	idx2 := p.searchStartW(local)
	if idx2 >= p.numActive {
		err = fmt.Errorf("%w: no governing transition after %v", ErrBadZoneData, local)
		return
	}
	t1 = p.active[idx2]
	if idx2+1 < p.numActive {
		t2c := p.active[idx2+1]
		t2 = &t2c
	}
	return
}

func (p *Processor) searchStartW(local caldate.DateTuple) int {
	for i := 0; i < p.numActive; i++ {
		if local.Before(p.active[i].startW) {
			return i
		}
	}
	return p.numActive
}

func (p *Processor) classify(local caldate.DateTuple, t0, t1 transition, t2 *transition, fold int) Result {
	localEpoch := local.ToEpochSeconds()
	total0 := int64(t0.utcOffset) + int64(t0.dstOffset)
	total1 := int64(t1.utcOffset) + int64(t1.dstOffset)
	u0 := localEpoch - total0
	u1 := localEpoch - total1

	t0StartU := t0.startU.ToEpochSeconds()
	t1StartU := t1.startU.ToEpochSeconds()
	var t2StartU int64 = 1<<62 - 1
	if t2 != nil {
		t2StartU = t2.startU.ToEpochSeconds()
	}

	u0Governed := u0 >= t0StartU && u0 < t1StartU
	u1Governed := u1 >= t1StartU && u1 < t2StartU

	switch {
	case u0Governed && u1Governed:
		if fold == 0 {
			return resultOf(t0)
		}
		return resultOf(t1)
	case !u0Governed && !u1Governed:
		if fold == 0 {
			return resultOf(t1)
		}
		return resultOf(t0)
	case u0Governed:
		return resultOf(t0)
	default:
		return resultOf(t1)
	}
}

// ensureYear recomputes the active-transitions buffer for year if it isn't
// already cached, implementing §4.1.1-§4.1.4 of the offset engine.
func (p *Processor) ensureYear(year int) error {
	if !p.bound {
		return fmt.Errorf("%w: processor is not bound to a zone", ErrBadZoneData)
	}
	if p.yearValid && p.cachedYear == year {
		return nil
	}
	ctx := p.zone.Context
	if ctx != nil && (year < ctx.StartYear || year >= ctx.UntilYear) {
		return fmt.Errorf("%w: year %d outside [%d,%d)", ErrOutOfRange, year, ctx.StartYear, ctx.UntilYear)
	}

	p.yearValid = false
	if err := p.findMatchingEras(year); err != nil {
		return err
	}

	p.numCand = 0
	runUTC, runDST := p.seedUTC, p.seedDST
	for mi := 0; mi < p.numMatches; mi++ {
		m := &p.matches[mi]
		var err error
		runUTC, runDST, err = p.processMatchingEra(m, year, runUTC, runDST)
		if err != nil {
			return err
		}
		m.lastUTC, m.lastDST = runUTC, runDST
	}

	if err := p.finalizeActive(year); err != nil {
		return err
	}

	p.cachedYear = year
	p.yearValid = true
	return nil
}

// findMatchingEras walks the zone's eras in order and records the ones
// overlapping the 3-year window around year (§4.1.1-§4.1.2).
func (p *Processor) findMatchingEras(year int) error {
	p.numMatches = 0
	lo := caldate.DateTuple{Year: year - 1, Month: time.December, Day: 1, Seconds: 0}
	hi := caldate.DateTuple{Year: year + 1, Month: time.February, Day: 1, Seconds: 0}

	eras := p.zone.Eras
	if len(eras) == 0 {
		return fmt.Errorf("%w: zone %s has no eras", ErrBadZoneData, p.zone.Name)
	}

	// Seed for the very first matching era: the approximate exit offset of
	// whichever era precedes it, or a zero-DST seed from the first era
	// itself if there is no such predecessor (the source's own behaviour;
	// it is exact when the first era's UNTIL uses the wall modifier, and
	// neither tzcompile nor this package checks for standard/UTC there).
	p.seedUTC, p.seedDST = eras[0].OffsetSeconds, 0

	prevUntil := negInf
	firstMatchFound := false
	for i := range eras {
		e := &eras[i]
		start := prevUntil
		until := eraUntilWall(e)
		if until.Compare(prevUntil) <= 0 {
			return fmt.Errorf("%w: zone %s has non-monotonic eras", ErrBadZoneData, p.zone.Name)
		}

		if until.Compare(lo) <= 0 || start.Compare(hi) >= 0 {
			prevUntil = until
			if !firstMatchFound {
				p.seedUTC, p.seedDST = approxExitOffset(e)
			}
			continue
		}
		firstMatchFound = true

		if p.numMatches >= maxMatchingEras {
			return fmt.Errorf("%w: zone %s exceeds matching era capacity", ErrBadZoneData, p.zone.Name)
		}
		clippedStart := start
		if clippedStart.Compare(lo) < 0 {
			clippedStart = lo
		}
		clippedUntil := until
		if hi.Compare(until) < 0 {
			clippedUntil = hi
		}
		p.matches[p.numMatches] = matchingEra{era: e, startDT: clippedStart, untilDT: clippedUntil}
		p.numMatches++
		prevUntil = until
	}
	if p.numMatches == 0 {
		return fmt.Errorf("%w: no matching era for year %d in zone %s", ErrBadZoneData, year, p.zone.Name)
	}
	return nil
}

// approxExitOffset estimates the offset in effect as era e ends, without
// running its rule expansion: its standard offset plus, for a fixed-DST
// era, its fixed delta (zero for a rule-governed era). This is precise
// enough for the 3-year window overlap test, which operates at day/month
// granularity; the true exit offset threaded through transition frame
// expansion is computed exactly in processMatchingEra.
func approxExitOffset(e *zonedb.Era) (utc, dst int32) {
	utc = e.OffsetSeconds
	if !e.HasPolicy() {
		dst = e.DeltaSeconds
	}
	return
}

// eraUntilWall converts era e's UNTIL bound to an approximate wall-frame
// date tuple, using approxExitOffset as the conversion frame (see its
// doc comment).
func eraUntilWall(e *zonedb.Era) caldate.DateTuple {
	if !e.UntilDefined {
		return posInf
	}
	utc, dst := approxExitOffset(e)
	raw := caldate.DateTuple{Year: e.UntilYear, Month: e.UntilMonth, Day: e.UntilDay, Seconds: int(e.UntilSeconds)}
	w, _, _ := frames(raw, e.UntilModifier, utc, dst)
	return w
}

// frames computes the wall, standard and UTC representations of a moment
// given in the named modifier's frame, using (utc, dst) as the offsets in
// effect just before the moment.
func frames(raw caldate.DateTuple, mod zonedb.Modifier, utc, dst int32) (w, s, u caldate.DateTuple) {
	switch mod {
	case zonedb.Standard:
		s = raw
		w = s.AddSeconds(int(dst))
		u = s.AddSeconds(-int(utc))
	case zonedb.UTC:
		u = raw
		s = u.AddSeconds(int(utc))
		w = s.AddSeconds(int(dst))
	default: // zonedb.Wall, and any unrecognised modifier treated as wall.
		w = raw
		s = w.AddSeconds(-int(dst))
		u = s.AddSeconds(-int(utc))
	}
	return
}

// processMatchingEra expands m's candidate transitions (§4.1.3), fixes them
// up in chronological order (§4.1.4 steps 1, 4 and 5), and returns the
// offsets in effect as m ends (its "exit" offsets).
func (p *Processor) processMatchingEra(m *matchingEra, year int, runUTC, runDST int32) (int32, int32, error) {
	start := p.numCand
	if err := p.expandMatchingEra(m, year, runUTC, runDST); err != nil {
		return 0, 0, err
	}
	end := p.numCand

	sort.SliceStable(p.candidates[start:end], func(i, j int) bool {
		return p.candidates[start+i].raw.Before(p.candidates[start+j].raw)
	})

	for ci := start; ci < end; ci++ {
		c := &p.candidates[ci]
		w, s, u := frames(c.raw, c.modifier, runUTC, runDST)
		c.w, c.s, c.u = w, s, u
		c.startW, c.startS, c.startU = w, s, u

		if c.rule != nil {
			c.utcOffset = m.era.OffsetSeconds
			c.dstOffset = c.rule.DeltaSeconds
		} else {
			c.utcOffset = m.era.OffsetSeconds
			c.dstOffset = m.era.DeltaSeconds
		}
		c.abbrev = resolveAbbrev(m.era, c)

		// startW is the later of the wall readings just before and just
		// after the transition, so a local time inside a forward gap is
		// bracketed by the transition before the gap and this one.
		if post := u.AddSeconds(int(c.utcOffset + c.dstOffset)); w.Before(post) {
			c.startW = post
		}

		runUTC, runDST = c.utcOffset, c.dstOffset
	}
	return runUTC, runDST, nil
}

// expandMatchingEra appends m's candidate transitions to p.candidates
// (§4.1.3): rule-derived candidates for every rule applying in year-1,
// year or year+1, plus (unless a rule already lands exactly on it) a
// synthetic candidate at the matching era's own start.
func (p *Processor) expandMatchingEra(m *matchingEra, year int, runUTC, runDST int32) error {
	if !m.era.HasPolicy() {
		return p.appendCandidate(transition{raw: m.startDT, modifier: zonedb.Wall, isEraStart: true})
	}

	type raw struct {
		dt  caldate.DateTuple
		mod zonedb.Modifier
		r   *zonedb.Rule
	}
	var cands []raw
	for ri := range m.era.Policy.Rules {
		r := &m.era.Policy.Rules[ri]
		for _, y := range [3]int{year - 1, year, year + 1} {
			if !r.Applies(y) {
				continue
			}
			hasWeekday := r.DayOfWeek != 0
			wd := time.Sunday
			if hasWeekday {
				wd = r.DayOfWeek.AsTime()
			}
			yy, mm, dd := caldate.ResolveDay(y, r.Month, r.DayOfMonth, wd, hasWeekday)
			cands = append(cands, raw{
				dt:  caldate.DateTuple{Year: yy, Month: mm, Day: dd, Seconds: int(r.AtSeconds)},
				mod: r.AtModifier,
				r:   r,
			})
		}
	}

	hasRuleAtStart := false
	for _, c := range cands {
		w, _, _ := frames(c.dt, c.mod, runUTC, runDST)
		if w.Compare(m.startDT) == 0 {
			hasRuleAtStart = true
			break
		}
	}

	for _, c := range cands {
		if err := p.appendCandidate(transition{rule: c.r, raw: c.dt, modifier: c.mod}); err != nil {
			return err
		}
	}
	if !hasRuleAtStart {
		if err := p.appendCandidate(transition{raw: m.startDT, modifier: zonedb.Wall, isEraStart: true}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) appendCandidate(t transition) error {
	if p.numCand >= maxCandidates {
		return fmt.Errorf("%w: zone %s exceeds transition candidate capacity", ErrBadZoneData, p.zone.Name)
	}
	p.candidates[p.numCand] = t
	p.numCand++
	return nil
}

// resolveAbbrev applies era's abbreviation template (§4.1.4 step 5).
func resolveAbbrev(era *zonedb.Era, c *transition) string {
	format := era.Format
	letter := ""
	if c.rule != nil {
		letter = c.rule.Letter
		if letter == "-" {
			letter = ""
		}
	}
	if idx := strings.Index(format, "%s"); idx >= 0 {
		return format[:idx] + letter + format[idx+2:]
	}
	if idx := strings.IndexByte(format, '/'); idx >= 0 {
		if c.dstOffset == 0 {
			return format[:idx]
		}
		return format[idx+1:]
	}
	return format
}

// finalizeActive applies the active-range test (§4.1.4 step 3) across every
// candidate transition and copies the survivors into p.active, ordered
// ascending by UTC start instant.
func (p *Processor) finalizeActive(year int) error {
	yearStart := caldate.DateTuple{Year: year, Month: time.January, Day: 1, Seconds: 0}.ToEpochSeconds()
	yearEnd := caldate.DateTuple{Year: year + 1, Month: time.January, Day: 1, Seconds: 0}.ToEpochSeconds()

	order := make([]int, p.numCand)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.candidates[order[a]].startU.Before(p.candidates[order[b]].startU)
	})

	lastBeforeStart := -1
	for _, i := range order {
		if p.candidates[i].startU.ToEpochSeconds() <= yearStart {
			lastBeforeStart = i
		}
	}

	capacity := maxTransitions
	if p.zone.TransitionBufSize > 0 && p.zone.TransitionBufSize < capacity {
		capacity = p.zone.TransitionBufSize
	}

	p.numActive = 0
	for _, i := range order {
		c := &p.candidates[i]
		u := c.startU.ToEpochSeconds()
		active := (u >= yearStart && u < yearEnd) || i == lastBeforeStart
		if !active {
			continue
		}
		if p.numActive >= capacity {
			return fmt.Errorf("%w: zone %s exceeds active transition capacity", ErrBadZoneData, p.zone.Name)
		}
		p.active[p.numActive] = *c
		p.numActive++
	}
	for i := 1; i < p.numActive; i++ {
		if !p.active[i-1].startU.Before(p.active[i].startU) {
			return fmt.Errorf("%w: non-monotonic transitions in zone %s", ErrBadZoneData, p.zone.Name)
		}
	}
	if p.numActive == 0 {
		return fmt.Errorf("%w: no active transition for year %d in zone %s", ErrBadZoneData, year, p.zone.Name)
	}
	return nil
}
