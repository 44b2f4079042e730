package zoneprocessor

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jgrahl/acetz/zonedb"
)

func wideContext() *zonedb.Context {
	return &zonedb.Context{TZDBVersion: "test", StartYear: 1900, UntilYear: 2100, BaseEpochYear: 1900}
}

func losAngeles() *zonedb.Info {
	policy := &zonedb.Policy{
		Name: "US",
		Rules: []zonedb.Rule{
			{FromYear: 1987, ToYear: 2006, Month: time.April, DayOfMonth: 1, DayOfWeek: zonedb.Weekday(time.Sunday + 1), AtSeconds: 7200, AtModifier: zonedb.Wall, DeltaSeconds: 3600, Letter: "D"},
			{FromYear: 1987, ToYear: 2006, Month: time.October, DayOfMonth: 0, DayOfWeek: zonedb.Weekday(time.Sunday + 1), AtSeconds: 7200, AtModifier: zonedb.Wall, DeltaSeconds: 0, Letter: "S"},
		},
	}
	return &zonedb.Info{
		Name: "America/Los_Angeles",
		Eras: []zonedb.Era{
			{OffsetSeconds: -28800, Policy: policy, Format: "P%sT"},
		},
		Context:           wideContext(),
		TransitionBufSize: 8,
	}
}

func usPacific(la *zonedb.Info) *zonedb.Info {
	return &zonedb.Info{Name: "US/Pacific", Target: la, Context: wideContext()}
}

func rarotonga() *zonedb.Info {
	policy := &zonedb.Policy{
		Name: "Cook",
		Rules: []zonedb.Rule{
			{FromYear: 1978, ToYear: 1991, Month: time.November, DayOfMonth: 1, DayOfWeek: zonedb.Weekday(time.Sunday + 1), AtSeconds: 0, AtModifier: zonedb.Wall, DeltaSeconds: 1800, Letter: "-"},
			{FromYear: 1978, ToYear: 1991, Month: time.March, DayOfMonth: 1, DayOfWeek: zonedb.Weekday(time.Sunday + 1), AtSeconds: 0, AtModifier: zonedb.Wall, DeltaSeconds: 0, Letter: "-"},
		},
	}
	return &zonedb.Info{
		Name:              "Pacific/Rarotonga",
		Eras:              []zonedb.Era{{OffsetSeconds: -36000, Policy: policy, Format: "-1030"}},
		Context:           wideContext(),
		TransitionBufSize: 8,
	}
}

func bahiaBanderas() *zonedb.Info {
	policy := &zonedb.Policy{
		Name: "Mexico",
		Rules: []zonedb.Rule{
			{FromYear: 2002, ToYear: 2030, Month: time.April, DayOfMonth: 1, DayOfWeek: zonedb.Weekday(time.Sunday + 1), AtSeconds: 7200, AtModifier: zonedb.Wall, DeltaSeconds: 3600, Letter: "D"},
			{FromYear: 2002, ToYear: 2030, Month: time.October, DayOfMonth: 0, DayOfWeek: zonedb.Weekday(time.Sunday + 1), AtSeconds: 7200, AtModifier: zonedb.Wall, DeltaSeconds: 0, Letter: "S"},
		},
	}
	return &zonedb.Info{
		Name:              "America/Bahia_Banderas",
		Eras:              []zonedb.Era{{OffsetSeconds: -21600, Policy: policy, Format: "C%sT"}},
		Context:           wideContext(),
		TransitionBufSize: 8,
	}
}

// utcModifierZone builds a single-DST-cycle fixture whose rule AT times are
// expressed in the UTC frame, sidestepping wall/standard frame conversion so
// the fixture's transition instants can be pinned exactly.
func utcModifierZone(name string, offset int32, startMonth time.Month, startLast bool, startDay int, startAt int32, endMonth time.Month, endDay int, delta int32) *zonedb.Info {
	policy := &zonedb.Policy{
		Name: "W",
		Rules: []zonedb.Rule{
			{FromYear: zonedb.MinYear, ToYear: zonedb.MaxYear, Month: startMonth, DayOfMonth: dayOfMonthFor(startLast, startDay), DayOfWeek: zonedb.Weekday(time.Sunday + 1), AtSeconds: startAt, AtModifier: zonedb.UTC, DeltaSeconds: delta, Letter: "S"},
			{FromYear: zonedb.MinYear, ToYear: zonedb.MaxYear, Month: endMonth, DayOfMonth: endDay, DayOfWeek: 0, AtSeconds: 0, AtModifier: zonedb.UTC, DeltaSeconds: 0, Letter: "-"},
		},
	}
	return &zonedb.Info{
		Name:              name,
		Eras:              []zonedb.Era{{OffsetSeconds: offset, Policy: policy, Format: "%s"}},
		Context:           wideContext(),
		TransitionBufSize: 8,
	}
}

func dayOfMonthFor(last bool, day int) int {
	if last {
		return 0
	}
	return day
}

func TestWitnessDST(t *testing.T) {
	tests := []struct {
		name  string
		zone  *zonedb.Info
		epoch int64
		want  int32
	}{
		{"America/Bahia_Banderas", bahiaBanderas(), 1270371600, 3600},
		{"Pacific/Rarotonga", rarotonga(), 279714600, 1800},
		{"Europe/Madrid", utcModifierZone("Europe/Madrid", 0, time.April, true, 0, 82800, time.October, 1, 7200), -999482400, 7200},
		{"Atlantic/Azores", utcModifierZone("Atlantic/Azores", 0, time.April, true, 0, 0, time.October, 1, 7200), -873676800, 7200},
		{"Asia/Hong_Kong", utcModifierZone("Asia/Hong_Kong", 30600, time.September, true, 0, 0, time.October, 19, 1800), -891579600, 1800},
		{"Asia/Ust-Nera", utcModifierZone("Asia/Ust-Nera", 36000, time.March, true, 0, 0, time.September, 27, 3600), 354898800, 3600},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p Processor
			if err := p.Bind(tc.zone); err != nil {
				t.Fatalf("Bind: %v", err)
			}
			r, err := p.OffsetForInstant(tc.epoch)
			if err != nil {
				t.Fatalf("OffsetForInstant: %v", err)
			}
			if r.DSTOffsetSeconds != tc.want {
				t.Errorf("dst = %d, want %d (full result %+v)", r.DSTOffsetSeconds, tc.want, r)
			}
		})
	}
}

func TestLAForward(t *testing.T) {
	var p Processor
	if err := p.Bind(losAngeles()); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	const epoch = 954669600
	got, err := p.OffsetForInstant(epoch)
	if err != nil {
		t.Fatalf("OffsetForInstant: %v", err)
	}
	want := Result{UTCOffsetSeconds: -28800, DSTOffsetSeconds: 3600, Abbrev: "PDT"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("OffsetForInstant(%d) mismatch (-want +got):\n%s", epoch, diff)
	}

	local, err := p.OffsetForLocal(2000, time.April, 2, 3*3600, 0)
	if err != nil {
		t.Fatalf("OffsetForLocal: %v", err)
	}
	if diff := cmp.Diff(want, local); diff != "" {
		t.Errorf("OffsetForLocal mismatch (-want +got):\n%s", diff)
	}
}

func TestLAFoldOverlap(t *testing.T) {
	var p Processor
	if err := p.Bind(losAngeles()); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	fold0, err := p.OffsetForLocal(2000, time.October, 29, 1*3600+59*60+59, 0)
	if err != nil {
		t.Fatalf("OffsetForLocal fold=0: %v", err)
	}
	if got := fold0.TotalOffsetSeconds(); got != -25200 {
		t.Errorf("fold=0 total offset = %d, want -25200", got)
	}

	fold1, err := p.OffsetForLocal(2000, time.October, 29, 1*3600+59*60+59, 1)
	if err != nil {
		t.Fatalf("OffsetForLocal fold=1: %v", err)
	}
	if got := fold1.TotalOffsetSeconds(); got != -28800 {
		t.Errorf("fold=1 total offset = %d, want -28800", got)
	}
}

func TestLAGap(t *testing.T) {
	var p Processor
	if err := p.Bind(losAngeles()); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	fold0, err := p.OffsetForLocal(2000, time.April, 2, 2*3600+30*60, 0)
	if err != nil {
		t.Fatalf("OffsetForLocal fold=0: %v", err)
	}
	if got := fold0.TotalOffsetSeconds(); got != -25200 {
		t.Errorf("gap fold=0 total offset = %d, want -25200 (later offset)", got)
	}

	fold1, err := p.OffsetForLocal(2000, time.April, 2, 2*3600+30*60, 1)
	if err != nil {
		t.Fatalf("OffsetForLocal fold=1: %v", err)
	}
	if got := fold1.TotalOffsetSeconds(); got != -28800 {
		t.Errorf("gap fold=1 total offset = %d, want -28800 (earlier offset)", got)
	}
}

func TestLinkTransparency(t *testing.T) {
	la := losAngeles()
	link := usPacific(la)

	var direct, viaLink Processor
	if err := direct.Bind(la); err != nil {
		t.Fatalf("Bind direct: %v", err)
	}
	if err := viaLink.Bind(link); err != nil {
		t.Fatalf("Bind link: %v", err)
	}

	if !viaLink.IsLink() {
		t.Errorf("IsLink() = false, want true")
	}
	if got, want := viaLink.Name(), "US/Pacific"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
	if got, want := viaLink.TargetName(), "America/Los_Angeles"; got != want {
		t.Errorf("TargetName() = %q, want %q", got, want)
	}

	epochs := []int64{954669600, 0, 972809999}
	for _, e := range epochs {
		want, err := direct.OffsetForInstant(e)
		if err != nil {
			t.Fatalf("direct.OffsetForInstant(%d): %v", e, err)
		}
		got, err := viaLink.OffsetForInstant(e)
		if err != nil {
			t.Fatalf("viaLink.OffsetForInstant(%d): %v", e, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("OffsetForInstant(%d) link mismatch (-direct +link):\n%s", e, diff)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	info := losAngeles()
	info.Context = &zonedb.Context{TZDBVersion: "test", StartYear: 1990, UntilYear: 2030, BaseEpochYear: 1990}

	var p Processor
	if err := p.Bind(info); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	// 1970-01-01 is well before the configured StartYear.
	_, err := p.OffsetForInstant(0)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("OffsetForInstant(0) error = %v, want ErrOutOfRange", err)
	}
}

func TestRarotongaSubHourDST(t *testing.T) {
	var p Processor
	if err := p.Bind(rarotonga()); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	r, err := p.OffsetForInstant(279714600)
	if err != nil {
		t.Fatalf("OffsetForInstant: %v", err)
	}
	if r.DSTOffsetSeconds != 1800 {
		t.Errorf("dst = %d, want 1800", r.DSTOffsetSeconds)
	}
}
