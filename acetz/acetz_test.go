package acetz

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jgrahl/acetz/zonedb"
)

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
		Context:           &zonedb.Context{TZDBVersion: "test", StartYear: 1900, UntilYear: 2100},
		TransitionBufSize: 8,
	}
}

type fakeManager struct {
	infos map[string]*zonedb.Info
}

func (m fakeManager) Get(name string) (*zonedb.Info, bool) {
	info, ok := m.infos[name]
	return info, ok
}

func TestNewFromName(t *testing.T) {
	la := losAngeles()
	mgr := fakeManager{infos: map[string]*zonedb.Info{la.Name: la}}

	tz, err := NewFromName(mgr, "America/Los_Angeles")
	if err != nil {
		t.Fatalf("NewFromName: %v", err)
	}
	if got, want := tz.FullName(), "America/Los_Angeles"; got != want {
		t.Errorf("FullName() = %q, want %q", got, want)
	}

	if _, err := NewFromName(mgr, "Nowhere/Imaginary"); err == nil {
		t.Fatalf("NewFromName(unknown) succeeded, want NotFoundError")
	} else if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("NewFromName(unknown) error type = %T, want *NotFoundError", err)
	}
}

func TestUTCOffsetAndAbbrev(t *testing.T) {
	tz, err := New(losAngeles())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	instant := time.Unix(954669600, 0)

	off, err := tz.UTCOffset(instant)
	if err != nil {
		t.Fatalf("UTCOffset: %v", err)
	}
	if want := -7 * time.Hour; off != want {
		t.Errorf("UTCOffset = %v, want %v", off, want)
	}

	dst, err := tz.DST(instant)
	if err != nil {
		t.Fatalf("DST: %v", err)
	}
	if want := time.Hour; dst != want {
		t.Errorf("DST = %v, want %v", dst, want)
	}

	abbrev, err := tz.Abbrev(instant)
	if err != nil {
		t.Fatalf("Abbrev: %v", err)
	}
	if want := "PDT"; abbrev != want {
		t.Errorf("Abbrev = %q, want %q", abbrev, want)
	}
}

func TestFromUTC(t *testing.T) {
	tz, err := New(losAngeles())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	local, err := tz.FromUTC(time.Unix(954669600, 0))
	if err != nil {
		t.Fatalf("FromUTC: %v", err)
	}
	want := time.Date(2000, time.April, 2, 3, 0, 0, 0, time.UTC)
	if !local.Equal(want) {
		t.Errorf("FromUTC = %v, want %v", local, want)
	}
}

func TestLocalizeRoundTrip(t *testing.T) {
	tz, err := New(losAngeles())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	utc, r, err := tz.Localize(2000, time.April, 2, 3, 0, 0, 0)
	if err != nil {
		t.Fatalf("Localize: %v", err)
	}
	if got, want := utc.Unix(), int64(954669600); got != want {
		t.Errorf("Localize utc = %d, want %d", got, want)
	}
	if diff := cmp.Diff(int32(3600), r.DSTOffsetSeconds); diff != "" {
		t.Errorf("Localize dst mismatch (-want +got):\n%s", diff)
	}
}

func TestEqual(t *testing.T) {
	la1, err := New(losAngeles())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	la2, err := New(losAngeles())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !la1.Equal(la2) {
		t.Errorf("Equal() = false for two TimeZones with the same name")
	}
	if la1.Equal(nil) {
		t.Errorf("Equal(nil) = true, want false")
	}
}
