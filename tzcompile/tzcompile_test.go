package tzcompile

import (
	"bytes"
	"testing"
	"time"

	"github.com/jgrahl/acetz/tzdata"
	"github.com/jgrahl/acetz/tzif"
	"github.com/jgrahl/acetz/zonedb"
	"github.com/jgrahl/acetz/zoneprocessor"
)

func testFile() tzdata.Source {
	return tzdata.Source{
		Rules: []tzdata.RuleRecord{
			{
				Name: "Test", From: 1987, To: 2006, In: time.April,
				On: tzdata.DaySelector{Kind: tzdata.SelectorOnOrAfter, Num: 1, Weekday: time.Sunday},
				At: tzdata.ClockTime{Duration: 2 * time.Hour, Modifier: zonedb.Wall},
				Save: tzdata.SaveTime{Duration: time.Hour, DST: true}, Letter: "D",
			},
			{
				Name: "Test", From: 1987, To: 2006, In: time.October,
				On: tzdata.DaySelector{Kind: tzdata.SelectorLastWeekday, Weekday: time.Sunday},
				At: tzdata.ClockTime{Duration: 2 * time.Hour, Modifier: zonedb.Wall},
				Save: tzdata.SaveTime{Duration: 0, DST: false}, Letter: "S",
			},
		},
		Zones: []tzdata.ZoneRecord{
			{
				Name:   "Test/City",
				Offset: -8 * time.Hour,
				Rules:  tzdata.RuleBinding{Kind: tzdata.BindingNamedPolicy, PolicyName: "Test"},
				Format: "P%sT",
			},
		},
		Links: []tzdata.LinkRecord{
			{From: "Test/City", To: "Alias/City"},
		},
	}
}

func TestCompileBuildsRegistry(t *testing.T) {
	reg, err := Compile(testFile(), Options{TZDBVersion: "test", StartYear: 1900, UntilYear: 2100})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(reg.Zones) != 1 {
		t.Fatalf("len(Zones) = %d, want 1", len(reg.Zones))
	}
	if len(reg.ZonesAndLinks) != 2 {
		t.Fatalf("len(ZonesAndLinks) = %d, want 2", len(reg.ZonesAndLinks))
	}

	zone := reg.Zones[0]
	if zone.Name != "Test/City" {
		t.Errorf("zone.Name = %q, want Test/City", zone.Name)
	}
	if len(zone.Eras) != 1 {
		t.Fatalf("len(Eras) = %d, want 1", len(zone.Eras))
	}
	era := zone.Eras[0]
	if era.OffsetSeconds != -28800 {
		t.Errorf("era.OffsetSeconds = %d, want -28800", era.OffsetSeconds)
	}
	if era.Policy == nil || len(era.Policy.Rules) != 2 {
		t.Fatalf("era.Policy = %+v, want 2 rules", era.Policy)
	}

	var link *zonedb.Info
	for _, info := range reg.ZonesAndLinks {
		if info.Name == "Alias/City" {
			link = info
		}
	}
	if link == nil {
		t.Fatal("Alias/City link not found in ZonesAndLinks")
	}
	if !link.IsLink() {
		t.Errorf("Alias/City.IsLink() = false, want true")
	}
	if link.Resolve().Name != "Test/City" {
		t.Errorf("Alias/City.Resolve().Name = %q, want Test/City", link.Resolve().Name)
	}
}

func TestCompileProcessesThroughZoneProcessor(t *testing.T) {
	reg, err := Compile(testFile(), Options{TZDBVersion: "test", StartYear: 1900, UntilYear: 2100})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var proc zoneprocessor.Processor
	if err := proc.Bind(reg.Zones[0]); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	r, err := proc.OffsetForInstant(954669600) // 2000-04-02T10:00:00Z
	if err != nil {
		t.Fatalf("OffsetForInstant: %v", err)
	}
	if r.UTCOffsetSeconds != -28800 || r.DSTOffsetSeconds != 3600 || r.Abbrev != "PDT" {
		t.Errorf("OffsetForInstant result = %+v, want {-28800 3600 PDT}", r)
	}
}

func TestEmitTZifRoundTrips(t *testing.T) {
	reg, err := Compile(testFile(), Options{TZDBVersion: "test", StartYear: 1995, UntilYear: 2010})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	b, err := EmitTZif(reg.Zones[0], 1996, 2005)
	if err != nil {
		t.Fatalf("EmitTZif: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("EmitTZif returned no bytes")
	}

	f, err := tzif.DecodeFile(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if f.Version != tzif.V2 {
		t.Errorf("Version = %v, want V2", f.Version)
	}
	if int(f.V2Header.Timecnt) != len(f.V2Data.TransitionTimes) {
		t.Errorf("Timecnt = %d, want %d", f.V2Header.Timecnt, len(f.V2Data.TransitionTimes))
	}
	if f.V2Header.Timecnt == 0 {
		t.Errorf("Timecnt = 0, want at least one DST transition across 1996-2005")
	}
}
