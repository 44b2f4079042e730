package tzdata

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jgrahl/acetz/zonedb"
)

func TestParse_ZurichHistory(t *testing.T) {
	var input = strings.TrimSpace(`
# Rule  NAME  FROM  TO    -  IN   ON       AT    SAVE  LETTER/S
Rule    Swiss 1941  1942  -  May  Mon>=1   1:00  1:00  S
Rule    Swiss 1941  1942  -  Oct  Mon>=1   2:00  0     -
Rule    EU    1977  1980  -  Apr  Sun>=1   1:00u 1:00  S
Rule    EU    1977  only  -  Sep  lastSun  1:00u 0     -
Rule    EU    1978  only  -  Oct   1       1:00u 0     -
Rule    EU    1979  1995  -  Sep  lastSun  1:00u 0     -
Rule    EU    1981  max   -  Mar  lastSun  1:00u 1:00  S
Rule    EU    1996  max   -  Oct  lastSun  1:00u 0     -

# Zone  NAME           STDOFF      RULES  FORMAT  [UNTIL]
Zone    Europe/Zurich  0:34:08     -      LMT     1853 Jul 16
						0:29:45.50  -      BMT     1894 Jun
						1:00        Swiss  CE%sT   1981
						1:00        EU     CE%sT

Link    Europe/Zurich  Europe/Vaduz
`)

	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	want := Source{
		Rules: []RuleRecord{
			{Name: "Swiss", From: 1941, To: 1942, In: time.May, On: DaySelector{Kind: SelectorOnOrAfter, Weekday: time.Monday, Num: 1}, At: ClockTime{Duration: 1 * time.Hour, Modifier: zonedb.Wall}, Save: SaveTime{Duration: 1 * time.Hour, DST: true}, Letter: "S"},
			{Name: "Swiss", From: 1941, To: 1942, In: time.October, On: DaySelector{Kind: SelectorOnOrAfter, Weekday: time.Monday, Num: 1}, At: ClockTime{Duration: 2 * time.Hour, Modifier: zonedb.Wall}, Save: SaveTime{Duration: 0, DST: false}, Letter: ""},
			{Name: "EU", From: 1977, To: 1980, In: time.April, On: DaySelector{Kind: SelectorOnOrAfter, Weekday: time.Sunday, Num: 1}, At: ClockTime{Duration: 1 * time.Hour, Modifier: zonedb.UTC}, Save: SaveTime{Duration: 1 * time.Hour, DST: true}, Letter: "S"},
			{Name: "EU", From: 1977, To: 1977, In: time.September, On: DaySelector{Kind: SelectorLastWeekday, Weekday: time.Sunday}, At: ClockTime{Duration: 1 * time.Hour, Modifier: zonedb.UTC}, Save: SaveTime{Duration: 0, DST: false}, Letter: ""},
			{Name: "EU", From: 1978, To: 1978, In: time.October, On: DaySelector{Kind: SelectorExactDay, Num: 1}, At: ClockTime{Duration: 1 * time.Hour, Modifier: zonedb.UTC}, Save: SaveTime{Duration: 0, DST: false}, Letter: ""},
			{Name: "EU", From: 1979, To: 1995, In: time.September, On: DaySelector{Kind: SelectorLastWeekday, Weekday: time.Sunday}, At: ClockTime{Duration: 1 * time.Hour, Modifier: zonedb.UTC}, Save: SaveTime{Duration: 0, DST: false}, Letter: ""},
			{Name: "EU", From: 1981, To: MaxYear, In: time.March, On: DaySelector{Kind: SelectorLastWeekday, Weekday: time.Sunday}, At: ClockTime{Duration: 1 * time.Hour, Modifier: zonedb.UTC}, Save: SaveTime{Duration: 1 * time.Hour, DST: true}, Letter: "S"},
			{Name: "EU", From: 1996, To: MaxYear, In: time.October, On: DaySelector{Kind: SelectorLastWeekday, Weekday: time.Sunday}, At: ClockTime{Duration: 1 * time.Hour, Modifier: zonedb.UTC}, Save: SaveTime{Duration: 0, DST: false}, Letter: ""},
		},
		Zones: []ZoneRecord{
			{Name: "Europe/Zurich", Continuation: false, Offset: 34*time.Minute + 8*time.Second, Rules: RuleBinding{Kind: BindingStandard}, Format: "LMT", Until: EraBoundary{Defined: true, Year: 1853, Month: time.July, Day: 16, Modifier: zonedb.Wall}},
			{Name: "", Continuation: true, Offset: 29*time.Minute + 45*time.Second + 500*time.Millisecond, Rules: RuleBinding{Kind: BindingStandard}, Format: "BMT", Until: EraBoundary{Defined: true, Year: 1894, Month: time.June, Day: 1, Modifier: zonedb.Wall}},
			{Name: "", Continuation: true, Offset: 1 * time.Hour, Rules: RuleBinding{Kind: BindingNamedPolicy, PolicyName: "Swiss"}, Format: "CE%sT", Until: EraBoundary{Defined: true, Year: 1981, Month: time.January, Day: 1, Modifier: zonedb.Wall}},
			{Name: "", Continuation: true, Offset: 1 * time.Hour, Rules: RuleBinding{Kind: BindingNamedPolicy, PolicyName: "EU"}, Format: "CE%sT", Until: EraBoundary{Defined: false}},
		},
		Links: []LinkRecord{
			{From: "Europe/Zurich", To: "Europe/Vaduz"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_LeapAndExpires(t *testing.T) {
	var input = strings.TrimSpace(`
Leap  2016  Dec    31   23:59:60  +     S
Expires  2020  Dec    28   00:00:00
`)
	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	want := Source{
		Leaps: []LeapRecord{
			{Year: 2016, Month: time.December, Day: 31, At: Clock{23, 59, 60}, Corr: LeapAdded, Mode: StationaryLeapTime},
		},
		Expirations: []ExpiresRecord{
			{Year: 2020, Month: time.December, Day: 28, At: Clock{0, 0, 0}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

// TestParse_FixedSaveRules exercises a zone whose RULES column carries a
// literal SAVE value instead of a policy name, as permanent-DST zones like
// historical Africa/Windhoek did.
func TestParse_FixedSaveRules(t *testing.T) {
	var input = strings.TrimSpace(`
Zone  Africa/Windhoek  1:30  1:00  SAST
`)
	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := Source{
		Zones: []ZoneRecord{
			{Name: "Africa/Windhoek", Offset: 90 * time.Minute, Rules: RuleBinding{Kind: BindingFixedSave, Save: SaveTime{Duration: time.Hour, DST: true}}, Format: "SAST"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDaySelector_OnOrBefore(t *testing.T) {
	got, err := parseDaySelector("Sun<=25")
	if err != nil {
		t.Fatal(err)
	}
	want := DaySelector{Kind: SelectorOnOrBefore, Weekday: time.Sunday, Num: 25}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseDaySelector() mismatch (-want +got):\n%s", diff)
	}
}

// TestEraBoundary_ResolvesLastWeekday checks that a weekday-relative UNTIL
// selector is pinned to a concrete day of month at parse time, not deferred
// the way a Rule's ON column is.
func TestEraBoundary_ResolvesLastWeekday(t *testing.T) {
	b, err := parseEraBoundary("1995 Sep lastSun 1:00u")
	if err != nil {
		t.Fatal(err)
	}
	if b.Day != 24 {
		t.Errorf("Day = %d, want 24 (last Sunday of September 1995)", b.Day)
	}
	if b.Modifier != zonedb.UTC {
		t.Errorf("Modifier = %v, want UTC", b.Modifier)
	}
}

func TestParse_UnrecognizedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("Bogus line here"))
	if err == nil {
		t.Fatal("expected an error")
	}
	var le *lineError
	if !errors.As(err, &le) {
		t.Fatalf("error %v is not a *lineError", err)
	}
	if le.lineNumber != 1 {
		t.Errorf("lineNumber = %d, want 1", le.lineNumber)
	}
}
