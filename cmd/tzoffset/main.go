// Command tzoffset compiles an IANA tzdata source file and prints the
// UTC offset, DST status and abbreviation governing a zone at either an
// instant (Unix seconds) or a local wall-clock date-time, the way
// tzinfo inspects a compiled TZif file, but driven from tzdata source
// and the zone processor instead of a binary blob.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jgrahl/acetz/acetz"
	"github.com/jgrahl/acetz/tzcompile"
	"github.com/jgrahl/acetz/tzdata"
	"github.com/jgrahl/acetz/tzmanager"
)

var (
	localFlag     = flag.Bool("local", false, "Interpret the timestamp as local wall-clock time (YYYY-MM-DDTHH:MM:SS) instead of Unix seconds")
	foldFlag      = flag.Int("fold", 0, "Fold to use when -local resolves an ambiguous time (0 or 1)")
	startYearFlag = flag.Int("start-year", 1900, "Earliest year the compiled database is queryable over")
	untilYearFlag = flag.Int("until-year", 2100, "Latest year (exclusive) the compiled database is queryable over")
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 3 {
		fmt.Println("Usage: tzoffset [flags] <tzdata file> <zone name> <timestamp>")
		os.Exit(1)
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Println("opening tzdata file:", err)
		os.Exit(1)
	}
	defer f.Close()

	parsed, err := tzdata.Parse(f)
	if err != nil {
		fmt.Println("parsing tzdata file:", err)
		os.Exit(1)
	}

	reg, err := tzcompile.Compile(parsed, tzcompile.Options{
		TZDBVersion: "local",
		StartYear:   *startYearFlag,
		UntilYear:   *untilYearFlag,
	})
	if err != nil {
		fmt.Println("compiling tzdata file:", err)
		os.Exit(1)
	}

	mgr := tzmanager.New(reg)
	tz, err := acetz.NewFromName(mgr, args[1])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *localFlag {
		runLocal(tz, args[2], *foldFlag)
	} else {
		runInstant(tz, args[2])
	}
}

func runInstant(tz *acetz.TimeZone, raw string) {
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Println("parsing timestamp:", err)
		os.Exit(1)
	}
	t := time.Unix(sec, 0).UTC()

	off, err := tz.UTCOffset(t)
	if err != nil {
		fmt.Println("resolving offset:", err)
		os.Exit(1)
	}
	dst, err := tz.DST(t)
	if err != nil {
		fmt.Println("resolving dst:", err)
		os.Exit(1)
	}
	abbrev, err := tz.Abbrev(t)
	if err != nil {
		fmt.Println("resolving abbrev:", err)
		os.Exit(1)
	}
	local, err := tz.FromUTC(t)
	if err != nil {
		fmt.Println("resolving local time:", err)
		os.Exit(1)
	}

	fmt.Printf("zone:       %s", tz.FullName())
	if tz.IsLink() {
		fmt.Printf(" -> %s", tz.TargetName())
	}
	fmt.Println()
	fmt.Println("instant:    ", t.Format(time.RFC3339))
	fmt.Println("local:      ", local.Format("2006-01-02T15:04:05"))
	fmt.Println("utc offset: ", off)
	fmt.Println("dst offset: ", dst)
	fmt.Println("abbrev:     ", abbrev)
}

func runLocal(tz *acetz.TimeZone, raw string, fold int) {
	layout := "2006-01-02T15:04:05"
	parsed, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		fmt.Println("parsing local time:", err)
		os.Exit(1)
	}

	utc, r, err := tz.Localize(parsed.Year(), parsed.Month(), parsed.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), fold)
	if err != nil {
		fmt.Println("resolving local time:", err)
		os.Exit(1)
	}

	fmt.Printf("zone:       %s", tz.FullName())
	if tz.IsLink() {
		fmt.Printf(" -> %s", tz.TargetName())
	}
	fmt.Println()
	fmt.Println("local:      ", raw, "(fold", fold, ")")
	fmt.Println("utc:        ", utc.Format(time.RFC3339))
	fmt.Println("utc offset: ", time.Duration(r.TotalOffsetSeconds())*time.Second)
	fmt.Println("dst offset: ", time.Duration(r.DSTOffsetSeconds)*time.Second)
	fmt.Println("abbrev:     ", r.Abbrev)
}
