// Command genmock generates a mock RAMMB/CIRA tc_realtime site on disk for
// local development and test fixtures. It writes a current cyclones listing
// page, a detail page per storm, and an ATCF deck file per storm, using the
// actual domain package so the decks round-trip through the real parser.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/site
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
)

var baseTime = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

// stormDef describes one mock storm and the track it should carry.
type stormDef struct {
	id     string
	name   string
	basin  string
	number string
	// track points as (lat tenths string, lon tenths string, wind kts),
	// oldest first, six hours apart ending at baseTime.
	track []trackDef
	// noDeck storms get a detail page without any advisory link, exercising
	// the no-data fallback path downstream.
	noDeck bool
}

type trackDef struct {
	lat  string
	lon  string
	wind int
}

var storms = []stormDef{
	{
		id: "AL052025", name: "ERNESTO", basin: "AL", number: "05",
		track: []trackDef{
			{lat: "148N", lon: "0652W", wind: 45},
			{lat: "155N", lon: "0668W", wind: 55},
			{lat: "163N", lon: "0685W", wind: 65},
			{lat: "172N", lon: "0701W", wind: 75},
		},
	},
	{
		id: "EP022025", name: "BORIS", basin: "EP", number: "02",
		track: []trackDef{
			{lat: "121N", lon: "1043W", wind: 30},
			{lat: "126N", lon: "1062W", wind: 35},
			{lat: "130N", lon: "1080W", wind: 40},
		},
	},
	{
		id: "SH082025", name: "TIFFANY", basin: "SH", number: "08",
		track: []trackDef{
			{lat: "142S", lon: "1188E", wind: 50},
			{lat: "151S", lon: "1175E", wind: 60},
		},
	},
	{
		id: "WP112025", name: "TEN-W", basin: "WP", number: "11",
		noDeck: true,
	},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the mock site")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	if err := writeListing(*out); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	log.Printf("wrote listing: %d storms", len(storms))

	for _, s := range storms {
		if err := writeStorm(*out, s); err != nil {
			return fmt.Errorf("writing storm %s: %w", s.id, err)
		}
		if s.noDeck {
			log.Printf("%s (%s): no deck", s.id, s.name)
			continue
		}
		deck := renderDeck(s)
		fixes := domain.ParseDeck(deck)
		if len(fixes) != len(s.track) {
			return fmt.Errorf("storm %s: deck renders %d fixes, want %d", s.id, len(fixes), len(s.track))
		}
		log.Printf("%s (%s): %d fixes, latest %d kts", s.id, s.name, len(fixes), fixes[len(fixes)-1].MaxWindKts)
	}

	log.Printf("mock site written to %s", *out)
	return nil
}

func writeListing(dir string) error {
	var b strings.Builder
	b.WriteString("<html><head><title>Current Tropical Cyclones</title></head><body>\n")
	b.WriteString("<h2>Active Storms</h2>\n<ul>\n")
	for _, s := range storms {
		fmt.Fprintf(&b, "  <li><a href=\"storm.asp?storm_identifier=%s\">%s - %s</a></li>\n", s.id, s.id, s.name)
	}
	b.WriteString("</ul>\n</body></html>\n")
	return writeFile(filepath.Join(dir, "current_cyclones.asp"), b.String())
}

func writeStorm(dir string, s stormDef) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%s - %s</title></head><body>\n", s.id, s.name)
	fmt.Fprintf(&b, "<h2>%s - %s</h2>\n", s.id, s.name)
	if !s.noDeck {
		deckFile := deckFileName(s)
		fmt.Fprintf(&b, "<p><a href=\"%s\">Latest ATCF fix data</a></p>\n", deckFile)
		if err := writeFile(filepath.Join(dir, deckFile), renderDeck(s)); err != nil {
			return err
		}
	}
	b.WriteString("</body></html>\n")
	page := fmt.Sprintf("storm_%s.asp", strings.ToLower(s.id))
	return writeFile(filepath.Join(dir, page), b.String())
}

func deckFileName(s stormDef) string {
	return fmt.Sprintf("atcf_%s.txt", strings.ToLower(s.id))
}

// renderDeck emits one ATCF line per track point, oldest first, stepping back
// six hours per point from baseTime.
func renderDeck(s stormDef) string {
	var b strings.Builder
	for i, t := range s.track {
		at := baseTime.Add(-time.Duration(len(s.track)-1-i) * 6 * time.Hour)
		fmt.Fprintf(&b, "%s, %s, %s, 03, FIX, CI, %s, %s, %d, 0\n",
			s.basin, s.number, at.Format("2006010215"), t.lat, t.lon, t.wind)
	}
	return b.String()
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
