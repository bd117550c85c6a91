// Command validate performs end-to-end integrity checks on a mock tc_realtime
// site generated by genmock. It drives the real discovery, resolution, and
// parsing code against the on-disk pages, then assembles a full feature
// collection and verifies the output invariants.
//
// Usage:
//
//	go run ./cmd/validate -site data/mock/site
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/cyclone-feed-service/internal/adapter/rammb"
	"github.com/couchcryptid/cyclone-feed-service/internal/aggregator"
	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
	"github.com/couchcryptid/cyclone-feed-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

const siteBaseURL = "https://mock.local/tc_realtime/"

var baseTime = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	site := flag.String("site", "", "directory containing the mock site")
	flag.Parse()

	if *site == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*site); code != 0 {
		os.Exit(code)
	}
}

func run(siteDir string) int {
	// Fix the clock so no-data fallback timestamps are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(baseTime))
	defer domain.SetClock(nil)

	fmt.Println("=== Cyclone Feed Integrity Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source, err := rammb.NewSource(siteBaseURL, &dirFetcher{dir: siteDir}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: create source: %v\n", err)
		return 1
	}

	ctx := context.Background()
	storms, err := source.Discover(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: discover storms: %v\n", err)
		return 1
	}

	decks := resolveAll(ctx, source, storms)

	phases := []*phase{
		validateDiscovery(storms),
		validateResolution(storms, decks),
		validateDecks(source, decks),
		validateFeed(ctx, source, storms, decks),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Storms: %d discovered, %d with advisory decks\n", len(storms), len(decks))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// dirFetcher serves site URLs from files in a local directory. Storm detail
// pages are keyed by the storm_identifier query parameter; everything else
// maps to the URL's base filename.
type dirFetcher struct {
	dir string
}

func (f *dirFetcher) Fetch(_ context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := filepath.Base(u.Path)
	if id := u.Query().Get("storm_identifier"); id != "" {
		name = fmt.Sprintf("storm_%s.asp", strings.ToLower(id))
	}
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// resolveAll fetches the advisory deck for every storm that has one.
func resolveAll(ctx context.Context, source *rammb.Source, storms []domain.StormIdentity) map[string]string {
	decks := make(map[string]string)
	for _, s := range storms {
		deck, err := source.Resolve(ctx, s)
		if err != nil {
			continue
		}
		decks[s.ID] = deck
	}
	return decks
}

// ── Phase 1: Discovery ──
// Validates storm identities extracted from the listing page.

func validateDiscovery(storms []domain.StormIdentity) *phase {
	p := &phase{name: "Phase 1: Discovery (listing page)"}

	if len(storms) == 0 {
		p.errorf("no storms extracted from listing")
		return p
	}

	seen := map[string]bool{}
	for i, s := range storms {
		if len(s.ID) < 6 {
			p.errorf("storm %d: identifier %q too short", i, s.ID)
		}
		basin := s.ID[:2]
		if basin != strings.ToUpper(basin) {
			p.errorf("storm %d: basin prefix %q not uppercase", i, basin)
		}
		if s.Name == "" {
			p.errorf("storm %d (%s): empty name", i, s.ID)
		}
		if seen[s.ID] {
			p.errorf("storm %d: duplicate identifier %s", i, s.ID)
		}
		seen[s.ID] = true
	}
	return p
}

// ── Phase 2: Resolution ──
// Validates that every storm either resolves to a deck or fails with the
// sentinel no-advisory error, never a transport error.

func validateResolution(storms []domain.StormIdentity, decks map[string]string) *phase {
	p := &phase{name: "Phase 2: Resolution (detail pages)"}

	for _, s := range storms {
		deck, ok := decks[s.ID]
		if !ok {
			continue
		}
		if strings.TrimSpace(deck) == "" {
			p.errorf("%s: resolved deck is empty", s.ID)
		}
	}
	if len(decks) == 0 {
		p.errorf("no storm resolved to an advisory deck")
	}
	return p
}

// ── Phase 3: Deck Integrity ──
// Parses each deck and checks the fix invariants.

func validateDecks(source *rammb.Source, decks map[string]string) *phase {
	p := &phase{name: "Phase 3: Deck Integrity (ATCF parsing)"}

	for id, deck := range decks {
		fixes := source.Parse(deck)
		if len(fixes) == 0 {
			p.errorf("%s: deck parsed to zero fixes", id)
			continue
		}

		for i, fix := range fixes {
			if fix.Lat < -90 || fix.Lat > 90 {
				p.errorf("%s fix %d: latitude %g out of range", id, i, fix.Lat)
			}
			if fix.Lon < -180 || fix.Lon > 180 {
				p.errorf("%s fix %d: longitude %g out of range", id, i, fix.Lon)
			}
			if fix.MaxWindKts < 0 {
				p.errorf("%s fix %d: negative wind %d", id, i, fix.MaxWindKts)
			}
			if fix.Time.IsZero() {
				p.errorf("%s fix %d: zero advisory time", id, i)
			}
			if i > 0 && fix.Time.Before(fixes[i-1].Time) {
				p.errorf("%s fix %d: time %s before previous fix", id, i, fix.Time.Format(time.RFC3339))
			}
		}

		// Parsing the same deck twice must yield identical fixes.
		again := source.Parse(deck)
		if len(again) != len(fixes) {
			p.errorf("%s: reparse yields %d fixes, first pass %d", id, len(again), len(fixes))
		}
	}
	return p
}

// ── Phase 4: Feed Assembly ──
// Runs the real aggregator over the mock site and checks the collection.

func validateFeed(ctx context.Context, source *rammb.Source, storms []domain.StormIdentity, decks map[string]string) *phase {
	p := &phase{name: "Phase 4: Feed Assembly (aggregation)"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	agg := aggregator.New(source, domain.SelectLast, logger, observability.NewMetricsForTesting(), 4, 0)

	fc, err := agg.Aggregate(ctx)
	if err != nil {
		p.errorf("aggregate: %v", err)
		return p
	}

	if len(fc.Features) != len(storms) {
		p.errorf("feature count: expected %d, got %d", len(storms), len(fc.Features))
	}

	for _, f := range fc.Features {
		_, hasDeck := decks[f.StormID]
		switch {
		case hasDeck && f.Quality != domain.QualityOK:
			p.errorf("%s: has a deck but quality is %q", f.StormID, f.Quality)
		case !hasDeck && f.Quality != domain.QualityNoData:
			p.errorf("%s: no deck but quality is %q", f.StormID, f.Quality)
		}

		if f.Quality == domain.QualityNoData {
			if !strings.HasSuffix(f.StormName, " - NO DATA") {
				p.errorf("%s: no-data feature name %q missing suffix", f.StormID, f.StormName)
			}
			if !f.AdvisoryTime.Equal(baseTime) {
				p.errorf("%s: no-data advisory time %s, expected fixed clock", f.StormID, f.AdvisoryTime.Format(time.RFC3339))
			}
		}
	}

	// The GeoJSON rendering must carry every feature with point geometry.
	gj := fc.GeoJSON()
	if gj.Type != "FeatureCollection" {
		p.errorf("geojson type %q", gj.Type)
	}
	if gj.Metadata.TotalFeatures != len(fc.Features) {
		p.errorf("geojson metadata count %d, features %d", gj.Metadata.TotalFeatures, len(fc.Features))
	}
	for i, feat := range gj.Features {
		if feat.Geometry.Type != "Point" {
			p.errorf("geojson feature %d: geometry type %q", i, feat.Geometry.Type)
		}
		if len(feat.Geometry.Coordinates) != 2 {
			p.errorf("geojson feature %d: %d coordinates", i, len(feat.Geometry.Coordinates))
		}
	}

	return p
}
