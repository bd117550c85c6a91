package rammb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
)

const (
	// DefaultBaseURL is the production tc_realtime origin. Overridable via
	// config for mock servers and tests.
	DefaultBaseURL = "https://rammb-data.cira.colostate.edu/tc_realtime/"

	listingPage     = "current_cyclones.asp"
	stormPageFormat = "storm.asp?storm_identifier=%s"

	sourceAgency = "RAMMB CIRA"
	sourceLabel  = "RAMMB CIRA Live TC Feed"
)

var (
	// stormRefRe matches a storm reference in the listing markup: a basin code
	// plus sequence digits, a dash separator, and a display name running to
	// the end of the anchor text (or line).
	stormRefRe = regexp.MustCompile(`[A-Z]{2}\d{4,6}\s*-\s*[^<\r\n]+`)

	// stormIDRe extracts the identifier token from a matched reference.
	stormIDRe = regexp.MustCompile(`^[A-Z]{2}\d{4,6}`)

	// Advisory-data link patterns, in fixed priority order: the ATCF fix deck
	// is preferred; some storm pages only carry a "vitals" style file.
	atcfLinkRe   = regexp.MustCompile(`href="([^"]*atcf[^"]*)"`)
	vitalsLinkRe = regexp.MustCompile(`href="([^"]*vitals[^"]*)"`)
)

// Source discovers storms and resolves their advisory decks from the
// RAMMB/CIRA pages. It is safe for concurrent use.
type Source struct {
	base    *url.URL
	fetcher Fetcher
	logger  *slog.Logger
}

// NewSource creates a RAMMB source rooted at baseURL.
func NewSource(baseURL string, fetcher Fetcher, logger *slog.Logger) (*Source, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", baseURL, err)
	}
	return &Source{base: base, fetcher: fetcher, logger: logger}, nil
}

// Info identifies the provider on features and collections.
func (s *Source) Info() domain.SourceInfo {
	return domain.SourceInfo{Agency: sourceAgency, Label: sourceLabel}
}

// Discover fetches the index page and extracts the set of active storms.
// A listing fetch failure is the one error that empties a whole run.
func (s *Source) Discover(ctx context.Context) ([]domain.StormIdentity, error) {
	listingURL, err := s.resolveRef(listingPage)
	if err != nil {
		return nil, err
	}
	listing, err := s.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetch storm listing: %w", err)
	}
	return ExtractStorms(listing), nil
}

// ExtractStorms scans listing markup for storm references and returns the
// distinct identities in first-seen order. The display name is the text after
// the final dash in the reference, falling back to the whole reference when
// that text is empty.
func ExtractStorms(listing string) []domain.StormIdentity {
	var storms []domain.StormIdentity
	seen := make(map[domain.StormIdentity]struct{})

	for _, ref := range stormRefRe.FindAllString(listing, -1) {
		id := stormIDRe.FindString(ref)

		var name string
		if i := strings.LastIndex(ref, "-"); i >= 0 {
			name = strings.TrimSpace(ref[i+1:])
		}
		if name == "" {
			name = strings.TrimSpace(ref)
		}

		identity := domain.StormIdentity{ID: id, Name: name}
		if _, dup := seen[identity]; dup {
			continue
		}
		seen[identity] = struct{}{}
		storms = append(storms, identity)
	}
	return storms
}

// Resolve locates and retrieves a storm's raw advisory deck.
func (s *Source) Resolve(ctx context.Context, identity domain.StormIdentity) (string, error) {
	advisoryURL, err := s.ResolveAdvisoryURL(ctx, identity)
	if err != nil {
		return "", err
	}
	raw, err := s.FetchAdvisory(ctx, advisoryURL)
	if err != nil {
		return "", fmt.Errorf("fetch advisory data for %s: %w", identity.ID, err)
	}
	return raw, nil
}

// ResolveAdvisoryURL fetches a storm's detail page and locates its
// advisory-data link, resolved to an absolute URL. Returns an error wrapping
// domain.ErrNoAdvisoryLink when the page holds no recognizable link, which is
// distinguishable from a transport failure.
func (s *Source) ResolveAdvisoryURL(ctx context.Context, identity domain.StormIdentity) (string, error) {
	pageURL, err := s.resolveRef(fmt.Sprintf(stormPageFormat, identity.ID))
	if err != nil {
		return "", err
	}
	page, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch storm page for %s: %w", identity.ID, err)
	}

	link, ok := findAdvisoryLink(page)
	if !ok {
		return "", fmt.Errorf("storm %s: %w", identity.ID, domain.ErrNoAdvisoryLink)
	}
	return s.resolveRef(link)
}

// FetchAdvisory retrieves the advisory deck at a previously resolved URL.
func (s *Source) FetchAdvisory(ctx context.Context, advisoryURL string) (string, error) {
	return s.fetcher.Fetch(ctx, advisoryURL)
}

// Parse turns a raw advisory deck into fix records.
func (s *Source) Parse(raw string) []domain.AdvisoryFix {
	return domain.ParseDeck(raw)
}

// findAdvisoryLink searches storm-page markup for an advisory-data link,
// trying the ATCF pattern first and the vitals fallback second. First match
// wins.
func findAdvisoryLink(page string) (string, bool) {
	if m := atcfLinkRe.FindStringSubmatch(page); len(m) == 2 {
		return m[1], true
	}
	if m := vitalsLinkRe.FindStringSubmatch(page); len(m) == 2 {
		return m[1], true
	}
	return "", false
}

// resolveRef resolves a possibly relative link against the provider origin.
func (s *Source) resolveRef(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", ref, err)
	}
	return s.base.ResolveReference(u).String(), nil
}
