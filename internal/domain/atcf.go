package domain

import (
	"strconv"
	"strings"
	"time"
)

// deck column layout; see the package doc for the upstream conventions.
const (
	fieldDateHour = 2
	fieldKind     = 4
	fieldLat      = 6
	fieldLon      = 7
	fieldWind     = 8
	minFields     = 10
)

// ParseDeck parses an ATCF-style fix deck into fixes, preserving source line
// order. Malformed lines are skipped individually; the result may be empty
// but parsing itself never fails.
func ParseDeck(raw string) []AdvisoryFix {
	var fixes []AdvisoryFix
	for line := range strings.Lines(raw) {
		if fix, ok := parseDeckLine(line); ok {
			fixes = append(fixes, fix)
		}
	}
	return fixes
}

// parseDeckLine parses a single deck line. The second return value is false
// for anything that is not a well-formed fix record.
func parseDeckLine(line string) (AdvisoryFix, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < minFields {
		return AdvisoryFix{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	kind := RecordKind(fields[fieldKind])
	if !kind.valid() {
		return AdvisoryFix{}, false
	}

	ts, ok := parseDateHour(fields[fieldDateHour])
	if !ok {
		return AdvisoryFix{}, false
	}

	lat, ok := parseTenthsDegrees(fields[fieldLat], 'N', 'S', 90)
	if !ok {
		return AdvisoryFix{}, false
	}
	lon, ok := parseTenthsDegrees(fields[fieldLon], 'E', 'W', 180)
	if !ok {
		return AdvisoryFix{}, false
	}

	return AdvisoryFix{
		Time:       ts,
		Lat:        lat,
		Lon:        lon,
		MaxWindKts: parseWindKts(fields[fieldWind]),
		Kind:       kind,
	}, true
}

// parseDateHour parses a "YYYYMMDDHH" token as a UTC time. The token must be
// exactly ten digits.
func parseDateHour(s string) (time.Time, bool) {
	if len(s) != 10 || !isDigits(s) {
		return time.Time{}, false
	}
	ts, err := time.Parse("2006010215", s)
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}

// parseTenthsDegrees parses a coordinate like "150N" or "0700W": a magnitude
// in tenths of a degree with a trailing hemisphere letter. The neg hemisphere
// negates the value. Out-of-range values are rejected so every emitted fix
// stays within valid coordinate bounds.
func parseTenthsDegrees(s string, pos, neg byte, limit float64) (float64, bool) {
	if len(s) < 2 {
		return 0, false
	}
	hemi := s[len(s)-1]
	digits := s[:len(s)-1]
	if !isDigits(digits) {
		return 0, false
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	deg := float64(v) / 10
	switch hemi {
	case pos:
	case neg:
		deg = -deg
	default:
		return 0, false
	}

	if deg < -limit || deg > limit {
		return 0, false
	}
	return deg, true
}

// parseWindKts parses max wind in knots. Non-numeric values mean unreported
// and map to 0 rather than invalidating the line.
func parseWindKts(s string) int {
	if s == "" || !isDigits(s) {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
