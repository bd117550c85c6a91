package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDeckLine = "AL, 01, 2025061512, 03, FIX, CI, 150N, 0700W, 65, 988"

func TestParseDeck_SingleValidLine(t *testing.T) {
	fixes := domain.ParseDeck(validDeckLine)
	require.Len(t, fixes, 1)

	fix := fixes[0]
	assert.Equal(t, time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC), fix.Time)
	assert.Equal(t, 15.0, fix.Lat)
	assert.Equal(t, -70.0, fix.Lon)
	assert.Equal(t, 65, fix.MaxWindKts)
	assert.Equal(t, domain.RecordFIX, fix.Kind)
}

func TestParseDeck_HemisphereSigns(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lon     string
		wantLat float64
		wantLon float64
	}{
		{name: "south and east", lat: "300S", lon: "1200E", wantLat: -30.0, wantLon: 120.0},
		{name: "north and west", lat: "150N", lon: "0700W", wantLat: 15.0, wantLon: -70.0},
		{name: "equator", lat: "0N", lon: "0E", wantLat: 0, wantLon: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := "SH, 97, 2026010106, 03, BEST, CI, " + tt.lat + ", " + tt.lon + ", 35, 1002"
			fixes := domain.ParseDeck(line)
			require.Len(t, fixes, 1)
			assert.Equal(t, tt.wantLat, fixes[0].Lat)
			assert.Equal(t, tt.wantLon, fixes[0].Lon)
		})
	}
}

func TestParseDeck_SkipsMalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "too few fields", line: "AL, 01, 2025061512, 03, FIX, CI, 150N"},
		{name: "unknown record kind", line: "AL, 01, 2025061512, 03, FCST, CI, 150N, 0700W, 65, 988"},
		{name: "date hour too short", line: "AL, 01, 25061512, 03, FIX, CI, 150N, 0700W, 65, 988"},
		{name: "date hour not digits", line: "AL, 01, 2025O61512, 03, FIX, CI, 150N, 0700W, 65, 988"},
		{name: "impossible hour", line: "AL, 01, 2025061525, 03, FIX, CI, 150N, 0700W, 65, 988"},
		{name: "latitude missing hemisphere", line: "AL, 01, 2025061512, 03, FIX, CI, 150, 0700W, 65, 988"},
		{name: "latitude out of range", line: "AL, 01, 2025061512, 03, FIX, CI, 950N, 0700W, 65, 988"},
		{name: "longitude out of range", line: "AL, 01, 2025061512, 03, FIX, CI, 150N, 1850W, 65, 988"},
		{name: "empty line", line: ""},
		{name: "header junk", line: "some header text without commas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, domain.ParseDeck(tt.line))
		})
	}
}

func TestParseDeck_BadLineDoesNotAbortDeck(t *testing.T) {
	deck := strings.Join([]string{
		"AL, 01, 2025061506, 03, FIX, CI, 148N, 0690W, 55, 992",
		"this line is garbage",
		"AL, 01, 2025061512, 03, FIX, CI, 150N, 0700W, 65, 988",
	}, "\n")

	fixes := domain.ParseDeck(deck)
	require.Len(t, fixes, 2)
	assert.Equal(t, 55, fixes[0].MaxWindKts)
	assert.Equal(t, 65, fixes[1].MaxWindKts)
}

func TestParseDeck_PreservesSourceOrder(t *testing.T) {
	// Deliberately non-chronological: the parser must not reorder.
	deck := strings.Join([]string{
		"AL, 01, 2025061512, 03, FIX, CI, 150N, 0700W, 65, 988",
		"AL, 01, 2025061506, 03, FIX, CI, 148N, 0690W, 55, 992",
	}, "\n")

	fixes := domain.ParseDeck(deck)
	require.Len(t, fixes, 2)
	assert.True(t, fixes[0].Time.After(fixes[1].Time))
}

func TestParseDeck_NonNumericWindMeansZero(t *testing.T) {
	line := "AL, 01, 2025061512, 03, FIX, CI, 150N, 0700W, UNK, 988"
	fixes := domain.ParseDeck(line)
	require.Len(t, fixes, 1)
	assert.Zero(t, fixes[0].MaxWindKts)
}

func TestParseDeck_Idempotent(t *testing.T) {
	deck := strings.Join([]string{
		"AL, 01, 2025061506, 03, ADJ, CI, 148N, 0690W, 55, 992",
		"garbage",
		"AL, 01, 2025061512, 03, BEST, CI, 150N, 0700W, 65, 988",
	}, "\n")

	first := domain.ParseDeck(deck)
	second := domain.ParseDeck(deck)
	assert.Equal(t, first, second)
}

func TestParseDeck_OutputBounds(t *testing.T) {
	deck := strings.Join([]string{
		"WP, 05, 2025091000, 03, BEST, CI, 0S, 1800E, 0, 1008",
		"WP, 05, 2025091006, 03, BEST, CI, 900S, 1800W, 185, 880",
		"WP, 05, 2025091012, 03, FIX, CI, 900N, 0E, 10, 1004",
	}, "\n")

	fixes := domain.ParseDeck(deck)
	require.Len(t, fixes, 3)
	for _, fix := range fixes {
		assert.GreaterOrEqual(t, fix.Lat, -90.0)
		assert.LessOrEqual(t, fix.Lat, 90.0)
		assert.GreaterOrEqual(t, fix.Lon, -180.0)
		assert.LessOrEqual(t, fix.Lon, 180.0)
		assert.GreaterOrEqual(t, fix.MaxWindKts, 0)
	}
}
