// Package domain models live tropical cyclone advisory data from the
// RAMMB/CIRA real-time feed.
//
// # Data Source
//
// Active storms are listed on the RAMMB/CIRA tc_realtime index page. Each
// storm links to a detail page which in turn links to machine-readable
// advisory data: an ATCF-style fix deck, or a "vitals" file when no deck is
// published. The adapter layer fetches and resolves those pages; this package
// holds the data conventions and the pure parsing/selection logic.
//
// # Storm Identifiers
//
// A storm identifier is a two-letter basin code followed by 4-6 digits, the
// trailing digits usually carrying the season year:
//
//	AL012025 → Atlantic storm 01 of 2025
//	SH972026 → Southern Hemisphere invest area 97
//
// Basin codes observed upstream: AL, EP, CP, WP, IO, SH.
//
// # ATCF Fix Deck Conventions
//
// Each line is a comma-delimited record. Only a subset of columns matters
// here; positions are zero-based after splitting on "," and trimming:
//
//	field[2]  date-hour, "YYYYMMDDHH" in UTC, e.g. "2025061512" = 2025-06-15 12:00Z
//	field[4]  record kind: "ADJ" (adjusted), "FIX" (fixed), "BEST" (best track)
//	field[6]  latitude in tenths of a degree with hemisphere suffix: "150N" = 15.0
//	field[7]  longitude in tenths of a degree with hemisphere suffix: "0700W" = -70.0
//	field[8]  max sustained wind in knots, integer; non-numeric values mean unreported
//
// Southern ("S") and western ("W") hemispheres negate the coordinate. Lines
// with fewer than 10 fields, an unparseable date-hour, an unknown record
// kind, or an out-of-range coordinate are skipped individually; one bad line
// never discards the rest of the deck.
//
// Decks are not guaranteed to be chronologically monotonic. Upstream
// convention is that the newest fix is appended last, so the default
// selection policy takes the final line rather than the maximum timestamp;
// see [SelectLast] and [SelectByTime].
//
// # Output Shape
//
// The externally visible artifact is a GeoJSON FeatureCollection with a
// metadata block (updated_at, total_features, source_type) and one Point
// feature per discovered storm. A storm whose advisory data could not be
// obtained still yields a feature, marked NO_DATA with a (0,0) geometry, so
// consumers can count expected versus resolved storms without special cases.
package domain
