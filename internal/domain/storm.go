package domain

import "time"

// RecordKind classifies an advisory fix line.
type RecordKind string

const (
	RecordADJ  RecordKind = "ADJ"
	RecordFIX  RecordKind = "FIX"
	RecordBEST RecordKind = "BEST"
)

func (k RecordKind) valid() bool {
	switch k {
	case RecordADJ, RecordFIX, RecordBEST:
		return true
	}
	return false
}

// DataQuality marks whether a storm's advisory data was obtained.
type DataQuality string

const (
	QualityOK     DataQuality = "ok"
	QualityNoData DataQuality = "no_data"
)

// StormIdentity names one active storm discovered on the upstream index page.
type StormIdentity struct {
	ID   string // basin code + sequence number, e.g. "AL012025"
	Name string // display name, e.g. "Tropical Storm TESTA"
}

// AdvisoryFix is one timestamped position-and-intensity record parsed from an
// ATCF-style fix deck. Immutable once parsed.
type AdvisoryFix struct {
	Time       time.Time  `json:"time"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	MaxWindKts int        `json:"max_wind_kts"`
	Kind       RecordKind `json:"kind"`
}

// StormFeature is the normalized per-storm output unit. A storm whose data
// could not be resolved still produces a feature with Quality set to
// QualityNoData, a (0,0) position, zero wind, and the collection's
// generation time as the advisory time.
type StormFeature struct {
	StormID      string
	StormName    string
	Lat          float64
	Lon          float64
	MaxWindKts   int
	AdvisoryTime time.Time
	Track        []AdvisoryFix // full deck in source order; may be empty
	SourceAgency string
	Quality      DataQuality
}

// SourceInfo identifies the upstream provider behind a feature collection.
type SourceInfo struct {
	Agency string // agency credited on each feature, e.g. "RAMMB CIRA"
	Label  string // collection-level source label, e.g. "RAMMB CIRA Live TC Feed"
}

// FeatureCollection is the top-level artifact of one aggregation run.
type FeatureCollection struct {
	Features    []StormFeature
	GeneratedAt time.Time
	SourceType  string
}
