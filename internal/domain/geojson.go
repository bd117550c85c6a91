package domain

import "time"

// GeoJSON document types. Field names and nesting follow the shape the
// original feed consumers already depend on: a FeatureCollection with a
// metadata block and Point features carrying storm properties.

type GeoJSON struct {
	Type     string           `json:"type"`
	Metadata GeoJSONMetadata  `json:"metadata"`
	Features []GeoJSONFeature `json:"features"`
}

type GeoJSONMetadata struct {
	UpdatedAt     string `json:"updated_at"`
	TotalFeatures int    `json:"total_features"`
	SourceType    string `json:"source_type"`
}

type GeoJSONFeature struct {
	Type       string            `json:"type"`
	Geometry   GeoJSONGeometry   `json:"geometry"`
	Properties GeoJSONProperties `json:"properties"`
}

type GeoJSONGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

type GeoJSONProperties struct {
	StormID      string       `json:"stormId"`
	StormName    string       `json:"stormName"`
	MaxWindKts   int          `json:"maxWindKts"`
	AdvisoryTime string       `json:"advisoryTime"`
	SourceAgency string       `json:"source_agency"`
	TrackHistory []TrackPoint `json:"trackHistory,omitempty"`
}

// TrackPoint is one historical fix in a feature's trackHistory.
type TrackPoint struct {
	Time        string    `json:"time"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
	MaxWindKts  int       `json:"maxWindKts"`
	Kind        string    `json:"kind"`
}

// GeoJSON converts the collection into its wire representation.
func (c FeatureCollection) GeoJSON() GeoJSON {
	features := make([]GeoJSONFeature, len(c.Features))
	for i, f := range c.Features {
		features[i] = f.GeoJSON()
	}
	return GeoJSON{
		Type: "FeatureCollection",
		Metadata: GeoJSONMetadata{
			UpdatedAt:     formatTime(c.GeneratedAt),
			TotalFeatures: len(c.Features),
			SourceType:    c.SourceType,
		},
		Features: features,
	}
}

// GeoJSON converts one storm feature into its wire representation. The
// geometry is always a Point; NO_DATA storms carry (0,0).
func (f StormFeature) GeoJSON() GeoJSONFeature {
	var track []TrackPoint
	if len(f.Track) > 0 {
		track = make([]TrackPoint, len(f.Track))
		for i, fix := range f.Track {
			track[i] = TrackPoint{
				Time:        formatTime(fix.Time),
				Coordinates: []float64{fix.Lon, fix.Lat},
				MaxWindKts:  fix.MaxWindKts,
				Kind:        string(fix.Kind),
			}
		}
	}
	return GeoJSONFeature{
		Type: "Feature",
		Geometry: GeoJSONGeometry{
			Type:        "Point",
			Coordinates: []float64{f.Lon, f.Lat},
		},
		Properties: GeoJSONProperties{
			StormID:      f.StormID,
			StormName:    f.StormName,
			MaxWindKts:   f.MaxWindKts,
			AdvisoryTime: formatTime(f.AdvisoryTime),
			SourceAgency: f.SourceAgency,
			TrackHistory: track,
		},
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
