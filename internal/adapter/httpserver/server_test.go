package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclone-feed-service/internal/adapter/httpserver"
	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
)

type mockProvider struct {
	fc       domain.FeatureCollection
	hasFC    bool
	readyErr error
}

func (m *mockProvider) Snapshot() (domain.FeatureCollection, bool) { return m.fc, m.hasFC }
func (m *mockProvider) CheckReadiness(_ context.Context) error     { return m.readyErr }

func newTestServer(p *mockProvider) *httpserver.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpserver.NewServer(":0", p, logger)
}

func get(srv *httpserver.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestCollectionReturns503BeforeFirstSnapshot(t *testing.T) {
	rec := get(newTestServer(&mockProvider{}), "/")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "no feature collection")
}

func TestCollectionReturnsGeoJSON(t *testing.T) {
	p := &mockProvider{
		hasFC: true,
		fc: domain.FeatureCollection{
			GeneratedAt: time.Date(2025, time.June, 15, 18, 0, 0, 0, time.UTC),
			SourceType:  "RAMMB CIRA Live TC Feed",
			Features: []domain.StormFeature{
				{
					StormID:      "AL012025",
					StormName:    "Tropical Storm TESTA",
					Lat:          15.0,
					Lon:          -70.0,
					MaxWindKts:   65,
					AdvisoryTime: time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC),
					SourceAgency: "RAMMB CIRA",
					Quality:      domain.QualityOK,
				},
			},
		},
	}

	rec := get(newTestServer(p), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc domain.GeoJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	assert.Equal(t, 1, doc.Metadata.TotalFeatures)
	assert.Equal(t, "RAMMB CIRA Live TC Feed", doc.Metadata.SourceType)
	require.Len(t, doc.Features, 1)
	assert.Equal(t, []float64{-70.0, 15.0}, doc.Features[0].Geometry.Coordinates)
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(&mockProvider{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(&mockProvider{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(&mockProvider{readyErr: errors.New("no run yet")}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no run yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(&mockProvider{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
