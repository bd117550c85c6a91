package rammb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclone-feed-service/internal/adapter/rammb"
)

func TestClient_FetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("document body"))
	}))
	defer srv.Close()

	client := rammb.NewClient(5*time.Second, discardLogger())
	body, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "document body", body)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := rammb.NewClient(5*time.Second, discardLogger())
	_, err := client.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var statusErr *rammb.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, srv.URL, statusErr.URL)
}

func TestClient_TimeoutIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := rammb.NewClient(20*time.Millisecond, discardLogger())
	_, err := client.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var statusErr *rammb.StatusError
	assert.False(t, errors.As(err, &statusErr), "timeouts are not status errors")
}

func TestClient_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := rammb.NewClient(5*time.Second, discardLogger())
	_, err := client.Fetch(ctx, srv.URL)
	assert.Error(t, err)
}
