package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carecircle-server/internal/config"
	"carecircle-server/internal/triage"
)

const okBody = `{
  "status": "OK",
  "results": [
    {"name": "JJ Hospital", "vicinity": "Byculla, Mumbai",
     "geometry": {"location": {"lat": 18.975, "lng": 72.829}}}
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc, key string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.PlacesConfig{
		BaseURL:      srv.URL,
		APIKey:       key,
		RadiusMeters: 5000,
		Timeout:      2 * time.Second,
	}, zap.NewNop())
}

func TestNearby_ParsesResults(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, nearbyPath, r.URL.Path)
		gotQuery = map[string]string{
			"location": r.URL.Query().Get("location"),
			"radius":   r.URL.Query().Get("radius"),
			"type":     r.URL.Query().Get("type"),
			"key":      r.URL.Query().Get("key"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}, "k1")

	got, err := c.Nearby(context.Background(), 19.07, 72.87, triage.FacilityHospital)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "JJ Hospital", got[0].Name)
	assert.Equal(t, "Byculla, Mumbai", got[0].Address)
	assert.InDelta(t, 18.975, got[0].Latitude, 1e-9)

	assert.Equal(t, "19.070000,72.870000", gotQuery["location"])
	assert.Equal(t, "5000", gotQuery["radius"])
	assert.Equal(t, "hospital", gotQuery["type"])
	assert.Equal(t, "k1", gotQuery["key"])
}

func TestNearby_ZeroResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}, "k1")

	got, err := c.Nearby(context.Background(), 1, 2, triage.FacilityClinic)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNearby_RequestDenied(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key","results":[]}`))
	}, "k1")

	_, err := c.Nearby(context.Background(), 1, 2, triage.FacilityClinic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestNearby_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}, "k1")

	got, err := c.Nearby(context.Background(), 1, 2, triage.FacilityHospital)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNearby_Disabled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, "")

	assert.False(t, c.Enabled())
	_, err := c.Nearby(context.Background(), 1, 2, triage.FacilityHospital)
	assert.ErrorIs(t, err, ErrDisabled)
}
