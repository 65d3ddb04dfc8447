package referral

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecircle-server/internal/models"
	"carecircle-server/internal/places"
	"carecircle-server/internal/repository/memstore"
	"carecircle-server/internal/triage"
)

type fakeFinder struct {
	places []places.Place
	err    error
	asked  []triage.FacilityType
}

func (f *fakeFinder) Nearby(_ context.Context, _, _ float64, t triage.FacilityType) ([]places.Place, error) {
	f.asked = append(f.asked, t)
	return f.places, f.err
}

// Andheri station
const lat, lng = 19.1197, 72.8464

func seeded(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	_, err := s.Repositories().Facilities.Seed(context.Background(), models.DefaultFacilities())
	require.NoError(t, err)
	return s
}

func TestFind_OnlineFirst(t *testing.T) {
	t.Parallel()

	finder := &fakeFinder{places: []places.Place{{Name: "Cooper Hospital", Latitude: 19.107, Longitude: 72.837}}}
	svc := NewService(finder, seeded(t).Repositories().Facilities, nil)

	res, err := svc.Find(context.Background(), lat, lng, triage.Severe)
	require.NoError(t, err)
	assert.Equal(t, ModeOnline, res.Mode)
	assert.Equal(t, triage.FacilityHospital, res.Type)
	assert.Equal(t, triage.ReferralEmergency, res.Referral.Level)
	require.NotNil(t, res.Facility)
	assert.Equal(t, "Cooper Hospital", res.Facility.Name)
	assert.Equal(t, []triage.FacilityType{triage.FacilityHospital}, finder.asked)
}

func TestFind_FallsBackOnError(t *testing.T) {
	t.Parallel()

	finder := &fakeFinder{err: errors.New("timeout")}
	svc := NewService(finder, seeded(t).Repositories().Facilities, nil)

	res, err := svc.Find(context.Background(), lat, lng, triage.Severe)
	require.NoError(t, err)
	assert.Equal(t, ModeOffline, res.Mode)
	require.NotNil(t, res.Facility)
	assert.Equal(t, "JJ Hospital", res.Facility.Name)
	assert.Greater(t, res.Facility.DistanceKm, 10.0)
}

func TestFind_FallsBackOnEmpty(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeFinder{}, seeded(t).Repositories().Facilities, nil)

	res, err := svc.Find(context.Background(), lat, lng, triage.Moderate)
	require.NoError(t, err)
	assert.Equal(t, ModeOffline, res.Mode)
	assert.Equal(t, triage.FacilityClinic, res.Type)
	require.NotNil(t, res.Facility)
	assert.Equal(t, "Andheri Community Clinic", res.Facility.Name)
	assert.InDelta(t, 0, res.Facility.DistanceKm, 0.001)
}

func TestFind_NoFacilityKnown(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, memstore.New().Repositories().Facilities, nil)

	res, err := svc.Find(context.Background(), lat, lng, triage.Mild)
	require.NoError(t, err)
	assert.Equal(t, ModeOffline, res.Mode)
	assert.Nil(t, res.Facility)
	assert.Equal(t, triage.ReferralHome, res.Referral.Level)
}

func TestHaversine(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0, Haversine(1, 1, 1, 1), 1e-9)
	// Mumbai to Pune is roughly 120 km
	assert.InDelta(t, 120, Haversine(19.076, 72.8777, 18.5204, 73.8567), 5)
}

func TestNearest(t *testing.T) {
	t.Parallel()

	_, _, ok := Nearest(0, 0, nil)
	assert.False(t, ok)

	f, d, ok := Nearest(18.97, 72.83, models.DefaultFacilities())
	require.True(t, ok)
	assert.Equal(t, "JJ Hospital", f.Name)
	assert.Less(t, d, 1.0)
}
