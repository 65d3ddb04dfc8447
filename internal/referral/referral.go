// Package referral finds a facility for a triage outcome: an online place
// search first, the stored facility directory as fallback.
package referral

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"carecircle-server/internal/models"
	"carecircle-server/internal/places"
	"carecircle-server/internal/repository"
	"carecircle-server/internal/triage"
)

// Mode tells the caller where the facility came from.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

const earthRadiusKm = 6371.0

// PlaceFinder is the online search.
type PlaceFinder interface {
	Nearby(ctx context.Context, lat, lng float64, t triage.FacilityType) ([]places.Place, error)
}

// Facility is the chosen destination.
type Facility struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distanceKm"`
}

// Result is the answer to a facility lookup. Facility is nil when neither
// source knows a facility of the wanted type.
type Result struct {
	Mode     Mode                  `json:"mode"`
	Type     triage.FacilityType   `json:"type"`
	Referral triage.ReferralAdvice `json:"referral"`
	Facility *Facility             `json:"facility"`
}

// Service resolves facilities.
type Service struct {
	online     PlaceFinder
	facilities repository.FacilityRepository
	logger     *zap.Logger
}

// NewService builds a Service. online may be nil to force offline lookups.
func NewService(online PlaceFinder, facilities repository.FacilityRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{online: online, facilities: facilities, logger: logger}
}

// Find picks a facility for tier near lat,lng.
func (s *Service) Find(ctx context.Context, lat, lng float64, tier triage.Tier) (*Result, error) {
	ft := triage.FacilityFor(tier)
	res := &Result{Type: ft, Referral: triage.Referral(tier)}

	if s.online != nil {
		found, err := s.online.Nearby(ctx, lat, lng, ft)
		switch {
		case err != nil:
			s.logger.Warn("online facility search failed, falling back to directory",
				zap.String("type", string(ft)), zap.Error(err))
		case len(found) > 0:
			p := found[0]
			res.Mode = ModeOnline
			res.Facility = &Facility{
				Name:       p.Name,
				Address:    p.Address,
				Latitude:   p.Latitude,
				Longitude:  p.Longitude,
				DistanceKm: Haversine(lat, lng, p.Latitude, p.Longitude),
			}
			return res, nil
		}
	}

	res.Mode = ModeOffline
	list, err := s.facilities.ListByType(ctx, ft)
	if err != nil {
		return nil, fmt.Errorf("offline facility lookup: %w", err)
	}
	if f, d, ok := Nearest(lat, lng, list); ok {
		res.Facility = &Facility{
			Name:       f.Name,
			Address:    f.Address,
			Latitude:   f.Latitude,
			Longitude:  f.Longitude,
			DistanceKm: d,
		}
	}
	return res, nil
}

// Nearest returns the closest facility and its distance in km.
func Nearest(lat, lng float64, list []models.HealthcareFacility) (models.HealthcareFacility, float64, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, f := range list {
		if d := Haversine(lat, lng, f.Latitude, f.Longitude); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return models.HealthcareFacility{}, 0, false
	}
	return list[best], bestDist, true
}

// Haversine is the great-circle distance in km.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
