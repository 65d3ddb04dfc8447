// Package places searches Google Places for nearby healthcare facilities.
package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"carecircle-server/internal/config"
	"carecircle-server/internal/triage"
)

const nearbyPath = "/maps/api/place/nearbysearch/json"

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("places: no API key configured")

// Place is one search hit.
type Place struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type nearbyResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Client calls the Places nearby search endpoint.
type Client struct {
	httpClient *resty.Client
	apiKey     string
	radius     int
	logger     *zap.Logger
}

func NewClient(cfg config.PlacesConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
		radius:     cfg.RadiusMeters,
		logger:     logger,
	}
}

// Enabled reports whether searches can be made.
func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

// Nearby returns facilities of type t around lat,lng, closest ranked first
// by the upstream service. An empty slice means the search found nothing.
func (c *Client) Nearby(ctx context.Context, lat, lng float64, t triage.FacilityType) ([]Place, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	var body nearbyResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"location": fmt.Sprintf("%f,%f", lat, lng),
			"radius":   fmt.Sprintf("%d", c.radius),
			"type":     placeType(t),
			"key":      c.apiKey,
		}).
		SetResult(&body).
		Get(nearbyPath)
	if err != nil {
		return nil, fmt.Errorf("places: nearby search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("places: nearby search returned %d", resp.StatusCode())
	}

	switch body.Status {
	case "OK", "ZERO_RESULTS":
	default:
		c.logger.Warn("places search rejected",
			zap.String("status", body.Status),
			zap.String("error_message", body.ErrorMessage),
		)
		return nil, fmt.Errorf("places: status %s: %s", body.Status, body.ErrorMessage)
	}

	out := make([]Place, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, Place{
			Name:      r.Name,
			Address:   r.Vicinity,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		})
	}
	return out, nil
}

// placeType maps a facility type onto the Places type vocabulary.
func placeType(t triage.FacilityType) string {
	switch t {
	case triage.FacilityHospital:
		return "hospital"
	case triage.FacilityPHC:
		return "health"
	default:
		return "doctor"
	}
}
