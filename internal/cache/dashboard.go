package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const dashboardKeyPrefix = "carecircle:dashboard:"

// DashboardCache stores rendered dashboards per patient. A nil
// *DashboardCache is valid and caches nothing.
type DashboardCache struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

func NewDashboardCache(kv KVStore, ttl time.Duration, logger *zap.Logger) *DashboardCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardCache{kv: kv, ttl: ttl, logger: logger}
}

func DashboardKey(patientID string) string {
	return dashboardKeyPrefix + patientID
}

// Get decodes the cached dashboard into dst. It reports false on a miss.
func (c *DashboardCache) Get(ctx context.Context, patientID string, dst any) (bool, error) {
	if c == nil {
		return false, nil
	}
	raw, err := c.kv.Get(ctx, DashboardKey(patientID))
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dashboard cache get: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		// corrupt entry, drop it
		c.logger.Warn("discarding undecodable dashboard cache entry",
			zap.String("patient_id", patientID), zap.Error(err))
		_ = c.kv.Del(ctx, DashboardKey(patientID))
		return false, nil
	}
	return true, nil
}

func (c *DashboardCache) Put(ctx context.Context, patientID string, v any) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("dashboard cache encode: %w", err)
	}
	if err := c.kv.Set(ctx, DashboardKey(patientID), string(b), c.ttl); err != nil {
		return fmt.Errorf("dashboard cache set: %w", err)
	}
	return nil
}

// Invalidate drops the patient's dashboard. Failures are logged, not
// returned, so writes never fail because the cache is down.
func (c *DashboardCache) Invalidate(ctx context.Context, patientID string) {
	if c == nil {
		return
	}
	if err := c.kv.Del(ctx, DashboardKey(patientID)); err != nil {
		c.logger.Warn("dashboard cache invalidate failed",
			zap.String("patient_id", patientID), zap.Error(err))
	}
}
