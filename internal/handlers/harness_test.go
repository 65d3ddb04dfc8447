package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carecircle-server/internal/cache"
	"carecircle-server/internal/config"
	"carecircle-server/internal/handlers"
	"carecircle-server/internal/models"
	"carecircle-server/internal/notify"
	"carecircle-server/internal/referral"
	"carecircle-server/internal/repository"
	"carecircle-server/internal/repository/memstore"
	"carecircle-server/internal/routes"
	"carecircle-server/internal/triage"
	"carecircle-server/internal/utils"
)

func init() { gin.SetMode(gin.TestMode) }

// clinicNow is a fixed wall clock for everything except token signing.
var clinicNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []notify.Alert
}

func (n *recordingNotifier) NotifyCaregivers(_ context.Context, a notify.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
	return nil
}

func (n *recordingNotifier) kinds() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Kind, 0, len(n.alerts))
	for _, a := range n.alerts {
		out = append(out, a.Kind)
	}
	return out
}

type harness struct {
	t        *testing.T
	router   *gin.Engine
	store    *repository.Store
	cfg      *config.Config
	env      *handlers.Env
	notifier *recordingNotifier
	reg      *prometheus.Registry
	redis    *miniredis.Miniredis
}

type option func(*handlers.Env)

func withClock(now func() time.Time) option {
	return func(e *handlers.Env) { e.Now = now }
}

func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := memstore.New().Repositories()
	_, err := store.Facilities.Seed(context.Background(), models.DefaultFacilities())
	require.NoError(t, err)

	cfg := &config.Config{
		Environment:               "development",
		JWTSecret:                 "test-access",
		JWTRefreshSecret:          "test-refresh",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 24,
		Triage:                    triage.DefaultThresholds(),
	}
	reg := prometheus.NewRegistry()
	n := &recordingNotifier{}

	env := &handlers.Env{
		Store:      store,
		Cfg:        cfg,
		Classifier: triage.NewClassifier(cfg.Triage).WithClock(func() time.Time { return clinicNow }),
		Metrics:    triage.NewMetrics(reg),
		Notifier:   n,
		Dashboard:  cache.NewDashboardCache(cache.NewRedisKVStore(rdb), time.Minute, zap.NewNop()),
		Referral:   referral.NewService(nil, store.Facilities, zap.NewNop()),
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return clinicNow },
	}
	for _, o := range opts {
		o(env)
	}
	env.Defaults()

	r := gin.New()
	routes.SetupRoutes(r, env, nil, reg)

	return &harness{t: t, router: r, store: store, cfg: cfg, env: env, notifier: n, reg: reg, redis: mr}
}

// user stores an account and returns it with a signed access token.
func (h *harness) user(email string, role models.Role) (*models.User, string) {
	h.t.Helper()
	u := &models.User{Email: email, Name: email, Role: role}
	require.NoError(h.t, u.SetPassword("password123"))
	require.NoError(h.t, h.store.Users.Create(context.Background(), u))
	pair, err := utils.GenerateTokens(u, h.cfg, time.Now())
	require.NoError(h.t, err)
	return u, pair.AccessToken
}

type response struct {
	Code   int
	Body   []byte
	Header http.Header
	Env    struct {
		Status  int             `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
}

func (r response) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Env.Data, dst), string(r.Body))
}

func (h *harness) do(method, path, token string, body any) response {
	h.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	res := response{Code: w.Code, Body: w.Body.Bytes(), Header: w.Header()}
	_ = json.Unmarshal(res.Body, &res.Env)
	return res
}

// patient creates a patient owned by token's user.
func (h *harness) patient(token string) models.Patient {
	h.t.Helper()
	res := h.do(http.MethodPost, "/api/v1/patients", token, map[string]any{
		"name": "Asha Rao", "age": 67, "gender": "female", "condition": "post-op", "caregiverPhone": "+911234567890",
	})
	require.Equal(h.t, http.StatusCreated, res.Code, string(res.Body))
	var p models.Patient
	res.decode(h.t, &p)
	return p
}
