package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"carecircle-server/internal/cache"
	"carecircle-server/internal/config"
	"carecircle-server/internal/handlers"
	"carecircle-server/internal/logger"
	"carecircle-server/internal/middleware"
	"carecircle-server/internal/models"
	"carecircle-server/internal/notify"
	"carecircle-server/internal/places"
	"carecircle-server/internal/referral"
	"carecircle-server/internal/repository"
	"carecircle-server/internal/routes"
	"carecircle-server/internal/triage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format, "carecircle-server")
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	store := repository.NewGormStore(db)
	if n, err := store.Facilities.Seed(ctx, models.DefaultFacilities()); err != nil {
		lg.Warn("facility seed failed", zap.Error(err))
	} else if n > 0 {
		lg.Info("facilities seeded", zap.Int("count", n))
	}

	var dashboard *cache.DashboardCache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		dashboard = cache.NewDashboardCache(cache.NewRedisKVStore(rdb), cfg.Redis.DashboardTTL, lg)
		lg.Info("dashboard cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.MQTT.Broker != "" {
		mq, err := notify.Dial(cfg.MQTT)
		if err != nil {
			return err
		}
		defer mq.Close()
		notifier = notify.NewMQTTNotifier(mq, cfg.MQTT.TopicPrefix, lg)
		lg.Info("caregiver alerts enabled", zap.String("broker", cfg.MQTT.Broker))
	}

	var finder referral.PlaceFinder
	if pc := places.NewClient(cfg.Places, lg); pc.Enabled() {
		finder = pc
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	env := (&handlers.Env{
		Store:      store,
		Cfg:        cfg,
		Classifier: triage.NewClassifier(cfg.Triage),
		Metrics:    triage.NewMetrics(reg),
		Notifier:   notifier,
		Dashboard:  dashboard,
		Referral:   referral.NewService(finder, store.Facilities, lg),
		Logger:     lg,
	}).Defaults()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(lg), middleware.RequestLogger(lg), middleware.NewHTTPMetrics(reg).Handler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, env, sqlDB, reg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
