package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"carecircle-server/internal/triage"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	Database                  DatabaseConfig
	Log                       LogConfig
	Redis                     RedisConfig
	MQTT                      MQTTConfig
	Places                    PlacesConfig
	Triage                    triage.Thresholds
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// RedisConfig holds the dashboard cache connection. An empty Addr disables caching.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DashboardTTL time.Duration
}

// MQTTConfig holds the caregiver-alert broker. An empty Broker disables alerts.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	// PublishTimeout bounds how long an alert waits for the broker.
	PublishTimeout time.Duration
}

// PlacesConfig holds the online facility search settings.
type PlacesConfig struct {
	BaseURL      string
	APIKey       string
	RadiusMeters int
	Timeout      time.Duration
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "carecircle"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = getEnv("DB_DSN", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name))

	var errs []error

	jwtExpMinutes, err := getEnvInt("JWT_EXPIRATION_MINUTES", 15)
	errs = append(errs, err)
	jwtRefreshExpHours, err := getEnvInt("JWT_REFRESH_EXPIRATION_HOURS", 168) // 7 days
	errs = append(errs, err)

	redisDB, err := getEnvInt("REDIS_DB", 0)
	errs = append(errs, err)
	dashboardTTL, err := getEnvDuration("REDIS_DASHBOARD_TTL", 2*time.Minute)
	errs = append(errs, err)

	radius, err := getEnvInt("PLACES_RADIUS_METERS", 5000)
	errs = append(errs, err)
	placesTimeout, err := getEnvDuration("PLACES_TIMEOUT", 5*time.Second)
	errs = append(errs, err)

	mqttTimeout, err := getEnvDuration("MQTT_PUBLISH_TIMEOUT", 5*time.Second)
	errs = append(errs, err)

	thresholds, err := overlayThresholds()
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                      getEnv("PORT", "5050"),
		Origin:                    getEnv("ORIGIN", "http://localhost:5173"),
		Environment:               getEnv("APP_ENV", "development"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		Database:                  dbConfig,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", ""),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           redisDB,
			DashboardTTL: dashboardTTL,
		},
		MQTT: MQTTConfig{
			Broker:         getEnv("MQTT_BROKER", ""),
			ClientID:       getEnv("MQTT_CLIENT_ID", "carecircle-server"),
			Username:       getEnv("MQTT_USERNAME", ""),
			Password:       getEnv("MQTT_PASSWORD", ""),
			TopicPrefix:    getEnv("MQTT_TOPIC_PREFIX", "carecircle"),
			PublishTimeout: mqttTimeout,
		},
		Places: PlacesConfig{
			BaseURL:      getEnv("PLACES_BASE_URL", "https://maps.googleapis.com"),
			APIKey:       getEnv("GOOGLE_MAPS_API_KEY", ""),
			RadiusMeters: radius,
			Timeout:      placesTimeout,
		},
		Triage: thresholds,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks all configuration fields for correctness.
func (c *Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %q (must be 1..65535)", c.Port))
	}
	if c.JWTExpirationMinutes <= 0 {
		errs = append(errs, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES %d", c.JWTExpirationMinutes))
	}
	if c.JWTRefreshExpirationHours <= 0 {
		errs = append(errs, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS %d", c.JWTRefreshExpirationHours))
	}
	if c.Environment != "development" && (c.JWTSecret == "default_jwt_secret" || c.JWTRefreshSecret == "default_refresh_secret") {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set outside development"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT %q (json or console)", c.Log.Format))
	}
	if c.Places.RadiusMeters <= 0 || c.Places.RadiusMeters > 50000 {
		errs = append(errs, fmt.Errorf("invalid PLACES_RADIUS_METERS %d (must be 1..50000)", c.Places.RadiusMeters))
	}
	if c.MQTT.PublishTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid MQTT_PUBLISH_TIMEOUT %s", c.MQTT.PublishTimeout))
	}
	if err := c.Triage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("triage thresholds: %w", err))
	}

	return errors.Join(errs...)
}

// LoadThresholds reads only the TRIAGE_* overrides and validates the
// resulting table. The rest of the server configuration is not consulted.
func LoadThresholds() (triage.Thresholds, error) {
	th, err := overlayThresholds()
	if err != nil {
		return triage.Thresholds{}, err
	}
	if err := th.Validate(); err != nil {
		return triage.Thresholds{}, fmt.Errorf("triage thresholds: %w", err)
	}
	return th, nil
}

// overlayThresholds overlays TRIAGE_* variables on the clinical defaults.
func overlayThresholds() (triage.Thresholds, error) {
	th := triage.DefaultThresholds()
	var errs []error

	floats := []struct {
		key string
		dst *float64
	}{
		{"TRIAGE_HIGH_FEVER_F", &th.HighFeverF},
		{"TRIAGE_PERSISTENT_FEVER_F", &th.PersistentFeverF},
		{"TRIAGE_ELEVATED_TEMP_F", &th.ElevatedTempF},
		{"TRIAGE_FEVER_WITH_PAIN_F", &th.FeverWithPainF},
	}
	for _, f := range floats {
		v, err := getEnvFloat(f.key, *f.dst)
		errs = append(errs, err)
		*f.dst = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"TRIAGE_SEVERE_PAIN", &th.SeverePain},
		{"TRIAGE_MODERATE_PAIN", &th.ModeratePain},
		{"TRIAGE_PAIN_WITH_FEVER", &th.PainWithFeverMin},
		{"TRIAGE_HIGH_SYSTOLIC", &th.HighSystolic},
		{"TRIAGE_HIGH_DIASTOLIC", &th.HighDiastolic},
		{"TRIAGE_ELEVATED_SYSTOLIC", &th.ElevatedSystolic},
		{"TRIAGE_ELEVATED_DIASTOLIC", &th.ElevatedDiastolic},
	}
	for _, i := range ints {
		v, err := getEnvInt(i.key, *i.dst)
		errs = append(errs, err)
		*i.dst = v
	}

	return th, errors.Join(errs...)
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
