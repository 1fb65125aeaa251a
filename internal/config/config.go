package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/clustering"
	"github.com/neko-san1432/citizenlink-insights-go/internal/scheduler"
)

// Config is the application configuration
type Config struct {
	Port           string
	DBPath         string
	JWTSecret      string
	BoundariesPath string
	SentryDSN      string
	Environment    string
	Version        string

	RateLimitRPS   float64
	RateLimitBurst int

	Scheduler      scheduler.Config
	Prioritization clustering.Params
}

// Load reads configuration from the environment. Malformed values fall back
// to their defaults with a warning.
func Load() *Config {
	sched := scheduler.DefaultConfig()
	sched.Enabled = getBool("CLUSTERING_ENABLED", sched.Enabled)
	sched.Interval = time.Duration(getInt("CLUSTERING_INTERVAL_MINUTES", int(sched.Interval/time.Minute))) * time.Minute
	sched.RadiusKm = getFloat("CLUSTERING_RADIUS_KM", sched.RadiusKm)
	sched.MinComplaintsPerCluster = getInt("CLUSTERING_MIN_POINTS", sched.MinComplaintsPerCluster)
	sched.OnlyIfNewComplaints = getBool("CLUSTERING_ONLY_IF_NEW", sched.OnlyIfNewComplaints)
	sched.StartupDelay = time.Duration(getInt("CLUSTERING_STARTUP_DELAY_SECONDS", int(sched.StartupDelay/time.Second))) * time.Second

	prio := clustering.DefaultParams()
	prio.RadiusKm = getFloat("PRIORITIZATION_RADIUS_KM", prio.RadiusKm)
	prio.MinPoints = getInt("PRIORITIZATION_MIN_POINTS", prio.MinPoints)

	return &Config{
		Port:           getString("PORT", ":8080"),
		DBPath:         getString("DB_PATH", "./data/citizenlink.db"),
		JWTSecret:      getString("JWT_SECRET", "your-secret-key-change-in-production"),
		BoundariesPath: getString("BOUNDARIES_PATH", "./data/brgy_boundaries_location.json"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		Environment:    getString("APP_ENV", "development"),
		Version:        getString("APP_VERSION", "dev"),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 20),
		Scheduler:      sched,
		Prioritization: prio,
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[Config] Warning: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[Config] Warning: invalid %s=%q, using %g", key, v, def)
		return def
	}
	return f
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[Config] Warning: invalid %s=%q, using %t", key, v, def)
		return def
	}
	return b
}
