// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the
// process exits before serving traffic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the recommender service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string // optional; empty disables the recommendation cache

	RecommendationTTL   time.Duration // freshness window for a generated set
	RetentionDays       int           // recommendations older than this are swept
	SweepIntervalHours  int           // how often the retention cron fires
	StrictAvoidKeywords bool          // true: avoid keywords hard-exclude; false: score penalty
	MinScore            int           // drop scored candidates below this

	JSONLogs bool
	Debug    bool
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ttlHours := 24
	if s := os.Getenv("RECOMMENDATION_TTL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("RECOMMENDATION_TTL_HOURS must be a positive integer, got %q", s)
		}
		ttlHours = v
	}

	retentionDays := 30
	if s := os.Getenv("RETENTION_DAYS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("RETENTION_DAYS must be a positive integer, got %q", s)
		}
		retentionDays = v
	}

	sweepHours := 6
	if s := os.Getenv("SWEEP_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SWEEP_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		sweepHours = v
	}

	minScore := 0
	if s := os.Getenv("MIN_MATCH_SCORE"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 || v > 100 {
			return nil, fmt.Errorf("MIN_MATCH_SCORE must be an integer in [0,100], got %q", s)
		}
		minScore = v
	}

	strict, err := boolEnv("STRICT_AVOID_KEYWORDS", false)
	if err != nil {
		return nil, err
	}
	jsonLogs, err := boolEnv("JSON_LOGS", true)
	if err != nil {
		return nil, err
	}
	debug, err := boolEnv("DEBUG", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            os.Getenv("REDIS_URL"),
		RecommendationTTL:   time.Duration(ttlHours) * time.Hour,
		RetentionDays:       retentionDays,
		SweepIntervalHours:  sweepHours,
		StrictAvoidKeywords: strict,
		MinScore:            minScore,
		JSONLogs:            jsonLogs,
		Debug:               debug,
	}, nil
}

func boolEnv(name string, def bool) (bool, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", name, s)
	}
	return v, nil
}
