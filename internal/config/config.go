package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/commhealth/internal/engine"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	CacheTTL              time.Duration
	GRPCPort              int
	GRPCReflectionEnabled bool
	SurveyPath            string
	Thresholds            engine.Thresholds
}

// LoadFromEnv loads configuration from environment variables.
// An empty REDIS_ADDR disables caching.
func LoadFromEnv() *Config {
	defaults := engine.DefaultThresholds()

	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/commhealth.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		CacheTTL:              getDuration("CACHE_TTL", 10*time.Minute),
		GRPCPort:              getInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getBool("GRPC_REFLECTION_ENABLED", false),
		SurveyPath:            getEnv("SURVEY_PATH", "./config/survey.yaml"),
		Thresholds: engine.Thresholds{
			DepartmentGap:    getInt("GAP_THRESHOLD", defaults.DepartmentGap),
			DepartmentGapMax: getInt("GAP_LIMIT", defaults.DepartmentGapMax),
			ProblemAreas:     getInt("PROBLEM_AREA_LIMIT", defaults.ProblemAreas),
			AlertSection:     getEnv("ALERT_SECTION", defaults.AlertSection),
			Alert:            getInt("ALERT_THRESHOLD", defaults.Alert),
			Perception:       getInt("PERCEPTION_THRESHOLD", defaults.Perception),
			RolesA:           getList("LEADERSHIP_ROLES", defaults.RolesA),
			RolesB:           getList("STAFF_ROLES", defaults.RolesB),
		},
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// getList splits a comma separated value, dropping blanks.
func getList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
