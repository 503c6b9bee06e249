package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar     = "APP_NAME"
	baseURLVar     = "BASE_URL"
	logLevelVar    = "LOG_LEVEL"
	httpTimeoutVar = "HTTP_TIMEOUT"
	rateLimitVar   = "RATE_LIMIT"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Leads Desk")
}

// GetBaseURL returns the base URL of the leads backend (e.g., "http://localhost:8000")
func (EnvVars) GetBaseURL() string {
	return strings.TrimRight(GetEnv(baseURLVar, "http://localhost:8000"), "/")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetHTTPTimeout of zero leaves the transport default in place
func (EnvVars) GetHTTPTimeout() time.Duration {
	return GetDuration(httpTimeoutVar, 0)
}

// GetRateLimit is requests per second, zero disables limiting
func (EnvVars) GetRateLimit() float64 {
	v, err := strconv.ParseFloat(GetEnv(rateLimitVar, "0"), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(GetEnv(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func GetInt(envVar string, defaultValue int) int {
	i, err := strconv.Atoi(GetEnv(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return i
}
