package config

import "time"

type Config interface {
	EnvConfig
	SessionConfig
	StoreConfig
	JobConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
	GetLogLevel() string
	GetHTTPTimeout() time.Duration
	GetRateLimit() float64
}

type mainConfig struct {
	EnvVars
	Session
	Store
	Jobs
}

func New() Config {
	return mainConfig{}
}
