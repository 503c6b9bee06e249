package config

import "time"

type JobConfig interface {
	GetPollInterval() time.Duration
	GetPollMaxAttempts() int
	GetJobsFile() string
}

type Jobs struct{}

var _ JobConfig = Jobs{}

func (Jobs) GetPollInterval() time.Duration {
	return GetDuration("POLL_INTERVAL", 2*time.Second)
}

// GetPollMaxAttempts defaults to 150 attempts, roughly five minutes at the default interval
func (Jobs) GetPollMaxAttempts() int {
	if n := GetInt("POLL_MAX_ATTEMPTS", 150); n > 0 {
		return n
	}
	return 150
}

// GetJobsFile names an optional TOML file that overrides the built-in job catalog
func (Jobs) GetJobsFile() string {
	return GetEnv("JOBS_FILE", "")
}
