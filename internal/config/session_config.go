package config

import "time"

type SessionConfig interface {
	GetExpiryBuffer() time.Duration
	GetDefaultTokenExpiry() time.Duration
	GetMonitorInterval() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetExpiryBuffer() time.Duration {
	return GetDuration("EXPIRY_BUFFER", 5*time.Minute)
}

// GetDefaultTokenExpiry applies when the server omits expires_in
func (Session) GetDefaultTokenExpiry() time.Duration {
	return 24 * time.Hour
}

func (Session) GetMonitorInterval() time.Duration {
	return GetDuration("MONITOR_INTERVAL", time.Minute)
}
