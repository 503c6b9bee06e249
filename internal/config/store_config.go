package config

import (
	"os"
	"path/filepath"
)

type StoreKind string

const (
	StoreKindFile   StoreKind = "file"
	StoreKindSQLite StoreKind = "sqlite"
	StoreKindRedis  StoreKind = "redis"
	StoreKindMemory StoreKind = "memory"
)

type StoreConfig interface {
	GetStoreKind() StoreKind
	GetSessionFile() string
	GetSessionPassphrase() string
	GetSQLitePath() string
	GetRedisAddr() string
	GetRedisPrefix() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreKind() StoreKind {
	switch k := StoreKind(GetEnv("SESSION_STORE", string(StoreKindFile))); k {
	case StoreKindFile, StoreKindSQLite, StoreKindRedis, StoreKindMemory:
		return k
	default:
		return StoreKindFile
	}
}

func (Store) GetSessionFile() string {
	return GetEnv("SESSION_FILE", filepath.Join(dataDir(), "session.json"))
}

func (Store) GetSessionPassphrase() string {
	return GetEnv("SESSION_PASSPHRASE", "")
}

func (Store) GetSQLitePath() string {
	return GetEnv("SQLITE_PATH", filepath.Join(dataDir(), "session.db"))
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "leadsctl:")
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".leadsctl")
}
