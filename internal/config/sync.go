package config

import "time"

// DefaultSwapiBaseURL is the public upstream the mirror is filled from.
const DefaultSwapiBaseURL = "https://swapi.dev/api"

// SyncConfig controls how the synchronizer reaches the upstream and
// whether it also runs on a schedule.
type SyncConfig struct {
	BaseURL  string        // upstream root, without a trailing slash
	Timeout  time.Duration // per page request timeout
	Schedule string        // cron spec; empty disables the scheduled sync
	LogDir   string        // directory the sync event consumer appends to
}

func LoadSyncConfig() SyncConfig {
	return SyncConfig{
		BaseURL:  envStr("SWAPI_BASE_URL", DefaultSwapiBaseURL),
		Timeout:  envDur("SWAPI_TIMEOUT", 30*time.Second),
		Schedule: envStr("SYNC_SCHEDULE", ""),
		LogDir:   envStr("SYNC_LOG_DIR", "logs"),
	}
}
