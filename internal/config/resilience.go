package config

import "time"

// Retry configuration constants
const (
	// War log source retry configuration
	LogSourceMaxAttempts       = 3
	LogSourceInitialWait       = 500 * time.Millisecond
	LogSourceMaxWait           = 5 * time.Second
	LogSourceBackoffMultiplier = 2.0
	LogSourceTimeout           = 15 * time.Second

	// Roster fetch retry configuration; roster pages render slowly, so the
	// per-attempt timeout is generous.
	RosterFetchMaxAttempts       = 2
	RosterFetchInitialWait       = 1 * time.Second
	RosterFetchMaxWait           = 10 * time.Second
	RosterFetchBackoffMultiplier = 2.0
	RosterFetchTimeout           = 15 * time.Second

	// Sheet export retry configuration
	SheetExportMaxAttempts       = 3
	SheetExportInitialWait       = 1 * time.Second
	SheetExportMaxWait           = 10 * time.Second
	SheetExportBackoffMultiplier = 2.0
	SheetExportTimeout           = 30 * time.Second
)

// RetryConfig defines retry behavior for operations
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	Timeout     time.Duration
}

// ResilienceConfig contains all retry configurations
type ResilienceConfig struct {
	LogSource   RetryConfig
	RosterFetch RetryConfig
	SheetExport RetryConfig
}

// DefaultResilienceConfig provides sensible defaults
var DefaultResilienceConfig = ResilienceConfig{
	LogSource: RetryConfig{
		MaxAttempts: LogSourceMaxAttempts,
		InitialWait: LogSourceInitialWait,
		MaxWait:     LogSourceMaxWait,
		Multiplier:  LogSourceBackoffMultiplier,
		Timeout:     LogSourceTimeout,
	},
	RosterFetch: RetryConfig{
		MaxAttempts: RosterFetchMaxAttempts,
		InitialWait: RosterFetchInitialWait,
		MaxWait:     RosterFetchMaxWait,
		Multiplier:  RosterFetchBackoffMultiplier,
		Timeout:     RosterFetchTimeout,
	},
	SheetExport: RetryConfig{
		MaxAttempts: SheetExportMaxAttempts,
		InitialWait: SheetExportInitialWait,
		MaxWait:     SheetExportMaxWait,
		Multiplier:  SheetExportBackoffMultiplier,
		Timeout:     SheetExportTimeout,
	},
}
