package config

import (
	"testing"
	"time"
)

func TestRetryConfig(t *testing.T) {
	config := RetryConfig{
		MaxAttempts: 5,
		InitialWait: 2 * time.Second,
		MaxWait:     30 * time.Second,
		Multiplier:  3.0,
		Timeout:     60 * time.Second,
	}

	if config.MaxAttempts != 5 {
		t.Errorf("Expected MaxAttempts 5, got %d", config.MaxAttempts)
	}

	if config.InitialWait != 2*time.Second {
		t.Errorf("Expected InitialWait 2s, got %v", config.InitialWait)
	}

	if config.MaxWait != 30*time.Second {
		t.Errorf("Expected MaxWait 30s, got %v", config.MaxWait)
	}

	if config.Multiplier != 3.0 {
		t.Errorf("Expected Multiplier 3.0, got %f", config.Multiplier)
	}

	if config.Timeout != 60*time.Second {
		t.Errorf("Expected Timeout 60s, got %v", config.Timeout)
	}
}

func TestDefaultResilienceConfig(t *testing.T) {
	if DefaultResilienceConfig.LogSource.MaxAttempts != LogSourceMaxAttempts {
		t.Errorf("Expected LogSource MaxAttempts %d, got %d",
			LogSourceMaxAttempts, DefaultResilienceConfig.LogSource.MaxAttempts)
	}

	if DefaultResilienceConfig.RosterFetch.MaxAttempts != RosterFetchMaxAttempts {
		t.Errorf("Expected RosterFetch MaxAttempts %d, got %d",
			RosterFetchMaxAttempts, DefaultResilienceConfig.RosterFetch.MaxAttempts)
	}

	if DefaultResilienceConfig.SheetExport.MaxAttempts != SheetExportMaxAttempts {
		t.Errorf("Expected SheetExport MaxAttempts %d, got %d",
			SheetExportMaxAttempts, DefaultResilienceConfig.SheetExport.MaxAttempts)
	}

	if DefaultResilienceConfig.SheetExport.Timeout != 30*time.Second {
		t.Errorf("Expected SheetExport Timeout 30s, got %v",
			DefaultResilienceConfig.SheetExport.Timeout)
	}
}

func TestBackoffNeverExceedsMaxWait(t *testing.T) {
	for name, rc := range map[string]RetryConfig{
		"log source":   DefaultResilienceConfig.LogSource,
		"roster fetch": DefaultResilienceConfig.RosterFetch,
		"sheet export": DefaultResilienceConfig.SheetExport,
	} {
		wait := rc.InitialWait
		for attempt := 1; attempt < rc.MaxAttempts; attempt++ {
			wait = time.Duration(float64(wait) * rc.Multiplier)
			if wait > rc.MaxWait {
				wait = rc.MaxWait
			}
		}
		if wait > rc.MaxWait {
			t.Errorf("%s backoff exceeds MaxWait: %v > %v", name, wait, rc.MaxWait)
		}
	}
}
