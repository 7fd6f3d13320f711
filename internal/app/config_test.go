package app

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresLogDrop(t *testing.T) {
	t.Setenv("WAR_LOG_DROP", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected an error without WAR_LOG_DROP")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("WAR_LOG_DROP", "drop/war_logs.json")
	t.Setenv("ROSTER_DROP_DIR", "")
	t.Setenv("TRACKER_DB", "")
	t.Setenv("WAR_TIMEZONE", "")
	t.Setenv("WAR_HOUR", "")
	t.Setenv("ROSTER_STALE_DAYS", "")
	t.Setenv("SPREADSHEET_ID", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.LogDropPath != "drop/war_logs.json" {
		t.Errorf("Unexpected log drop path: %q", config.LogDropPath)
	}
	if config.RosterDropDir != "rosters" {
		t.Errorf("Unexpected roster drop dir: %q", config.RosterDropDir)
	}
	if config.DatabasePath != "war_tracker.db" {
		t.Errorf("Unexpected database path: %q", config.DatabasePath)
	}
	if config.Location.String() != DefaultTimezone {
		t.Errorf("Unexpected timezone: %v", config.Location)
	}
	if config.WarHour != 21 {
		t.Errorf("Unexpected war hour: %d", config.WarHour)
	}
	if config.StaleDays != 7 {
		t.Errorf("Unexpected stale days: %d", config.StaleDays)
	}
	if config.SpreadsheetID != "" {
		t.Errorf("Expected sheets export disabled by default, got %q", config.SpreadsheetID)
	}
}

func TestLoadConfigWarHourValidation(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"-1", -1, false},
		{"0", 0, false},
		{"23", 23, false},
		{"24", 0, true},
		{"-2", 0, true},
		{"nine", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("WAR_LOG_DROP", "drop/war_logs.json")
			t.Setenv("WAR_HOUR", tt.value)

			config, err := LoadConfig()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected WAR_HOUR=%s rejected", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if config.WarHour != tt.want {
				t.Errorf("WarHour = %d, want %d", config.WarHour, tt.want)
			}
		})
	}
}

func TestLoadConfigRejectsBadTimezone(t *testing.T) {
	t.Setenv("WAR_LOG_DROP", "drop/war_logs.json")
	t.Setenv("WAR_TIMEZONE", "Mars/Olympus")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected an invalid timezone rejected")
	}
}

func TestConfigDayScoping(t *testing.T) {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	config := &Config{Location: loc}

	// 2025-06-02 23:30 KST is still June 2nd in Seoul but June 2nd 14:30 UTC.
	now := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	if got := config.Today(now); got != "2025-06-02" {
		t.Errorf("Today() = %q", got)
	}

	// 2025-06-02 16:30 UTC is already June 3rd, 01:30 in Seoul.
	late := time.Date(2025, 6, 2, 16, 30, 0, 0, time.UTC)
	if got := config.Today(late); got != "2025-06-03" {
		t.Errorf("Today() across midnight = %q", got)
	}
	if got := config.DayOfWeek(late); got != "Tuesday" {
		t.Errorf("DayOfWeek() = %q", got)
	}
}
