package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTimezone is the game server's region; day boundaries and the
// war-hour filter are evaluated in this zone unless overridden.
const DefaultTimezone = "Asia/Seoul"

// Config holds application configuration
type Config struct {
	DatabasePath    string         // SQLite file backing the key-value store
	LogDropPath     string         // file the browser-side scraper drops war log batches into
	RosterDropDir   string         // directory the roster scraper drops per-guild snapshots into
	SpreadsheetID   string         // optional; enables the sheets exporter
	CredentialsFile string
	Location        *time.Location
	WarHour         int // hour-of-day filter for log rows; -1 disables
	StaleDays       int // roster age before it is flagged stale
	UpdateInterval  time.Duration
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		// Default based on environment
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	logDrop := os.Getenv("WAR_LOG_DROP")
	if logDrop == "" {
		return nil, fmt.Errorf("WAR_LOG_DROP environment variable is required")
	}

	rosterDir := os.Getenv("ROSTER_DROP_DIR")
	if rosterDir == "" {
		rosterDir = "rosters"
	}

	dbPath := os.Getenv("TRACKER_DB")
	if dbPath == "" {
		dbPath = "war_tracker.db"
	}

	tzName := os.Getenv("WAR_TIMEZONE")
	if tzName == "" {
		tzName = DefaultTimezone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid WAR_TIMEZONE %q: %w", tzName, err)
	}

	warHour, err := intEnv("WAR_HOUR", 21)
	if err != nil {
		return nil, err
	}
	if warHour < -1 || warHour > 23 {
		return nil, fmt.Errorf("WAR_HOUR must be -1..23, got %d", warHour)
	}

	staleDays, err := intEnv("ROSTER_STALE_DAYS", 7)
	if err != nil {
		return nil, err
	}

	credentialsFile := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	if credentialsFile == "" {
		credentialsFile = "credentials.json"
	}

	return &Config{
		DatabasePath:    dbPath,
		LogDropPath:     logDrop,
		RosterDropDir:   rosterDir,
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		CredentialsFile: credentialsFile,
		Location:        loc,
		WarHour:         warHour,
		StaleDays:       staleDays,
	}, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}

// Today returns the current calendar date (YYYY-MM-DD) in the configured zone.
func (c *Config) Today(now time.Time) string {
	return now.In(c.Location).Format("2006-01-02")
}

// DayOfWeek returns the weekday name stored alongside the daily snapshot.
func (c *Config) DayOfWeek(now time.Time) string {
	return now.In(c.Location).Weekday().String()
}
