package processing

import (
	"context"
	"errors"

	"lanis_war_tracker/internal/app"
)

// ErrSourceUnavailable is returned by a LogSource that cannot locate the war
// log at all (as opposed to finding it empty). The collection cycle reports
// it in the cycle result instead of failing.
var ErrSourceUnavailable = errors.New("war log source unavailable")

// ErrGuildNotFound is returned by a GuildSource when the game confirms the
// guild does not exist. The caller must purge the roster entry.
var ErrGuildNotFound = errors.New("guild not found")

// ErrCycleInFlight is returned when a collection cycle is requested while a
// previous one has not finished.
var ErrCycleInFlight = errors.New("collection cycle already in flight")

// LogSource produces raw event batches scraped from the host page.
// Batches may be empty, overlapping with earlier batches, or out of order.
type LogSource interface {
	ScrapeVisibleRows(ctx context.Context) ([]app.EventRecord, error)
}

// GuildSource produces roster snapshots for a named guild.
type GuildSource interface {
	FetchRoster(ctx context.Context, guildName string) (*app.GuildRoster, error)
}

// KVStore persists the two logical records: the date-scoped daily log
// snapshot and the roster store. Implementations treat malformed stored
// state as absent, never as an error.
type KVStore interface {
	LoadSnapshot() (*app.DailySnapshot, error)
	SaveSnapshot(snapshot *app.DailySnapshot) error
	LoadRosters() (app.RosterStore, error)
	SaveRosters(rosters app.RosterStore) error
	Reset() error
}

// Presenter consumes the derived dashboard state published at the end of
// each collection cycle. Implementations must not retain the view's maps
// beyond the call if they mutate them.
type Presenter interface {
	Publish(view *DashboardView)
}

// DashboardView is the full derived-state surface handed to presenters.
type DashboardView struct {
	Date          string
	Counters      map[string]map[string]*app.PlayerCounters
	Ownership     map[string]*app.VillageOwnership
	Battles       map[string]*app.VillageBattle
	Statistics    *app.WarStatistics
	MissingGuilds []string
	StaleGuilds   []string
	TotalEvents   int
}
