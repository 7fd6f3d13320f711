package processing

import (
	"sort"
	"time"

	"lanis_war_tracker/internal/app"
)

// Session is the explicit per-day working state: the canonical log, the
// roster store, and every derived view. It is created at session start,
// replaced at day rollover, and torn down by a full reset; nothing lives in
// package-level variables.
type Session struct {
	Date    string
	Log     []app.EventRecord // canonical, newest-first
	Rosters app.RosterStore

	suppressed       map[string]bool
	counters         map[string]map[string]*app.PlayerCounters
	ownership        map[string]*app.VillageOwnership
	captures         []app.CaptureEvent
	battles          map[string]*app.VillageBattle
	stats            *app.WarStatistics
	guildTimelines   map[string][]app.TimelineEntry
	villageTimelines map[string][]app.TimelineEntry
}

// NewSession builds a session around an already-validated day log and the
// roster store, and computes all derived state.
func NewSession(date string, logs []app.EventRecord, rosters app.RosterStore) *Session {
	if rosters == nil {
		rosters = make(app.RosterStore)
	}
	s := &Session{Date: date, Log: logs, Rosters: rosters}
	s.Recompute()
	return s
}

// Recompute rebuilds every derived view from the current log and rosters.
// The three replay passes are independent read-only scans over the same
// snapshot, so their relative order does not matter.
func (s *Session) Recompute() {
	s.suppressed = SuppressCombos(s.Log)
	s.counters = ReplayCounters(s.Log, s.suppressed, s.Rosters)
	s.ownership, s.captures = ReplayOwnership(s.Log)
	s.battles = ReplayBattles(s.Log)
	s.stats = Aggregate(s.Log)
	s.stats.Captures = s.captures
	s.guildTimelines, s.villageTimelines = BuildTimelines(s.Log)
}

func (s *Session) Counters() map[string]map[string]*app.PlayerCounters { return s.counters }
func (s *Session) Ownership() map[string]*app.VillageOwnership         { return s.ownership }
func (s *Session) Battles() map[string]*app.VillageBattle              { return s.battles }
func (s *Session) Statistics() *app.WarStatistics                      { return s.stats }
func (s *Session) GuildTimeline(guild string) []app.TimelineEntry      { return s.guildTimelines[guild] }
func (s *Session) VillageTimeline(village string) []app.TimelineEntry {
	return s.villageTimelines[village]
}

// Suppressed reports whether an event was marked as the duplicate half of a
// combo action.
func (s *Session) Suppressed(rec *app.EventRecord) bool {
	return s.suppressed[rec.IdentityKey()]
}

// ReferencedGuilds lists every real guild the log mentions, as attacker or
// defender, in sorted order.
func (s *Session) ReferencedGuilds() []string {
	seen := make(map[string]bool)
	for i := range s.Log {
		for _, name := range []string{s.Log[i].AttackerGuild, s.Log[i].DefenderGuild} {
			if name == "" || name == app.UnknownGuild || name == app.Unaffiliated {
				continue
			}
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MissingGuilds lists guilds referenced in the log with no roster entry.
func (s *Session) MissingGuilds() []string {
	missing := []string{}
	for _, name := range s.ReferencedGuilds() {
		if _, ok := s.Rosters[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// StaleGuilds lists collected rosters older than the given number of days.
// Stale rosters are advisory: they still resolve players until recollected.
func (s *Session) StaleGuilds(days int, now time.Time) []string {
	stale := []string{}
	names := make([]string, 0, len(s.Rosters))
	for name := range s.Rosters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if s.Rosters[name].Stale(days, now) {
			stale = append(stale, name)
		}
	}
	return stale
}
