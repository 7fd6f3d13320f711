package processing

import (
	"sort"

	"lanis_war_tracker/internal/app"

	"github.com/rs/zerolog/log"
)

// RosterResolver maps player names to guild names using the roster store.
//
// Resolution always uses the rosters current at construction time; a player
// who changed guild mid-session resolves to whichever roster lists them now.
type RosterResolver struct {
	byNickname map[string]string
}

// NewRosterResolver indexes the roster store for lookups. When a nickname
// appears in more than one roster, the guild first in name order wins, so
// resolution is deterministic across runs.
func NewRosterResolver(rosters app.RosterStore) *RosterResolver {
	names := make([]string, 0, len(rosters))
	for name := range rosters {
		names = append(names, name)
	}
	sort.Strings(names)

	idx := make(map[string]string)
	for _, guildName := range names {
		roster := rosters[guildName]
		if roster == nil {
			continue
		}
		for _, member := range roster.Members {
			if member.Nickname == "" {
				continue
			}
			if _, ok := idx[member.Nickname]; !ok {
				idx[member.Nickname] = guildName
			}
		}
	}
	return &RosterResolver{byNickname: idx}
}

// Resolve returns the owning guild for a player, or the unknown-guild
// sentinel when no roster lists them.
func (r *RosterResolver) Resolve(player string) string {
	if guild, ok := r.byNickname[player]; ok {
		return guild
	}
	return app.UnknownGuild
}

// ReattributeLog repairs defender attribution across the whole stored log:
// events without a defender guild get one (possibly the sentinel), and
// events stuck on the sentinel are upgraded when a newly collected roster
// now resolves them. Returns the number of records changed. The pass only
// mutates attribution, never identity, and running it twice is a no-op.
func (r *RosterResolver) ReattributeLog(records []app.EventRecord) int {
	changed := 0
	for i := range records {
		rec := &records[i]
		if rec.IsFortress || rec.DefenderName == "" {
			continue
		}
		if rec.DefenderGuild != "" && rec.DefenderGuild != app.UnknownGuild {
			continue
		}
		resolved := r.Resolve(rec.DefenderName)
		if resolved != rec.DefenderGuild {
			rec.DefenderGuild = resolved
			changed++
		}
	}
	if changed > 0 {
		log.Debug().Int("changed", changed).Msg("Reattributed defender guilds")
	}
	return changed
}
