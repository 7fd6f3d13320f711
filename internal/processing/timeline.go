package processing

import (
	"lanis_war_tracker/internal/app"
)

// BuildTimelines reconstructs chronological action feeds per guild and per
// village. Each attack produces an attacker-perspective row in the
// attacker's guild feed and, when a defender exists, an inverted
// defender-perspective row in the defender's guild feed.
func BuildTimelines(records []app.EventRecord) (guilds, villages map[string][]app.TimelineEntry) {
	guilds = make(map[string][]app.TimelineEntry)
	villages = make(map[string][]app.TimelineEntry)

	for _, rec := range ChronologicalCopy(records) {
		attackRow := app.TimelineEntry{
			Time:    rec.Timestamp,
			Guild:   rec.AttackerGuild,
			Player:  rec.AttackerName,
			Target:  rec.TargetDescription(),
			Village: rec.Village,
			Success: rec.Outcome.Success(),
		}
		guilds[rec.AttackerGuild] = append(guilds[rec.AttackerGuild], attackRow)
		villages[rec.Village] = append(villages[rec.Village], attackRow)

		if rec.IsFortress || rec.DefenderName == "" {
			continue
		}
		defenderGuild := rec.DefenderGuild
		if defenderGuild == "" {
			defenderGuild = app.UnknownGuild
		}
		guilds[defenderGuild] = append(guilds[defenderGuild], app.TimelineEntry{
			Time:      rec.Timestamp,
			Guild:     defenderGuild,
			Player:    rec.DefenderName,
			Target:    rec.AttackerGuild + " " + rec.AttackerName,
			Village:   rec.Village,
			Success:   !rec.Outcome.Success(),
			Defending: true,
		})
	}

	return guilds, villages
}
