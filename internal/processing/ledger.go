package processing

import (
	"lanis_war_tracker/internal/app"
)

// ReplayOwnership derives current village ownership and the capture/takeback
// history from a chronological replay.
//
// Capture rows are authoritative: they always set the owner, recording the
// previous one. A village with no record yet gets an inferred owner the
// first time a resolvable guild is seen defending it, since holding the
// defending side implies incumbency. Fortress rows never touch ownership.
func ReplayOwnership(records []app.EventRecord) (map[string]*app.VillageOwnership, []app.CaptureEvent) {
	ownership := make(map[string]*app.VillageOwnership)
	var captures []app.CaptureEvent

	for _, rec := range ChronologicalCopy(records) {
		if rec.IsFortress {
			continue
		}

		if rec.Outcome.IsCapture() {
			prev := app.NeutralOwner
			if cur, ok := ownership[rec.Village]; ok {
				prev = cur.Owner
			}
			owner := rec.AttackerGuild
			if owner == "" || owner == app.UnknownGuild {
				owner = app.NeutralOwner
			}
			ownership[rec.Village] = &app.VillageOwnership{
				Owner:         owner,
				CapturedAt:    rec.Timestamp,
				PreviousOwner: prev,
			}
			captures = append(captures, app.CaptureEvent{
				Village: rec.Village,
				From:    prev,
				To:      owner,
				At:      rec.Timestamp,
			})
			continue
		}

		if _, ok := ownership[rec.Village]; ok {
			continue
		}
		if rec.DefenderGuild == "" || rec.DefenderGuild == app.UnknownGuild {
			continue
		}
		ownership[rec.Village] = &app.VillageOwnership{
			Owner:         rec.DefenderGuild,
			CapturedAt:    rec.Timestamp,
			PreviousOwner: rec.DefenderGuild,
			Inferred:      true,
		}
	}

	return ownership, captures
}

// ReplayBattles summarizes attack traffic per village, including fortress
// rows, broken down by attacking guild.
func ReplayBattles(records []app.EventRecord) map[string]*app.VillageBattle {
	battles := make(map[string]*app.VillageBattle)

	for _, rec := range records {
		battle, ok := battles[rec.Village]
		if !ok {
			battle = &app.VillageBattle{Guilds: make(map[string]*app.GuildBattle)}
			battles[rec.Village] = battle
		}
		battle.TotalAttacks++

		guild, ok := battle.Guilds[rec.AttackerGuild]
		if !ok {
			guild = &app.GuildBattle{}
			battle.Guilds[rec.AttackerGuild] = guild
		}
		guild.Attacks++

		if rec.Outcome.Success() {
			battle.SuccessAttacks++
			guild.Success++
		} else {
			battle.FailAttacks++
			guild.Fail++
		}
	}

	return battles
}
