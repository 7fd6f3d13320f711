package processing

import (
	"lanis_war_tracker/internal/app"
)

// ReplayCounters derives per-player charge counters and win/loss tallies by
// replaying the log in chronological order.
//
// Counter state is seeded at full quota for every roster member and created
// lazily for players the rosters do not know. AttacksRemaining has no floor:
// a player the log shows attacking more than the quota allows goes negative,
// which is itself a useful signal. DefensesRemaining floors at zero and only
// burns on a lost defense.
func ReplayCounters(
	records []app.EventRecord,
	suppressed map[string]bool,
	rosters app.RosterStore,
) map[string]map[string]*app.PlayerCounters {
	counters := make(map[string]map[string]*app.PlayerCounters)

	ensure := func(guild, player string) *app.PlayerCounters {
		players, ok := counters[guild]
		if !ok {
			players = make(map[string]*app.PlayerCounters)
			counters[guild] = players
		}
		c, ok := players[player]
		if !ok {
			c = app.NewPlayerCounters()
			players[player] = c
		}
		return c
	}

	for guildName, roster := range rosters {
		if roster == nil {
			continue
		}
		for _, member := range roster.Members {
			ensure(guildName, member.Nickname)
		}
	}

	for _, rec := range ChronologicalCopy(records) {
		if suppressed[rec.IdentityKey()] {
			continue
		}

		attacker := ensure(rec.AttackerGuild, rec.AttackerName)
		attacker.AttacksRemaining--
		if rec.Outcome.Success() {
			attacker.AttackWins++
		} else {
			attacker.AttackLosses++
		}

		// Fortress rows have no individual defender to charge.
		if rec.IsFortress || rec.DefenderName == "" {
			continue
		}
		defenderGuild := rec.DefenderGuild
		if defenderGuild == "" {
			defenderGuild = app.UnknownGuild
		}
		defender := ensure(defenderGuild, rec.DefenderName)
		if rec.Outcome.Success() {
			defender.DefenseLosses++
			if defender.DefensesRemaining > 0 {
				defender.DefensesRemaining--
			}
		} else {
			defender.DefenseWins++
		}
	}

	return counters
}
