package processing

import (
	"strings"

	"lanis_war_tracker/internal/app"
)

// orderedTally counts occurrences while remembering first-encounter order,
// so leaderboard ties resolve to whoever appeared first in the ascending
// scan, stable across runs.
type orderedTally struct {
	order []string
	count map[string]int
}

func newOrderedTally() *orderedTally {
	return &orderedTally{count: make(map[string]int)}
}

func (t *orderedTally) add(key string) {
	if _, ok := t.count[key]; !ok {
		t.order = append(t.order, key)
	}
	t.count[key]++
}

func (t *orderedTally) max() (string, int) {
	best, bestCount := "", 0
	for _, key := range t.order {
		if t.count[key] > bestCount {
			best, bestCount = key, t.count[key]
		}
	}
	return best, bestCount
}

const keySep = "\t"

func playerKey(guild, name string) string { return guild + keySep + name }

func splitPlayerKey(key string) (guild, name string) {
	guild, name, _ = strings.Cut(key, keySep)
	return guild, name
}

func playerTally(key string, count int) *app.PlayerTally {
	guild, name := splitPlayerKey(key)
	return &app.PlayerTally{Guild: guild, Name: name, Count: count}
}

type rivalryCount struct {
	keyA, keyB   string // keyA < keyB
	events       int
	winsA, winsB int
}

type guildDefense struct {
	wins, losses int
}

// Aggregate computes the leaderboard statistics from the full log in one
// ascending pass. Combo suppression deliberately does not apply here: the
// statistics describe what the log shows, not what consumed quota.
func Aggregate(records []app.EventRecord) *app.WarStatistics {
	stats := &app.WarStatistics{}
	if len(records) == 0 {
		return stats
	}

	attackWins := newOrderedTally()
	attackLosses := newOrderedTally()
	defenseWins := newOrderedTally()
	villageAttacks := newOrderedTally()
	fortressAttacks := newOrderedTally()

	guildAttackWins := newOrderedTally()
	guildAttackLosses := newOrderedTally()
	guildActivity := newOrderedTally()
	guildDefOrder := []string{}
	guildDef := make(map[string]*guildDefense)

	rivalryOrder := []string{}
	rivalries := make(map[string]*rivalryCount)

	for _, rec := range ChronologicalCopy(records) {
		attacker := playerKey(rec.AttackerGuild, rec.AttackerName)
		if rec.Outcome.Success() {
			attackWins.add(attacker)
		} else {
			attackLosses.add(attacker)
		}
		villageAttacks.add(rec.Village)
		if rec.IsFortress {
			fortressAttacks.add(rec.Village)
		}

		if rec.AttackerGuild != app.UnknownGuild {
			guildActivity.add(rec.AttackerGuild)
			if rec.Outcome.Success() {
				guildAttackWins.add(rec.AttackerGuild)
			} else {
				guildAttackLosses.add(rec.AttackerGuild)
			}
		}

		if rec.IsFortress || rec.DefenderName == "" {
			continue
		}
		defenderGuild := rec.DefenderGuild
		if defenderGuild == "" {
			defenderGuild = app.UnknownGuild
		}
		defender := playerKey(defenderGuild, rec.DefenderName)
		if !rec.Outcome.Success() {
			defenseWins.add(defender)
		}

		if defenderGuild != app.UnknownGuild {
			guildActivity.add(defenderGuild)
			def, ok := guildDef[defenderGuild]
			if !ok {
				def = &guildDefense{}
				guildDef[defenderGuild] = def
				guildDefOrder = append(guildDefOrder, defenderGuild)
			}
			if rec.Outcome.Success() {
				def.losses++
			} else {
				def.wins++
			}
		}

		// Head-to-head pair, unordered: A attacking B counts toward the
		// same entry as B attacking A.
		keyA, keyB := attacker, defender
		attackerIsA := true
		if keyB < keyA {
			keyA, keyB = keyB, keyA
			attackerIsA = false
		}
		pair := keyA + "|" + keyB
		riv, ok := rivalries[pair]
		if !ok {
			riv = &rivalryCount{keyA: keyA, keyB: keyB}
			rivalries[pair] = riv
			rivalryOrder = append(rivalryOrder, pair)
		}
		riv.events++
		if rec.Outcome.Success() == attackerIsA {
			riv.winsA++
		} else {
			riv.winsB++
		}
	}

	if key, count := attackWins.max(); count > 0 {
		stats.TopAttacker = playerTally(key, count)
	}
	if key, count := defenseWins.max(); count > 0 {
		stats.TopDefender = playerTally(key, count)
	}
	if key, count := attackLosses.max(); count > 0 {
		stats.WorstAttacker = playerTally(key, count)
	}

	// Pacifist: three or more losses and not a single win.
	bestPacifist, bestLosses := "", 0
	for _, key := range attackLosses.order {
		losses := attackLosses.count[key]
		if losses >= 3 && attackWins.count[key] == 0 && losses > bestLosses {
			bestPacifist, bestLosses = key, losses
		}
	}
	if bestLosses > 0 {
		stats.Pacifist = playerTally(bestPacifist, bestLosses)
	}

	var bestRivalry *rivalryCount
	for _, pair := range rivalryOrder {
		riv := rivalries[pair]
		if bestRivalry == nil || riv.events > bestRivalry.events {
			bestRivalry = riv
		}
	}
	if bestRivalry != nil {
		stats.Rivalry = &app.Rivalry{
			PlayerA: *playerTally(bestRivalry.keyA, bestRivalry.winsA),
			PlayerB: *playerTally(bestRivalry.keyB, bestRivalry.winsB),
			Events:  bestRivalry.events,
		}
	}

	if name, count := villageAttacks.max(); count > 0 {
		stats.HottestVillage = &app.VillageTally{Name: name, Count: count}
	}
	if name, count := fortressAttacks.max(); count > 0 {
		stats.FortressVillage = &app.VillageTally{Name: name, Count: count}
	}

	if name, count := guildAttackWins.max(); count > 0 {
		stats.MostAttackWinsGuild = &app.GuildTally{Name: name, Count: count}
	}
	if name, count := guildAttackLosses.max(); count > 0 {
		stats.MostAttackLossesGuild = &app.GuildTally{Name: name, Count: count}
	}
	if name, count := guildActivity.max(); count > 0 {
		stats.MostActiveGuild = &app.GuildTally{Name: name, Count: count}
	}

	// Best defense rate, minimum five defense events; rate ties break
	// toward the guild that defended more.
	var bestDef *app.GuildDefenseRate
	for _, name := range guildDefOrder {
		def := guildDef[name]
		events := def.wins + def.losses
		if events < 5 {
			continue
		}
		rate := float64(def.wins) / float64(events)
		if bestDef == nil || rate > bestDef.Rate ||
			(rate == bestDef.Rate && events > bestDef.DefenseEvents) {
			bestDef = &app.GuildDefenseRate{Name: name, Rate: rate, DefenseEvents: events}
		}
	}
	stats.BestDefenseGuild = bestDef

	return stats
}
