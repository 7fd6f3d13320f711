package presenter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"lanis_war_tracker/internal/app"
	"lanis_war_tracker/internal/processing"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Console renders the derived dashboard state as terminal tables after each
// collection cycle.
type Console struct {
	out io.Writer
}

func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleTo writes to the given writer instead of stdout.
func NewConsoleTo(w io.Writer) *Console {
	return &Console{out: w}
}

func (c *Console) Publish(view *processing.DashboardView) {
	fmt.Fprintf(c.out, "\n=== War dashboard %s (%d events) ===\n", view.Date, view.TotalEvents)
	c.printCounters(view.Counters)
	c.printOwnership(view.Ownership, view.Battles)
	c.printStatistics(view.Statistics)
	if len(view.MissingGuilds) > 0 {
		fmt.Fprintf(c.out, "\nRosters missing: %v\n", view.MissingGuilds)
	}
	if len(view.StaleGuilds) > 0 {
		fmt.Fprintf(c.out, "Rosters stale: %v\n", view.StaleGuilds)
	}
}

func (c *Console) newTable() *tablewriter.Table {
	return tablewriter.NewTable(c.out, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func (c *Console) printCounters(counters map[string]map[string]*app.PlayerCounters) {
	if len(counters) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\n--- Player Charges ---\n\n")
	t := c.newTable()
	t.Header("GUILD", "PLAYER", "ATK LEFT", "DEF LEFT", "AW", "AL", "DW", "DL")

	guilds := make([]string, 0, len(counters))
	for guild := range counters {
		guilds = append(guilds, guild)
	}
	sort.Strings(guilds)
	for _, guild := range guilds {
		players := make([]string, 0, len(counters[guild]))
		for player := range counters[guild] {
			players = append(players, player)
		}
		sort.Strings(players)
		for _, player := range players {
			pc := counters[guild][player]
			t.Append(
				guild,
				player,
				strconv.Itoa(pc.AttacksRemaining),
				strconv.Itoa(pc.DefensesRemaining),
				strconv.Itoa(pc.AttackWins),
				strconv.Itoa(pc.AttackLosses),
				strconv.Itoa(pc.DefenseWins),
				strconv.Itoa(pc.DefenseLosses),
			)
		}
	}
	t.Render()
}

func (c *Console) printOwnership(ownership map[string]*app.VillageOwnership, battles map[string]*app.VillageBattle) {
	if len(ownership) == 0 && len(battles) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\n--- Villages ---\n\n")
	t := c.newTable()
	t.Header("VILLAGE", "OWNER", "SINCE", "PREV", "ATTACKS", "WON", "LOST")

	villages := make(map[string]bool, len(ownership)+len(battles))
	for v := range ownership {
		villages[v] = true
	}
	for v := range battles {
		villages[v] = true
	}
	names := make([]string, 0, len(villages))
	for v := range villages {
		names = append(names, v)
	}
	sort.Strings(names)

	for _, village := range names {
		owner, since, prev := app.NeutralOwner, "", ""
		if own := ownership[village]; own != nil {
			owner = own.Owner
			prev = own.PreviousOwner
			if own.Inferred {
				since = "(inferred)"
			} else {
				since = own.CapturedAt.Format("15:04:05")
			}
		}
		total, won, lost := 0, 0, 0
		if vb := battles[village]; vb != nil {
			total, won, lost = vb.TotalAttacks, vb.SuccessAttacks, vb.FailAttacks
		}
		t.Append(village, owner, since, prev,
			strconv.Itoa(total), strconv.Itoa(won), strconv.Itoa(lost))
	}
	t.Render()
}

func (c *Console) printStatistics(stats *app.WarStatistics) {
	if stats == nil {
		return
	}
	fmt.Fprintf(c.out, "\n--- Leaderboard ---\n\n")
	t := c.newTable()
	t.Header("AWARD", "WHO", "DETAIL")

	appendPlayer := func(award string, p *app.PlayerTally, unit string) {
		if p == nil {
			return
		}
		t.Append(award, p.Guild+" / "+p.Name, fmt.Sprintf("%d %s", p.Count, unit))
	}
	appendPlayer("Top attacker", stats.TopAttacker, "wins")
	appendPlayer("Top defender", stats.TopDefender, "defenses")
	appendPlayer("Worst attacker", stats.WorstAttacker, "losses")
	appendPlayer("Pacifist", stats.Pacifist, "losses, no wins")
	if r := stats.Rivalry; r != nil {
		t.Append("Rivalry",
			fmt.Sprintf("%s vs %s", r.PlayerA.Name, r.PlayerB.Name),
			fmt.Sprintf("%d clashes (%d:%d)", r.Events, r.PlayerA.Count, r.PlayerB.Count))
	}
	if v := stats.HottestVillage; v != nil {
		t.Append("Hottest village", v.Name, fmt.Sprintf("%d attacks", v.Count))
	}
	if v := stats.FortressVillage; v != nil {
		t.Append("Fortress magnet", v.Name, fmt.Sprintf("%d fortress attacks", v.Count))
	}
	if g := stats.BestDefenseGuild; g != nil {
		t.Append("Best defense", g.Name,
			fmt.Sprintf("%.0f%% of %d", g.Rate*100, g.DefenseEvents))
	}
	appendGuild := func(award string, g *app.GuildTally, unit string) {
		if g == nil {
			return
		}
		t.Append(award, g.Name, fmt.Sprintf("%d %s", g.Count, unit))
	}
	appendGuild("Most attack wins", stats.MostAttackWinsGuild, "wins")
	appendGuild("Most attack losses", stats.MostAttackLossesGuild, "losses")
	appendGuild("Most active guild", stats.MostActiveGuild, "events")
	t.Render()

	if len(stats.Captures) > 0 {
		fmt.Fprintf(c.out, "\n--- Captures ---\n\n")
		ct := c.newTable()
		ct.Header("TIME", "VILLAGE", "FROM", "TO")
		for _, cap := range stats.Captures {
			ct.Append(cap.At.Format("15:04:05"), cap.Village, cap.From, cap.To)
		}
		ct.Render()
	}
}
