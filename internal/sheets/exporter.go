package sheets

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lanis_war_tracker/internal/app"
	"lanis_war_tracker/internal/config"
	"lanis_war_tracker/internal/processing"

	"github.com/rs/zerolog/log"
)

// SheetWriter is the slice of the sheets client the exporter needs.
type SheetWriter interface {
	ClearRange(ctx context.Context, spreadsheetID, range_ string) error
	UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error
}

// Exported tab ranges. The dashboard spreadsheet is expected to have these
// three tabs; each is cleared and rewritten wholesale per cycle.
const (
	chargesRange     = "Charges!A1:Z1000"
	villagesRange    = "Villages!A1:Z1000"
	leaderboardRange = "Leaderboard!A1:Z1000"
)

// Exporter publishes the dashboard view to a Google Sheets spreadsheet.
// Export failures are logged and dropped; the next cycle rewrites everything
// from scratch anyway.
type Exporter struct {
	client        SheetWriter
	spreadsheetID string
	retry         config.RetryConfig
}

func NewExporter(client SheetWriter, spreadsheetID string) *Exporter {
	return &Exporter{
		client:        client,
		spreadsheetID: spreadsheetID,
		retry:         config.DefaultResilienceConfig.SheetExport,
	}
}

func (e *Exporter) Publish(view *processing.DashboardView) {
	ctx, cancel := context.WithTimeout(context.Background(), e.retry.Timeout)
	defer cancel()

	if err := e.export(ctx, view); err != nil {
		log.Error().Err(err).Str("date", view.Date).Msg("Failed to export dashboard to sheets")
		return
	}
	log.Debug().Str("date", view.Date).Msg("Exported dashboard to sheets")
}

func (e *Exporter) export(ctx context.Context, view *processing.DashboardView) error {
	if err := e.writeTab(ctx, chargesRange, chargeRows(view)); err != nil {
		return err
	}
	if err := e.writeTab(ctx, villagesRange, villageRows(view)); err != nil {
		return err
	}
	return e.writeTab(ctx, leaderboardRange, leaderboardRows(view))
}

// writeTab clears then rewrites one tab, retrying with backoff on failure.
func (e *Exporter) writeTab(ctx context.Context, range_ string, rows [][]interface{}) error {
	var lastErr error
	wait := e.retry.InitialWait
	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait = time.Duration(float64(wait) * e.retry.Multiplier)
			if wait > e.retry.MaxWait {
				wait = e.retry.MaxWait
			}
		}

		if err := e.client.ClearRange(ctx, e.spreadsheetID, range_); err != nil {
			lastErr = err
			continue
		}
		if err := e.client.UpdateRange(ctx, e.spreadsheetID, range_, rows); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("write %s after %d attempts: %w", range_, e.retry.MaxAttempts, lastErr)
}

func chargeRows(view *processing.DashboardView) [][]interface{} {
	rows := [][]interface{}{
		{"Guild", "Player", "Attacks Left", "Defenses Left", "Attack Wins", "Attack Losses", "Defense Wins", "Defense Losses"},
	}
	guilds := make([]string, 0, len(view.Counters))
	for guild := range view.Counters {
		guilds = append(guilds, guild)
	}
	sort.Strings(guilds)
	for _, guild := range guilds {
		players := make([]string, 0, len(view.Counters[guild]))
		for player := range view.Counters[guild] {
			players = append(players, player)
		}
		sort.Strings(players)
		for _, player := range players {
			pc := view.Counters[guild][player]
			rows = append(rows, []interface{}{
				guild, player,
				pc.AttacksRemaining, pc.DefensesRemaining,
				pc.AttackWins, pc.AttackLosses,
				pc.DefenseWins, pc.DefenseLosses,
			})
		}
	}
	return rows
}

func villageRows(view *processing.DashboardView) [][]interface{} {
	rows := [][]interface{}{
		{"Village", "Owner", "Captured At", "Previous Owner", "Total Attacks", "Successful", "Failed"},
	}
	names := make([]string, 0, len(view.Ownership))
	seen := make(map[string]bool, len(view.Ownership))
	for v := range view.Ownership {
		names = append(names, v)
		seen[v] = true
	}
	for v := range view.Battles {
		if !seen[v] {
			names = append(names, v)
		}
	}
	sort.Strings(names)

	for _, village := range names {
		owner, captured, prev := app.NeutralOwner, "", ""
		if own := view.Ownership[village]; own != nil {
			owner = own.Owner
			prev = own.PreviousOwner
			if own.Inferred {
				captured = "inferred"
			} else {
				captured = own.CapturedAt.Format(app.TimeLayout)
			}
		}
		total, won, lost := 0, 0, 0
		if vb := view.Battles[village]; vb != nil {
			total, won, lost = vb.TotalAttacks, vb.SuccessAttacks, vb.FailAttacks
		}
		rows = append(rows, []interface{}{village, owner, captured, prev, total, won, lost})
	}
	return rows
}

func leaderboardRows(view *processing.DashboardView) [][]interface{} {
	rows := [][]interface{}{{"Award", "Who", "Detail"}}
	stats := view.Statistics
	if stats == nil {
		return rows
	}

	player := func(award string, p *app.PlayerTally, unit string) {
		if p == nil {
			return
		}
		rows = append(rows, []interface{}{award, p.Guild + " / " + p.Name, fmt.Sprintf("%d %s", p.Count, unit)})
	}
	player("Top attacker", stats.TopAttacker, "wins")
	player("Top defender", stats.TopDefender, "defenses")
	player("Worst attacker", stats.WorstAttacker, "losses")
	player("Pacifist", stats.Pacifist, "losses, no wins")
	if r := stats.Rivalry; r != nil {
		rows = append(rows, []interface{}{
			"Rivalry",
			fmt.Sprintf("%s vs %s", r.PlayerA.Name, r.PlayerB.Name),
			fmt.Sprintf("%d clashes (%d:%d)", r.Events, r.PlayerA.Count, r.PlayerB.Count),
		})
	}
	if v := stats.HottestVillage; v != nil {
		rows = append(rows, []interface{}{"Hottest village", v.Name, fmt.Sprintf("%d attacks", v.Count)})
	}
	if v := stats.FortressVillage; v != nil {
		rows = append(rows, []interface{}{"Fortress magnet", v.Name, fmt.Sprintf("%d fortress attacks", v.Count)})
	}
	if g := stats.BestDefenseGuild; g != nil {
		rows = append(rows, []interface{}{"Best defense", g.Name, fmt.Sprintf("%.0f%% of %d", g.Rate*100, g.DefenseEvents)})
	}
	guild := func(award string, g *app.GuildTally, unit string) {
		if g == nil {
			return
		}
		rows = append(rows, []interface{}{award, g.Name, fmt.Sprintf("%d %s", g.Count, unit)})
	}
	guild("Most attack wins", stats.MostAttackWinsGuild, "wins")
	guild("Most attack losses", stats.MostAttackLossesGuild, "losses")
	guild("Most active guild", stats.MostActiveGuild, "events")

	for _, cap := range stats.Captures {
		rows = append(rows, []interface{}{
			"Capture",
			cap.Village,
			fmt.Sprintf("%s -> %s at %s", cap.From, cap.To, cap.At.Format(app.TimeLayout)),
		})
	}
	return rows
}
