package processing

import (
	"testing"

	"lanis_war_tracker/internal/app"
)

func TestBuildTimelines(t *testing.T) {
	attack := testEvent(0, "Riverside", "Iron Wolves", "alpha", "dmitri", false, app.AttackWin)
	attack.DefenderGuild = "Crimson Order"
	fortress := testEvent(10, "Hilltop", "Iron Wolves", "beta", "", true, app.AttackLoss)

	guilds, villages := BuildTimelines([]app.EventRecord{fortress, attack})

	wolves := guilds["Iron Wolves"]
	if len(wolves) != 2 {
		t.Fatalf("Expected 2 attacker rows for Iron Wolves, got %d", len(wolves))
	}
	if !wolves[0].Time.Before(wolves[1].Time) {
		t.Error("Expected feed in chronological order")
	}
	if wolves[0].Target != "Riverside/dmitri" || !wolves[0].Success {
		t.Errorf("Unexpected attacker row: %+v", wolves[0])
	}

	order := guilds["Crimson Order"]
	if len(order) != 1 {
		t.Fatalf("Expected 1 defender row for Crimson Order, got %d", len(order))
	}
	row := order[0]
	if !row.Defending || row.Player != "dmitri" || row.Success {
		t.Errorf("Expected inverted defender row, got %+v", row)
	}

	if len(villages["Riverside"]) != 1 || len(villages["Hilltop"]) != 1 {
		t.Errorf("Unexpected village feeds: %d/%d",
			len(villages["Riverside"]), len(villages["Hilltop"]))
	}
}

func TestBuildTimelinesUnresolvedDefenderBucketed(t *testing.T) {
	attack := testEvent(0, "Riverside", "Iron Wolves", "alpha", "dmitri", false, app.AttackWin)

	guilds, _ := BuildTimelines([]app.EventRecord{attack})

	if len(guilds[app.UnknownGuild]) != 1 {
		t.Errorf("Expected defender row under %q, got %+v", app.UnknownGuild, guilds)
	}
}
