package processing

import (
	"testing"

	"lanis_war_tracker/internal/app"
)

func TestSuppressCombos(t *testing.T) {
	tests := []struct {
		name       string
		records    []app.EventRecord
		suppressed int
	}{
		{
			name: "fortress then village within window",
			records: []app.EventRecord{
				testEvent(0, "Riverside", "Iron Wolves", "alpha", "", true, app.AttackWin),
				testEvent(1, "Riverside", "Iron Wolves", "alpha", "dmitri", false, app.AttackWin),
			},
			suppressed: 1,
		},
		{
			name: "village then fortress within window",
			records: []app.EventRecord{
				testEvent(0, "Riverside", "Iron Wolves", "alpha", "dmitri", false, app.AttackWin),
				testEvent(2, "Riverside", "Iron Wolves", "alpha", "", true, app.AttackWin),
			},
			suppressed: 1,
		},
		{
			name: "gap beyond window",
			records: []app.EventRecord{
				testEvent(0, "Riverside", "Iron Wolves", "alpha", "", true, app.AttackWin),
				testEvent(3, "Riverside", "Iron Wolves", "alpha", "dmitri", false, app.AttackWin),
			},
			suppressed: 0,
		},
		{
			name: "same target type never pairs",
			records: []app.EventRecord{
				testEvent(0, "Riverside", "Iron Wolves", "alpha", "dmitri", false, app.AttackWin),
				testEvent(1, "Hilltop", "Iron Wolves", "alpha", "elena", false, app.AttackWin),
			},
			suppressed: 0,
		},
		{
			name: "different attackers never pair",
			records: []app.EventRecord{
				testEvent(0, "Riverside", "Iron Wolves", "alpha", "", true, app.AttackWin),
				testEvent(1, "Riverside", "Iron Wolves", "beta", "dmitri", false, app.AttackWin),
			},
			suppressed: 0,
		},
		{
			name: "same attacker name in different guilds never pairs",
			records: []app.EventRecord{
				testEvent(0, "Riverside", "Iron Wolves", "alpha", "", true, app.AttackWin),
				testEvent(1, "Riverside", "Crimson Order", "alpha", "dmitri", false, app.AttackWin),
			},
			suppressed: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suppressed := SuppressCombos(tt.records)
			if len(suppressed) != tt.suppressed {
				t.Errorf("Expected %d suppressed records, got %d", tt.suppressed, len(suppressed))
			}
		})
	}
}

func TestSuppressCombosOnlySecondRowOfPair(t *testing.T) {
	fortress := testEvent(0, "Riverside", "Iron Wolves", "alpha", "", true, app.AttackWin)
	village := testEvent(1, "Riverside", "Iron Wolves", "alpha", "dmitri", false, app.AttackWin)

	suppressed := SuppressCombos([]app.EventRecord{fortress, village})

	if suppressed[fortress.IdentityKey()] {
		t.Error("Expected the first row of a combo to survive")
	}
	if !suppressed[village.IdentityKey()] {
		t.Error("Expected the second row of a combo to be suppressed")
	}
}

func TestSuppressCombosPointerAdvancesThroughChains(t *testing.T) {
	// Three alternating rows one second apart: the second pairs with the
	// first, and the third pairs with the second. Each row can suppress at
	// most once because the last-seen pointer always advances.
	rows := []app.EventRecord{
		testEvent(0, "Riverside", "Iron Wolves", "alpha", "", true, app.AttackWin),
		testEvent(1, "Riverside", "Iron Wolves", "alpha", "dmitri", false, app.AttackWin),
		testEvent(2, "Hilltop", "Iron Wolves", "alpha", "", true, app.AttackWin),
	}

	suppressed := SuppressCombos(rows)

	if suppressed[rows[0].IdentityKey()] {
		t.Error("Expected first row to survive")
	}
	if !suppressed[rows[1].IdentityKey()] || !suppressed[rows[2].IdentityKey()] {
		t.Error("Expected both trailing rows of the chain to be suppressed")
	}
}

func TestSuppressCombosScansChronologically(t *testing.T) {
	// Input arrives newest-first; suppression decisions must still follow
	// event time, not slice order.
	village := testEvent(1, "Riverside", "Iron Wolves", "alpha", "dmitri", false, app.AttackWin)
	fortress := testEvent(0, "Riverside", "Iron Wolves", "alpha", "", true, app.AttackWin)

	suppressed := SuppressCombos([]app.EventRecord{village, fortress})

	if !suppressed[village.IdentityKey()] {
		t.Error("Expected the chronologically later row to be suppressed")
	}
	if suppressed[fortress.IdentityKey()] {
		t.Error("Expected the chronologically earlier row to survive")
	}
}
