package store

import (
	"path/filepath"
	"testing"
	"time"

	"lanis_war_tracker/internal/app"
)

func gameLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(app.DefaultTimezone)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tracker.db"), gameLocation(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if snapshot, err := s.LoadSnapshot(); err != nil || snapshot != nil {
		t.Fatalf("Expected empty store, got %+v, %v", snapshot, err)
	}

	snapshot := &app.DailySnapshot{
		SchemaVersion: app.SnapshotSchemaVersion,
		Date:          "2025-06-02",
		DayOfWeek:     "Monday",
		Logs: []app.EventRecord{
			{
				Timestamp:     time.Date(2025, 6, 2, 21, 30, 5, 0, gameLocation(t)),
				Village:       "Riverside",
				AttackerGuild: "Iron Wolves",
				AttackerName:  "alpha",
				DefenderName:  "dmitri",
				Outcome:       app.AttackWin,
			},
		},
	}
	if err := s.SaveSnapshot(snapshot); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Date != "2025-06-02" || len(loaded.Logs) != 1 {
		t.Errorf("Unexpected snapshot: %+v", loaded)
	}
	if !loaded.Logs[0].Timestamp.Equal(snapshot.Logs[0].Timestamp) {
		t.Errorf("Timestamp mismatch: %v", loaded.Logs[0].Timestamp)
	}
}

func TestSnapshotTimestampsStayInGameZone(t *testing.T) {
	// The wire format is zoneless; a reload on a host whose TZ differs from
	// the game zone must not shift the instant. A 21:00 event in Seoul has
	// to come back as the same instant, not 21:00 in the host zone.
	s := openTestStore(t)

	stamped := time.Date(2025, 6, 2, 21, 0, 0, 0, gameLocation(t))
	if err := s.SaveSnapshot(&app.DailySnapshot{
		SchemaVersion: app.SnapshotSchemaVersion,
		Date:          "2025-06-02",
		Logs:          []app.EventRecord{{Timestamp: stamped, Village: "Riverside", AttackerGuild: "Iron Wolves", AttackerName: "alpha", IsFortress: true, Outcome: app.AttackWin}},
	}); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	got := loaded.Logs[0].Timestamp
	if delta := got.Sub(stamped); delta != 0 {
		t.Errorf("Reload shifted the instant by %v: stored %v, loaded %v", delta, stamped, got)
	}
	if got.Location().String() != app.DefaultTimezone {
		t.Errorf("Expected timestamp localized to %s, got %v", app.DefaultTimezone, got.Location())
	}
}

func TestSnapshotOverwrite(t *testing.T) {
	s := openTestStore(t)

	first := &app.DailySnapshot{SchemaVersion: app.SnapshotSchemaVersion, Date: "2025-06-01"}
	second := &app.DailySnapshot{SchemaVersion: app.SnapshotSchemaVersion, Date: "2025-06-02"}
	if err := s.SaveSnapshot(first); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if err := s.SaveSnapshot(second); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Date != "2025-06-02" {
		t.Errorf("Expected last write to win, got %q", loaded.Date)
	}
}

func TestMalformedSnapshotDiscarded(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.conn.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)`, snapshotKey, "{not json"); err != nil {
		t.Fatalf("seed malformed value: %v", err)
	}

	snapshot, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("Expected malformed state survivable, got %v", err)
	}
	if snapshot != nil {
		t.Errorf("Expected malformed snapshot discarded, got %+v", snapshot)
	}

	// The bad value must be gone, not resurfacing on the next load.
	if raw, err := s.get(snapshotKey); err != nil || raw != "" {
		t.Errorf("Expected key purged, got %q, %v", raw, err)
	}
}

func TestRostersRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rosters, err := s.LoadRosters()
	if err != nil {
		t.Fatalf("LoadRosters failed: %v", err)
	}
	if len(rosters) != 0 {
		t.Fatalf("Expected empty roster store, got %+v", rosters)
	}

	rosters["Iron Wolves"] = &app.GuildRoster{
		Name:        "Iron Wolves",
		Members:     []app.GuildMember{{Nickname: "alpha", Reputation: 1200, Rank: "officer"}},
		CollectedAt: time.Now(),
	}
	if err := s.SaveRosters(rosters); err != nil {
		t.Fatalf("SaveRosters failed: %v", err)
	}

	loaded, err := s.LoadRosters()
	if err != nil {
		t.Fatalf("LoadRosters failed: %v", err)
	}
	roster := loaded["Iron Wolves"]
	if roster == nil || len(roster.Members) != 1 || roster.Members[0].Nickname != "alpha" {
		t.Errorf("Unexpected roster: %+v", roster)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveSnapshot(&app.DailySnapshot{SchemaVersion: 1, Date: "2025-06-02"}); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if err := s.SaveRosters(app.RosterStore{"Iron Wolves": {Name: "Iron Wolves"}}); err != nil {
		t.Fatalf("SaveRosters failed: %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if snapshot, _ := s.LoadSnapshot(); snapshot != nil {
		t.Errorf("Expected snapshot cleared, got %+v", snapshot)
	}
	if rosters, _ := s.LoadRosters(); len(rosters) != 0 {
		t.Errorf("Expected rosters cleared, got %+v", rosters)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	s, err := Open(path, gameLocation(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.SaveSnapshot(&app.DailySnapshot{SchemaVersion: 1, Date: "2025-06-02"}); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	s.Close()

	reopened, err := Open(path, gameLocation(t))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	snapshot, err := reopened.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if snapshot == nil || snapshot.Date != "2025-06-02" {
		t.Errorf("Expected snapshot to survive reopen, got %+v", snapshot)
	}
}
