package app

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the wire format for event timestamps. It is second-resolution
// and lexicographically orderable, matching the log table on the war page.
const TimeLayout = "2006-01-02 15:04:05"

// Sentinel identities used when attribution is impossible.
const (
	// UnknownGuild marks a player that no collected roster can resolve.
	UnknownGuild = "Unknown Guild"
	// NeutralOwner marks a village with no capture record.
	NeutralOwner = "Neutral"
	// Unaffiliated players belong to no guild and are never collected.
	Unaffiliated = "Unaffiliated"
)

// Daily per-player allowances tracked by the accountant.
const (
	AttackQuota  = 8
	DefenseQuota = 4
)

// SnapshotSchemaVersion guards the persisted daily snapshot. Bump on any
// incompatible change to EventRecord; mismatched snapshots are discarded.
const SnapshotSchemaVersion = 1

// Outcome is the parsed result label of a war log row.
type Outcome string

const (
	AttackWin       Outcome = "attack_win"
	AttackLoss      Outcome = "attack_loss"
	VillageCaptured Outcome = "village_captured"
)

// Success reports whether the attacker won the engagement. A capture is
// always a successful attack.
func (o Outcome) Success() bool {
	return o == AttackWin || o == VillageCaptured
}

// IsCapture reports whether the outcome transfers village ownership.
func (o Outcome) IsCapture() bool {
	return o == VillageCaptured
}

// EventRecord is one parsed combat action from the war log.
//
// Records are immutable once merged, with one exception: DefenderGuild is a
// derived attribution that the resolver may backfill after the fact. It is
// deliberately excluded from the identity key for that reason.
type EventRecord struct {
	Timestamp     time.Time
	Village       string
	AttackerGuild string
	AttackerName  string
	DefenderName  string // empty for fortress targets
	DefenderGuild string
	IsFortress    bool
	Outcome       Outcome
}

// TargetDescription is the display identity of whatever was attacked.
func (e *EventRecord) TargetDescription() string {
	if e.IsFortress {
		return e.Village + " fortress"
	}
	return e.Village + "/" + e.DefenderName
}

// IdentityKey is the deduplication identity of an event. Two records with
// equal keys describe the same real-world action. DefenderGuild is excluded
// because attribution is backfilled after merge; win vs capture collapses to
// the success bit because the log occasionally relabels a capture row as a
// plain win on re-render.
func (e *EventRecord) IdentityKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%t",
		e.Timestamp.Format(TimeLayout),
		e.AttackerGuild,
		e.AttackerName,
		e.TargetDescription(),
		e.Outcome.Success(),
	)
}

// eventRecordWire keeps the persisted timestamp in the orderable text format
// rather than RFC 3339. The format carries no zone: decoding parses it in UTC
// as a placeholder and the owning store rebinds the wall-clock time to the
// configured game zone via DailySnapshot.Localize.
type eventRecordWire struct {
	Timestamp     string  `json:"timestamp"`
	Village       string  `json:"village"`
	AttackerGuild string  `json:"attacker_guild"`
	AttackerName  string  `json:"attacker_name"`
	DefenderName  string  `json:"defender_name,omitempty"`
	DefenderGuild string  `json:"defender_guild,omitempty"`
	IsFortress    bool    `json:"is_fortress"`
	Outcome       Outcome `json:"outcome"`
}

func (e EventRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventRecordWire{
		Timestamp:     e.Timestamp.Format(TimeLayout),
		Village:       e.Village,
		AttackerGuild: e.AttackerGuild,
		AttackerName:  e.AttackerName,
		DefenderName:  e.DefenderName,
		DefenderGuild: e.DefenderGuild,
		IsFortress:    e.IsFortress,
		Outcome:       e.Outcome,
	})
}

func (e *EventRecord) UnmarshalJSON(data []byte) error {
	var w eventRecordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ts, err := time.ParseInLocation(TimeLayout, w.Timestamp, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid event timestamp %q: %w", w.Timestamp, err)
	}
	e.Timestamp = ts
	e.Village = w.Village
	e.AttackerGuild = w.AttackerGuild
	e.AttackerName = w.AttackerName
	e.DefenderName = w.DefenderName
	e.DefenderGuild = w.DefenderGuild
	e.IsFortress = w.IsFortress
	e.Outcome = w.Outcome
	return nil
}

// DailySnapshot is the persisted form of one day's merged log.
type DailySnapshot struct {
	SchemaVersion int           `json:"schema_version"`
	Date          string        `json:"date"` // YYYY-MM-DD in the game's region
	DayOfWeek     string        `json:"day_of_week"`
	Logs          []EventRecord `json:"logs"`
}

// Localize rebinds every log timestamp's wall-clock time to the given zone.
// Wire timestamps are zoneless, so a reloaded snapshot must be localized
// before it is compared against freshly scraped rows; skipping this on a
// host whose local zone differs from the game zone would shift restored
// events away from new ones stamped at the same wall-clock second.
func (s *DailySnapshot) Localize(loc *time.Location) {
	for i := range s.Logs {
		t := s.Logs[i].Timestamp
		s.Logs[i].Timestamp = time.Date(
			t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
			loc,
		)
	}
}

// GuildMember is one row of a guild roster page.
type GuildMember struct {
	Nickname   string `json:"nickname"`
	Reputation int    `json:"reputation"`
	Rank       string `json:"rank"`
}

// GuildRoster is one collected guild with its member list. Entries are
// replaced wholesale per collection; there is no member-level merging and no
// rename detection.
type GuildRoster struct {
	Name        string        `json:"guild_name"`
	Master      string        `json:"guild_master,omitempty"`
	Level       int           `json:"guild_level,omitempty"`
	Description string        `json:"description,omitempty"`
	Members     []GuildMember `json:"members"`
	CollectedAt time.Time     `json:"collected_at"`
}

// Stale reports whether the roster is older than the given number of days.
func (r *GuildRoster) Stale(days int, now time.Time) bool {
	if r.CollectedAt.IsZero() {
		return false
	}
	return now.Sub(r.CollectedAt) > time.Duration(days)*24*time.Hour
}

// RosterStore maps guild name to its latest collected roster.
type RosterStore map[string]*GuildRoster

// PlayerCounters is the derived per-player charge and tally state. It is
// recomputed from roster plus log on every cycle, never persisted.
type PlayerCounters struct {
	AttacksRemaining  int `json:"attacks_remaining"`
	DefensesRemaining int `json:"defenses_remaining"`
	AttackWins        int `json:"attack_wins"`
	AttackLosses      int `json:"attack_losses"`
	DefenseWins       int `json:"defense_wins"`
	DefenseLosses     int `json:"defense_losses"`
}

// NewPlayerCounters returns counters at full quota with zero tallies.
func NewPlayerCounters() *PlayerCounters {
	return &PlayerCounters{
		AttacksRemaining:  AttackQuota,
		DefensesRemaining: DefenseQuota,
	}
}

// VillageOwnership is the derived ownership state of one village.
type VillageOwnership struct {
	Owner         string    `json:"owner"`
	CapturedAt    time.Time `json:"captured_at"`
	PreviousOwner string    `json:"previous_owner"`
	Inferred      bool      `json:"inferred"` // deduced from a defense rather than a capture row
}

// CaptureEvent is one entry of the capture/takeback history.
type CaptureEvent struct {
	Village string    `json:"village"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	At      time.Time `json:"at"`
}

// GuildBattle is a per-guild attack breakdown within one village.
type GuildBattle struct {
	Attacks int `json:"attacks"`
	Success int `json:"success"`
	Fail    int `json:"fail"`
}

// VillageBattle is the per-village battle summary.
type VillageBattle struct {
	TotalAttacks   int                     `json:"total_attacks"`
	SuccessAttacks int                     `json:"success_attacks"`
	FailAttacks    int                     `json:"fail_attacks"`
	Guilds         map[string]*GuildBattle `json:"guilds"`
}

// TimelineEntry is one row of a per-guild or per-village action feed.
type TimelineEntry struct {
	Time      time.Time `json:"time"`
	Guild     string    `json:"guild"`
	Player    string    `json:"player"`
	Target    string    `json:"target"`
	Village   string    `json:"village"`
	Success   bool      `json:"success"`
	Defending bool      `json:"defending"`
}

// PlayerTally names a player together with a count (wins, losses, ...).
type PlayerTally struct {
	Guild string `json:"guild"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// VillageTally names a village together with a count.
type VillageTally struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GuildTally names a guild together with a count.
type GuildTally struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GuildDefenseRate is the best-defense-rate leaderboard entry.
type GuildDefenseRate struct {
	Name          string  `json:"name"`
	Rate          float64 `json:"rate"`
	DefenseEvents int     `json:"defense_events"`
}

// Rivalry is the most-contested head-to-head pair. The pair key is
// unordered: A attacking B and B attacking A land in the same entry.
type Rivalry struct {
	PlayerA PlayerTally `json:"player_a"` // Count holds A's wins within the pair
	PlayerB PlayerTally `json:"player_b"`
	Events  int         `json:"events"`
}

// WarStatistics is the aggregate leaderboard surface. Nil fields mean the
// log contained no qualifying events.
type WarStatistics struct {
	TopAttacker     *PlayerTally  `json:"top_attacker,omitempty"`
	TopDefender     *PlayerTally  `json:"top_defender,omitempty"`
	WorstAttacker   *PlayerTally  `json:"worst_attacker,omitempty"`
	Pacifist        *PlayerTally  `json:"pacifist,omitempty"`
	Rivalry         *Rivalry      `json:"rivalry,omitempty"`
	HottestVillage  *VillageTally `json:"hottest_village,omitempty"`
	FortressVillage *VillageTally `json:"fortress_village,omitempty"`

	BestDefenseGuild      *GuildDefenseRate `json:"best_defense_guild,omitempty"`
	MostAttackWinsGuild   *GuildTally       `json:"most_attack_wins_guild,omitempty"`
	MostAttackLossesGuild *GuildTally       `json:"most_attack_losses_guild,omitempty"`
	MostActiveGuild       *GuildTally       `json:"most_active_guild,omitempty"`

	Captures []CaptureEvent `json:"captures,omitempty"`
}
