package processing

import (
	"time"

	"lanis_war_tracker/internal/app"
)

// Fixed clock for deterministic tests: 2025-06-02 21:30:00 KST.
var testNow = time.Date(2025, 6, 2, 21, 30, 0, 0, testLocation())

func testLocation() *time.Location {
	loc, err := time.LoadLocation(app.DefaultTimezone)
	if err != nil {
		panic(err)
	}
	return loc
}

func newTestConfig() *app.Config {
	return &app.Config{
		Location:  testLocation(),
		WarHour:   21,
		StaleDays: 7,
	}
}

// newTestProcessor creates a Processor with mock collaborators and a fixed
// clock.
func newTestProcessor(
	source LogSource,
	guilds GuildSource,
	store KVStore,
	presenters ...Presenter,
) *Processor {
	p := NewProcessor(newTestConfig(), source, guilds, store, presenters...)
	p.now = func() time.Time { return testNow }
	return p
}

// testEvent builds an event at an offset in seconds from the fixed clock.
func testEvent(offsetSec int, village, attackerGuild, attackerName, defenderName string, fortress bool, outcome app.Outcome) app.EventRecord {
	return app.EventRecord{
		Timestamp:     testNow.Add(time.Duration(offsetSec) * time.Second),
		Village:       village,
		AttackerGuild: attackerGuild,
		AttackerName:  attackerName,
		DefenderName:  defenderName,
		IsFortress:    fortress,
		Outcome:       outcome,
	}
}

// testRoster builds a roster with the given member nicknames, collected at
// the fixed clock.
func testRoster(guildName string, members ...string) *app.GuildRoster {
	roster := &app.GuildRoster{
		Name:        guildName,
		CollectedAt: testNow,
	}
	for _, nickname := range members {
		roster.Members = append(roster.Members, app.GuildMember{Nickname: nickname})
	}
	return roster
}

// recordingPresenter captures every published view for assertions.
type recordingPresenter struct {
	Views []*DashboardView
}

func (r *recordingPresenter) Publish(view *DashboardView) {
	r.Views = append(r.Views, view)
}
