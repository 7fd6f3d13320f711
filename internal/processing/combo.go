package processing

import (
	"time"

	"lanis_war_tracker/internal/app"
)

// ComboWindow is the maximum gap between the fortress and village rows of a
// single combo strike. The game stamps both rows within the same second or
// the one after, so two seconds is already generous.
const ComboWindow = 2 * time.Second

// SuppressCombos finds paired fortress+village rows that describe one real
// action and returns the identity keys of the rows to suppress. Suppressed
// rows stay in the log for display but consume no attack quota and update
// no tallies.
//
// The scan runs chronologically per attacker. When an event lands within
// ComboWindow of the actor's previous event and exactly one of the two is
// fortress-tagged, the current event is suppressed. The last-seen pointer
// advances on every event, so one real action can never suppress more than
// one row.
func SuppressCombos(records []app.EventRecord) map[string]bool {
	suppressed := make(map[string]bool)
	lastSeen := make(map[string]app.EventRecord)

	for _, rec := range ChronologicalCopy(records) {
		actor := rec.AttackerGuild + "|" + rec.AttackerName
		if prev, ok := lastSeen[actor]; ok {
			gap := rec.Timestamp.Sub(prev.Timestamp)
			if gap <= ComboWindow && rec.IsFortress != prev.IsFortress {
				suppressed[rec.IdentityKey()] = true
			}
		}
		lastSeen[actor] = rec
	}
	return suppressed
}
