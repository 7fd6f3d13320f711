package processing

import (
	"sort"

	"lanis_war_tracker/internal/app"

	"github.com/rs/zerolog/log"
)

// MergeResult describes the outcome of folding one raw batch into the
// canonical log. BatchEmpty is reported separately from NewRecords == 0 so
// that "scraper saw nothing" and "scraper saw only known rows" stay
// distinguishable downstream.
type MergeResult struct {
	Log        []app.EventRecord // sorted newest-first for display
	NewRecords int
	Replaced   int
	BatchEmpty bool
}

// MergeLogs deduplicates a raw batch against the existing canonical log.
//
// Identity is EventRecord.IdentityKey; the batch wins ties (last write), so
// a re-scraped row with corrected attribution replaces the stored one. The
// operation is idempotent: merging the same batch twice is a no-op.
func MergeLogs(existing, batch []app.EventRecord) MergeResult {
	if len(batch) == 0 {
		return MergeResult{Log: existing, BatchEmpty: true}
	}

	byKey := make(map[string]app.EventRecord, len(existing)+len(batch))
	order := make([]string, 0, len(existing)+len(batch))

	for _, rec := range existing {
		key := rec.IdentityKey()
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = rec
	}

	result := MergeResult{}
	for _, rec := range batch {
		key := rec.IdentityKey()
		if _, ok := byKey[key]; ok {
			result.Replaced++
		} else {
			order = append(order, key)
			result.NewRecords++
		}
		byKey[key] = rec
	}

	merged := make([]app.EventRecord, 0, len(order))
	for _, key := range order {
		merged = append(merged, byKey[key])
	}
	SortNewestFirst(merged)
	result.Log = merged

	log.Debug().
		Int("existing", len(existing)).
		Int("batch", len(batch)).
		Int("new_records", result.NewRecords).
		Int("replaced", result.Replaced).
		Msg("Merged war log batch")

	return result
}

// SortNewestFirst orders a log descending by timestamp for display. Equal
// timestamps fall back to the identity key so the order is deterministic.
func SortNewestFirst(records []app.EventRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].IdentityKey() < records[j].IdentityKey()
	})
}

// ChronologicalCopy returns a copy of the log sorted ascending by timestamp,
// the order every replay pass consumes.
func ChronologicalCopy(records []app.EventRecord) []app.EventRecord {
	out := make([]app.EventRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].IdentityKey() < out[j].IdentityKey()
	})
	return out
}
