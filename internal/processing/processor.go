package processing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lanis_war_tracker/internal/app"

	"github.com/rs/zerolog/log"
)

// CycleResult reports what one collection cycle did. SourceEmpty and
// SourceMissing stay separate from NewRecords so the caller can tell "the
// scraper saw nothing", "the scraper could not find the log", and "only
// known rows" apart.
type CycleResult struct {
	Date          string
	SourceMissing bool
	SourceEmpty   bool
	ParsedRows    int
	NewRecords    int
	Reattributed  int
	TotalRecords  int
	MissingGuilds []string
	StaleGuilds   []string
}

// RosterCollectionResult reports a roster collection sweep.
type RosterCollectionResult struct {
	Requested []string
	Collected int
	Purged    int
	Failed    int
}

// Processor owns the collection pipeline: scrape, merge, attribution
// repair, persistence, derived-state recomputation, and publication.
// All mutation funnels through one mutex, so writes complete before any
// derived state is handed to presenters.
type Processor struct {
	config     *app.Config
	source     LogSource
	guilds     GuildSource
	store      KVStore
	presenters []Presenter

	mu      sync.Mutex
	session *Session

	now func() time.Time
}

// NewProcessor wires the pipeline. Presenters may be empty; extra
// presenters (e.g. a sheet exporter) all receive the same view.
func NewProcessor(
	config *app.Config,
	source LogSource,
	guilds GuildSource,
	store KVStore,
	presenters ...Presenter,
) *Processor {
	return &Processor{
		config:     config,
		source:     source,
		guilds:     guilds,
		store:      store,
		presenters: presenters,
		now:        time.Now,
	}
}

// RunCollectionCycle executes one strictly-ordered pipeline pass: ensure a
// session for today, scrape, merge, repair attribution, persist, recompute
// derived state, publish. A cycle already in flight makes this return
// ErrCycleInFlight rather than overlap.
func (p *Processor) RunCollectionCycle(ctx context.Context) (*CycleResult, error) {
	if !p.mu.TryLock() {
		return nil, ErrCycleInFlight
	}
	defer p.mu.Unlock()

	now := p.now()
	result := &CycleResult{Date: p.config.Today(now)}

	if err := p.ensureSession(result.Date); err != nil {
		return nil, err
	}

	rows, err := p.source.ScrapeVisibleRows(ctx)
	switch {
	case errors.Is(err, ErrSourceUnavailable):
		result.SourceMissing = true
		log.Warn().Msg("War log source not found; keeping existing log")
	case err != nil:
		result.SourceMissing = true
		log.Warn().Err(err).Msg("Scrape failed; keeping existing log")
	}
	result.ParsedRows = len(rows)

	merge := MergeLogs(p.session.Log, rows)
	result.SourceEmpty = merge.BatchEmpty
	result.NewRecords = merge.NewRecords
	p.session.Log = merge.Log

	resolver := NewRosterResolver(p.session.Rosters)
	result.Reattributed = resolver.ReattributeLog(p.session.Log)

	if !merge.BatchEmpty || result.Reattributed > 0 {
		if err := p.persistSnapshot(now); err != nil {
			return nil, err
		}
	}

	p.session.Recompute()
	result.TotalRecords = len(p.session.Log)
	result.MissingGuilds = p.session.MissingGuilds()
	result.StaleGuilds = p.session.StaleGuilds(p.config.StaleDays, now)

	p.publish()

	log.Info().
		Str("date", result.Date).
		Int("parsed_rows", result.ParsedRows).
		Int("new_records", result.NewRecords).
		Int("reattributed", result.Reattributed).
		Int("total_records", result.TotalRecords).
		Int("missing_guilds", len(result.MissingGuilds)).
		Msg("Completed collection cycle")

	return result, nil
}

// CollectMissingGuilds fetches rosters for every guild the log references
// but the store lacks, plus any stale ones. A confirmed "guild not found"
// purges the stored roster; after the sweep the whole log is reattributed
// against the updated store.
func (p *Processor) CollectMissingGuilds(ctx context.Context) (*RosterCollectionResult, error) {
	if !p.mu.TryLock() {
		return nil, ErrCycleInFlight
	}
	defer p.mu.Unlock()

	now := p.now()
	if err := p.ensureSession(p.config.Today(now)); err != nil {
		return nil, err
	}

	needed := p.session.MissingGuilds()
	for _, name := range p.session.StaleGuilds(p.config.StaleDays, now) {
		if !contains(needed, name) {
			needed = append(needed, name)
		}
	}

	result := &RosterCollectionResult{Requested: needed}
	for _, name := range needed {
		roster, err := p.guilds.FetchRoster(ctx, name)
		switch {
		case errors.Is(err, ErrGuildNotFound):
			if _, ok := p.session.Rosters[name]; ok {
				delete(p.session.Rosters, name)
			}
			result.Purged++
			log.Info().Str("guild", name).Msg("Guild confirmed nonexistent; purged from roster store")
		case err != nil:
			result.Failed++
			log.Warn().Err(err).Str("guild", name).Msg("Roster collection failed")
		default:
			roster.Name = name
			if roster.CollectedAt.IsZero() {
				roster.CollectedAt = now
			}
			p.session.Rosters[name] = roster
			result.Collected++
			log.Info().Str("guild", name).Int("members", len(roster.Members)).Msg("Collected guild roster")
		}
	}

	if result.Collected > 0 || result.Purged > 0 {
		if err := p.store.SaveRosters(p.session.Rosters); err != nil {
			return nil, fmt.Errorf("persisting roster store: %w", err)
		}
		resolver := NewRosterResolver(p.session.Rosters)
		if resolver.ReattributeLog(p.session.Log) > 0 {
			if err := p.persistSnapshot(now); err != nil {
				return nil, err
			}
		}
		p.session.Recompute()
		p.publish()
	}

	return result, nil
}

// ResetAllData drops both persisted records and the in-memory session.
func (p *Processor) ResetAllData() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.Reset(); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	p.session = nil
	log.Info().Msg("All tracker data reset")
	return nil
}

// HasRosters reports whether any usable roster data exists. The scheduler
// halts periodic collection when this is false.
func (p *Processor) HasRosters() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		return len(p.session.Rosters) > 0
	}
	rosters, err := p.store.LoadRosters()
	if err != nil {
		return false
	}
	return len(rosters) > 0
}

// PlayerCounters returns the guild → player → counters mapping.
func (p *Processor) PlayerCounters() map[string]map[string]*app.PlayerCounters {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return map[string]map[string]*app.PlayerCounters{}
	}
	return p.session.Counters()
}

// VillageOwnership returns the per-village ownership state.
func (p *Processor) VillageOwnership() map[string]*app.VillageOwnership {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return map[string]*app.VillageOwnership{}
	}
	return p.session.Ownership()
}

// VillageBattles returns the per-village battle summaries.
func (p *Processor) VillageBattles() map[string]*app.VillageBattle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return map[string]*app.VillageBattle{}
	}
	return p.session.Battles()
}

// Statistics returns the aggregate leaderboard surface.
func (p *Processor) Statistics() *app.WarStatistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return &app.WarStatistics{}
	}
	return p.session.Statistics()
}

// GuildTimeline returns the chronological action feed for one guild.
func (p *Processor) GuildTimeline(guild string) []app.TimelineEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	return p.session.GuildTimeline(guild)
}

// VillageTimeline returns the chronological action feed for one village.
func (p *Processor) VillageTimeline(village string) []app.TimelineEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	return p.session.VillageTimeline(village)
}

// MissingGuilds lists guilds referenced in the log but absent from the
// roster store.
func (p *Processor) MissingGuilds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	return p.session.MissingGuilds()
}

// StaleGuilds lists rosters older than the given number of days.
func (p *Processor) StaleGuilds(days int) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	return p.session.StaleGuilds(days, p.now())
}

// ensureSession loads or rolls the per-day session. A stored snapshot whose
// date or schema version does not match is discarded, never trusted: logs
// must not span midnight.
func (p *Processor) ensureSession(date string) error {
	if p.session != nil && p.session.Date == date {
		return nil
	}

	snapshot, err := p.store.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("loading daily snapshot: %w", err)
	}

	var logs []app.EventRecord
	switch {
	case snapshot == nil:
	case snapshot.SchemaVersion != app.SnapshotSchemaVersion:
		log.Info().
			Int("stored_version", snapshot.SchemaVersion).
			Msg("Discarding snapshot with mismatched schema version")
	case snapshot.Date != date:
		log.Info().
			Str("stored_date", snapshot.Date).
			Str("stored_day", snapshot.DayOfWeek).
			Str("today", date).
			Msg("Discarding snapshot from a previous day")
	default:
		logs = snapshot.Logs
	}

	rosters, err := p.store.LoadRosters()
	if err != nil {
		return fmt.Errorf("loading roster store: %w", err)
	}

	p.session = NewSession(date, logs, rosters)
	log.Info().
		Str("date", date).
		Int("restored_records", len(logs)).
		Int("rosters", len(rosters)).
		Msg("Session ready")
	return nil
}

func (p *Processor) persistSnapshot(now time.Time) error {
	snapshot := &app.DailySnapshot{
		SchemaVersion: app.SnapshotSchemaVersion,
		Date:          p.session.Date,
		DayOfWeek:     p.config.DayOfWeek(now),
		Logs:          p.session.Log,
	}
	if err := p.store.SaveSnapshot(snapshot); err != nil {
		return fmt.Errorf("persisting daily snapshot: %w", err)
	}
	return nil
}

func (p *Processor) publish() {
	if len(p.presenters) == 0 {
		return
	}
	view := &DashboardView{
		Date:          p.session.Date,
		Counters:      p.session.Counters(),
		Ownership:     p.session.Ownership(),
		Battles:       p.session.Battles(),
		Statistics:    p.session.Statistics(),
		MissingGuilds: p.session.MissingGuilds(),
		StaleGuilds:   p.session.StaleGuilds(p.config.StaleDays, p.now()),
		TotalEvents:   len(p.session.Log),
	}
	for _, presenter := range p.presenters {
		presenter.Publish(view)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
