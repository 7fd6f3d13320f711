package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lanis_war_tracker/internal/app"
	"lanis_war_tracker/internal/config"
	"lanis_war_tracker/internal/processing"
)

// rosterDrop is the per-guild snapshot file written by the roster scraper.
// NotFound is set when the game reported no such guild, so the entry can be
// purged instead of retried forever.
type rosterDrop struct {
	NotFound    bool   `json:"not_found"`
	Master      string `json:"master"`
	Level       int    `json:"level"`
	Description string `json:"description"`
	Members     []struct {
		Nickname   string `json:"nickname"`
		Reputation int    `json:"reputation"`
		Rank       string `json:"rank"`
	} `json:"members"`
}

// FileGuildSource reads roster snapshots from a drop directory, one JSON
// file per guild named "<guild>.json". A missing file is a transient
// failure: the scraper may simply not have produced the drop yet. Only an
// explicit not-found marker in the drop reports the guild as gone.
type FileGuildSource struct {
	cfg      *app.Config
	now      func() time.Time
	readFile func(string) ([]byte, error)
	retry    config.RetryConfig
}

func NewFileGuildSource(cfg *app.Config) *FileGuildSource {
	return &FileGuildSource{
		cfg:      cfg,
		now:      time.Now,
		readFile: os.ReadFile,
		retry:    config.DefaultResilienceConfig.RosterFetch,
	}
}

func (s *FileGuildSource) FetchRoster(ctx context.Context, guildName string) (*app.GuildRoster, error) {
	ctx, cancel := context.WithTimeout(ctx, s.retry.Timeout)
	defer cancel()

	path := filepath.Join(s.cfg.RosterDropDir, guildName+".json")
	data, err := readDrop(ctx, s.readFile, path, s.retry)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("roster drop for %q not present yet: %w", guildName, err)
	}
	if err != nil {
		return nil, fmt.Errorf("read roster drop for %q: %w", guildName, err)
	}

	var drop rosterDrop
	if err := json.Unmarshal(data, &drop); err != nil {
		return nil, fmt.Errorf("decode roster drop for %q: %w", guildName, err)
	}
	if drop.NotFound {
		return nil, processing.ErrGuildNotFound
	}

	roster := &app.GuildRoster{
		Name:        guildName,
		Master:      drop.Master,
		Level:       drop.Level,
		Description: drop.Description,
		CollectedAt: s.now(),
	}
	for _, m := range drop.Members {
		roster.Members = append(roster.Members, app.GuildMember{
			Nickname:   m.Nickname,
			Reputation: m.Reputation,
			Rank:       m.Rank,
		})
	}
	return roster, nil
}
