package mocks

import (
	"context"
	"fmt"

	"lanis_war_tracker/internal/app"
)

// MockGuildSource is a test double for the roster scraper.
type MockGuildSource struct {
	// Rosters to return, keyed by guild name
	Rosters map[string]*app.GuildRoster
	// Errors to return per guild (e.g. processing.ErrGuildNotFound)
	Errors map[string]error

	// Call tracking
	Fetched []string
}

func NewMockGuildSource() *MockGuildSource {
	return &MockGuildSource{
		Rosters: make(map[string]*app.GuildRoster),
		Errors:  make(map[string]error),
	}
}

func (m *MockGuildSource) FetchRoster(ctx context.Context, guildName string) (*app.GuildRoster, error) {
	m.Fetched = append(m.Fetched, guildName)
	if err, ok := m.Errors[guildName]; ok {
		return nil, err
	}
	if roster, ok := m.Rosters[guildName]; ok {
		return roster, nil
	}
	return nil, fmt.Errorf("no mock roster configured for %q", guildName)
}
