package mocks

import (
	"context"
	"sync"

	"lanis_war_tracker/internal/app"
)

// MockLogSource is a test double for the war log scraper. It is safe for
// concurrent use so scheduler tests can poll call counts.
type MockLogSource struct {
	mu sync.Mutex

	// Rows to return from the next scrape
	Rows []app.EventRecord
	// Err to return instead
	Err error

	scrapeCalls int
}

func NewMockLogSource() *MockLogSource {
	return &MockLogSource{}
}

func (m *MockLogSource) ScrapeVisibleRows(ctx context.Context) ([]app.EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrapeCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rows, nil
}

// ScrapeCalls reports how many times the source was scraped.
func (m *MockLogSource) ScrapeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scrapeCalls
}
