package mocks

import (
	"lanis_war_tracker/internal/app"
)

// MockKVStore is an in-memory test double for the persistence layer.
type MockKVStore struct {
	Snapshot *app.DailySnapshot
	Rosters  app.RosterStore

	// Errors to return
	LoadSnapshotErr error
	SaveSnapshotErr error
	LoadRostersErr  error
	SaveRostersErr  error
	ResetErr        error

	// Call tracking
	SnapshotSaves int
	RosterSaves   int
	Resets        int
}

func NewMockKVStore() *MockKVStore {
	return &MockKVStore{Rosters: make(app.RosterStore)}
}

func (m *MockKVStore) LoadSnapshot() (*app.DailySnapshot, error) {
	if m.LoadSnapshotErr != nil {
		return nil, m.LoadSnapshotErr
	}
	return m.Snapshot, nil
}

func (m *MockKVStore) SaveSnapshot(snapshot *app.DailySnapshot) error {
	if m.SaveSnapshotErr != nil {
		return m.SaveSnapshotErr
	}
	m.Snapshot = snapshot
	m.SnapshotSaves++
	return nil
}

func (m *MockKVStore) LoadRosters() (app.RosterStore, error) {
	if m.LoadRostersErr != nil {
		return nil, m.LoadRostersErr
	}
	if m.Rosters == nil {
		return make(app.RosterStore), nil
	}
	return m.Rosters, nil
}

func (m *MockKVStore) SaveRosters(rosters app.RosterStore) error {
	if m.SaveRostersErr != nil {
		return m.SaveRostersErr
	}
	m.Rosters = rosters
	m.RosterSaves++
	return nil
}

func (m *MockKVStore) Reset() error {
	if m.ResetErr != nil {
		return m.ResetErr
	}
	m.Snapshot = nil
	m.Rosters = make(app.RosterStore)
	m.Resets++
	return nil
}
