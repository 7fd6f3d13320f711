package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lanis_war_tracker/internal/app"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Keys of the two logical records.
const (
	snapshotKey = "war_logs"
	rosterKey   = "guild_info"
)

// Store is the SQLite-backed key-value store holding the daily log snapshot
// and the roster store. Malformed stored values are cleared and reported as
// absent, never as errors: a corrupt snapshot must not take the tracker down.
type Store struct {
	conn *sql.DB
	loc  *time.Location
}

// Open opens (or creates) the database at the given path and applies the
// schema. Use ":memory:" for an ephemeral store. Reloaded snapshot
// timestamps are localized to loc, the game zone, so restored events line
// up with freshly scraped ones regardless of the host's TZ.
func Open(path string, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.Local
	}
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{conn: conn, loc: loc}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// LoadSnapshot returns the stored daily snapshot, or nil when absent.
// Undecodable state is purged and treated as absent.
func (s *Store) LoadSnapshot() (*app.DailySnapshot, error) {
	raw, err := s.get(snapshotKey)
	if err != nil || raw == "" {
		return nil, err
	}
	var snapshot app.DailySnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		log.Warn().Err(err).Msg("Stored daily snapshot is malformed; discarding")
		return nil, s.delete(snapshotKey)
	}
	snapshot.Localize(s.loc)
	return &snapshot, nil
}

// SaveSnapshot writes the daily snapshot.
func (s *Store) SaveSnapshot(snapshot *app.DailySnapshot) error {
	return s.putJSON(snapshotKey, snapshot)
}

// LoadRosters returns the roster store, empty when absent. Undecodable
// state is purged and treated as absent.
func (s *Store) LoadRosters() (app.RosterStore, error) {
	raw, err := s.get(rosterKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return make(app.RosterStore), nil
	}
	var rosters app.RosterStore
	if err := json.Unmarshal([]byte(raw), &rosters); err != nil {
		log.Warn().Err(err).Msg("Stored roster data is malformed; discarding")
		return make(app.RosterStore), s.delete(rosterKey)
	}
	return rosters, nil
}

// SaveRosters writes the roster store.
func (s *Store) SaveRosters(rosters app.RosterStore) error {
	return s.putJSON(rosterKey, rosters)
}

// Reset drops both logical records.
func (s *Store) Reset() error {
	if err := s.delete(snapshotKey); err != nil {
		return err
	}
	return s.delete(rosterKey)
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	_, err = s.conn.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

func (s *Store) delete(key string) error {
	if _, err := s.conn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
