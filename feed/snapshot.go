package feed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"karm/config"
)

// ErrNotRecorded is returned on replay when payload for URL was never stored.
var ErrNotRecorded = errors.New("payload is not in snapshot")

const snapshotSchema = `CREATE TABLE IF NOT EXISTS payloads (
	url        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL
)`

// Snapshot keeps fetched payloads in SQLite database so a run could be
// reproduced later without network access.
type Snapshot struct {
	conn *sqlite.Conn
	mode config.CacheMode
}

// OpenSnapshot opens (creating when recording) snapshot database. Returns nil
// snapshot when caching is off.
func OpenSnapshot(cfg *config.CacheConfig) (*Snapshot, error) {
	var flags sqlite.OpenFlags
	switch cfg.Mode {
	case config.CacheModeOff:
		return nil, nil
	case config.CacheModeRecord:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("unable to create snapshot directory: %w", err)
		}
		flags = sqlite.OpenReadWrite | sqlite.OpenCreate
	case config.CacheModeReplay:
		flags = sqlite.OpenReadOnly
	default:
		return nil, fmt.Errorf("unsupported cache mode %s", cfg.Mode)
	}

	conn, err := sqlite.OpenConn(cfg.Path, flags)
	if err != nil {
		return nil, fmt.Errorf("unable to open snapshot '%s': %w", cfg.Path, err)
	}
	if cfg.Mode == config.CacheModeRecord {
		if err := sqlitex.ExecuteTransient(conn, snapshotSchema, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("unable to prepare snapshot schema: %w", err)
		}
	}
	return &Snapshot{conn: conn, mode: cfg.Mode}, nil
}

// Replaying reports whether network must not be used.
func (s *Snapshot) Replaying() bool {
	return s != nil && s.mode == config.CacheModeReplay
}

// Store saves payload for url, replacing previous one.
func (s *Snapshot) Store(url string, body []byte) error {
	if s == nil || s.mode != config.CacheModeRecord {
		return nil
	}
	err := sqlitex.Execute(s.conn,
		`INSERT INTO payloads (url, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		&sqlitex.ExecOptions{Args: []any{url, body, time.Now().Unix()}})
	if err != nil {
		return fmt.Errorf("unable to store payload for '%s': %w", url, err)
	}
	return nil
}

// Load returns stored payload for url or ErrNotRecorded.
func (s *Snapshot) Load(url string) ([]byte, error) {
	var (
		body  []byte
		found bool
	)
	err := sqlitex.Execute(s.conn, `SELECT body FROM payloads WHERE url = ?`,
		&sqlitex.ExecOptions{
			Args: []any{url},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				body = make([]byte, stmt.ColumnLen(0))
				stmt.ColumnBytes(0, body)
				found = true
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to read payload for '%s': %w", url, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", url, ErrNotRecorded)
	}
	return body, nil
}

func (s *Snapshot) Close() error {
	if s == nil {
		return nil
	}
	return s.conn.Close()
}
