package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite keeps segments in a single table keyed by player and segment name.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; sessions serialise through the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS segments (
		player TEXT NOT NULL,
		name TEXT NOT NULL,
		tick INTEGER NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (player, name)
	);`)
	if err != nil {
		return fmt.Errorf("create segments: %w", err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, player string) (*Memory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, data FROM segments WHERE player = ?`, player)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	m := NewMemory()
	for rows.Next() {
		var name string
		var data []byte
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		if err := decodeSegment(m, Segment(name), data); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}
	ensureMaps(m)
	return m, nil
}

// Save writes all dirty segments in one transaction.
func (s *SQLite) Save(ctx context.Context, player string, tick int, m *Memory) error {
	dirty := m.Dirty()
	if len(dirty) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO segments (player, name, tick, data) VALUES (?, ?, ?, ?)
		ON CONFLICT(player, name) DO UPDATE SET tick = excluded.tick, data = excluded.data`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, seg := range dirty {
		data, err := encodeSegment(m, seg)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, player, string(seg), tick, data); err != nil {
			return fmt.Errorf("write %s: %w", seg, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	m.ClearDirty()
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
