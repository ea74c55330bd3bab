package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL: one writer plus readers (a `journal list` may run while the editor is open).
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			node_id TEXT NOT NULL DEFAULT '',
			label TEXT NOT NULL DEFAULT '',
			payload_json TEXT NOT NULL DEFAULT '',
			issued_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_events_issued ON events(issued_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, ev Event) error {
	if err := validate(ev); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events(event_id, session_id, seq, type, node_id, label, payload_json, issued_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.SessionID, ev.Seq, ev.Type, ev.NodeID, ev.Label, string(ev.Payload), ev.IssuedAt.UnixMilli(),
	)
	return err
}

func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Event, error) {
	q := `SELECT event_id, session_id, seq, type, node_id, label, payload_json, issued_at_unixms FROM events`
	var where []string
	var args []any
	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY issued_at_unixms, session_id, seq"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var ev Event
		var payload string
		var ms int64
		if err := rows.Scan(&ev.EventID, &ev.SessionID, &ev.Seq, &ev.Type, &ev.NodeID, &ev.Label, &payload, &ms); err != nil {
			return nil, err
		}
		if payload != "" {
			ev.Payload = []byte(payload)
		}
		ev.IssuedAt = time.UnixMilli(ms).UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return applyLimit(out, f.Limit), nil
}

func (s *SQLiteStore) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, MIN(issued_at_unixms), COUNT(*)
		FROM events
		GROUP BY session_id
		ORDER BY MIN(issued_at_unixms), session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SessionInfo{}
	for rows.Next() {
		var si SessionInfo
		var ms int64
		if err := rows.Scan(&si.SessionID, &ms, &si.Events); err != nil {
			return nil, err
		}
		si.StartedAt = time.UnixMilli(ms).UTC()
		out = append(out, si)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
