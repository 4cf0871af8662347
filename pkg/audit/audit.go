// Package audit keeps an append-only record of registry operations in
// a local SQLite database. Recording is best-effort: a broken database
// must never block a peer operation.
package audit

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"wg-hub/pkg/model"
)

// Log wraps the audit database. A nil *Log is a valid no-op sink.
type Log struct {
	db *sql.DB
}

// Open creates the database (and its directory) if needed.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS audit_log(
		actor TEXT, action TEXT, target TEXT, detail TEXT, ts INTEGER);
		CREATE INDEX IF NOT EXISTS idx_audit_log_ts ON audit_log(ts);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Log{db: db}, nil
}

// Record stores one entry. Failures are logged and swallowed.
func (l *Log) Record(e model.AuditEntry) {
	if l == nil || l.db == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	_, err := l.db.Exec(`INSERT INTO audit_log(actor, action, target, detail, ts) VALUES(?, ?, ?, ?, ?)`,
		e.Actor, e.Action, e.Target, e.Detail, e.Timestamp.Unix())
	if err != nil {
		log.Printf("audit record failed: %v", err)
	}
}

// List returns the most recent entries, newest first.
func (l *Log) List(limit int) ([]model.AuditEntry, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := l.db.Query(`SELECT actor, action, target, detail, ts FROM audit_log ORDER BY ts DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var ts int64
		if err := rows.Scan(&e.Actor, &e.Action, &e.Target, &e.Detail, &ts); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
