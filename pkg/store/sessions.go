package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/pgzip"
	"github.com/rs/xid"

	"github.com/retro-plastics/squid/pkg/snet"
)

// Session is one row of link_sessions: a connect/disconnect lifecycle plus
// its final stats snapshot.
type Session struct {
	ID        string
	LinkName  string
	StartedAt time.Time
	EndedAt   sql.NullTime
	EndReason string
	Stats     snet.Stats
}

// BeginSession inserts a new session row keyed by a fresh xid — a
// k-sortable, lock-free id generator — and returns the id to pass to
// EndSession later.
func (db *DB) BeginSession(ctx context.Context, linkName string) (string, error) {
	id := xid.New().String()
	_, err := db.ExecContext(ctx, `
		INSERT INTO link_sessions (id, link_name, started_at)
		VALUES (?, ?, datetime('now'))
	`, id, linkName)
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	return id, nil
}

// EndSession records a session's end reason and final stats snapshot.
func (db *DB) EndSession(ctx context.Context, id string, reason string, stats snet.Stats) error {
	_, err := db.ExecContext(ctx, `
		UPDATE link_sessions
		SET ended_at = datetime('now'), end_reason = ?,
		    rx_frames = ?, tx_frames = ?, crc_errors = ?,
		    duplicates = ?, drops = ?, timeouts = ?, resends = ?
		WHERE id = ?
	`, reason, stats.RxFrames, stats.TxFrames, stats.CRCErrors,
		stats.Duplicates, stats.Drops, stats.Timeouts, stats.Resends, id)
	if err != nil {
		return fmt.Errorf("end session %s: %w", id, err)
	}
	return nil
}

// RecentSessions returns up to limit most-recently-started sessions for
// linkName, newest first.
func (db *DB) RecentSessions(ctx context.Context, linkName string, limit int) ([]Session, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, link_name, started_at, ended_at, end_reason,
		       rx_frames, tx_frames, crc_errors, duplicates, drops, timeouts, resends
		FROM link_sessions
		WHERE link_name = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, linkName, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(
			&s.ID, &s.LinkName, &s.StartedAt, &s.EndedAt, &s.EndReason,
			&s.Stats.RxFrames, &s.Stats.TxFrames, &s.Stats.CRCErrors,
			&s.Stats.Duplicates, &s.Stats.Drops, &s.Stats.Timeouts, &s.Stats.Resends,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// EventLog appends newline-delimited JSON session events to a
// gzip-compressed file using a parallel gzip writer. It is safe for
// concurrent Append calls.
type EventLog struct {
	mu sync.Mutex
	f  *os.File
	gz *pgzip.Writer
}

// OpenEventLog opens (creating if needed) a gzip-compressed append-only
// event log at path.
func OpenEventLog(path string) (*EventLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	gz, err := pgzip.NewWriterLevel(f, pgzip.BestSpeed)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("init gzip writer: %w", err)
	}
	return &EventLog{f: f, gz: gz}, nil
}

// sessionEvent is one JSONL record written to the event log.
type sessionEvent struct {
	Time      time.Time `json:"time"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	LinkUp    bool      `json:"link_up"`
	Stats     snet.Stats `json:"stats"`
}

// Append writes one JSON event line and flushes it through to the gzip
// stream so a reader tailing the file sees it promptly.
func (l *EventLog) Append(sessionID, kind string, linkUp bool, stats snet.Stats) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line, err := json.Marshal(sessionEvent{
		Time:      time.Now(),
		SessionID: sessionID,
		Kind:      kind,
		LinkUp:    linkUp,
		Stats:     stats,
	})
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}
	line = append(line, '\n')
	if _, err := l.gz.Write(line); err != nil {
		return fmt.Errorf("write session event: %w", err)
	}
	return l.gz.Flush()
}

// Close flushes and closes the underlying gzip stream and file.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.gz.Close(); err != nil {
		_ = l.f.Close()
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return l.f.Close()
}
