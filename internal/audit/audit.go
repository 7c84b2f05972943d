// Package audit implements the append-only audit trail for the draft
// engine, backed by SQLite.
//
// The trail exists for the security boundary of the drafting flow:
// finalize-time array overrides are silently discarded by design, so
// the discard has to be recorded somewhere an operator can inspect.
// Draft lifecycle events and item finalizations land here too.
//
// The trail is optional infrastructure: every method is nil-safe, so a
// failed open degrades drafting to "no audit" instead of "no server".
package audit

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Event kinds recorded by the trail.
const (
	KindDraftCreated   = "draft_created"
	KindDraftDeleted   = "draft_deleted"
	KindDraftFinalized = "draft_finalized"
	KindItemFinalized  = "item_finalized"
	KindTamperDiscard  = "tamper_discard"
)

// Event is one audit trail entry.
type Event struct {
	ID          string `json:"id"`
	DraftID     string `json:"draft_id"`
	Kind        string `json:"kind"`
	Field       string `json:"field,omitempty"`
	Detail      string `json:"detail,omitempty"`
	PayloadHash string `json:"payload_hash,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Config holds audit trail configuration.
type Config struct {
	DataDir string
}

// DefaultConfig stores the audit database under ~/.quill.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".quill")}
}

// Trail is the SQLite-backed audit log.
type Trail struct {
	db  *sql.DB
	log *zap.Logger
}

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Open creates the data directory if needed, opens SQLite with WAL
// mode, and runs migrations.
func Open(cfg Config, log *zap.Logger) (*Trail, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("audit: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "audit.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("audit: pragma %q: %w", p, err)
		}
	}

	t := &Trail{db: db, log: log}
	if err := t.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: migration: %w", err)
	}
	return t, nil
}

func (t *Trail) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS events (
			id           TEXT PRIMARY KEY,
			draft_id     TEXT NOT NULL,
			kind         TEXT NOT NULL,
			field        TEXT,
			detail       TEXT,
			payload_hash TEXT,
			created_at   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_events_draft ON events(draft_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_events_kind  ON events(kind);
	`
	_, err := t.db.Exec(schema)
	return err
}

// Close closes the underlying database connection. Nil-safe.
func (t *Trail) Close() error {
	if t == nil {
		return nil
	}
	return t.db.Close()
}

// Record inserts an event, filling in id and created_at. Nil-safe and
// best-effort: failures are logged, never propagated to the drafting
// flow.
func (t *Trail) Record(e Event) {
	if t == nil {
		return
	}
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	_, err := t.db.Exec(
		`INSERT INTO events (id, draft_id, kind, field, detail, payload_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.DraftID, e.Kind, e.Field, e.Detail, e.PayloadHash, e.CreatedAt,
	)
	if err != nil {
		t.log.Warn("recording audit event", zap.String("kind", e.Kind), zap.Error(err))
	}
}

// RecordTamper records a discarded finalize-time array override. The
// attempted payload is stored as a hash, not verbatim, so the audit trail
// proves the attempt happened without becoming a second copy of
// untrusted data.
func (t *Trail) RecordTamper(draftID, field string, attempted any) {
	if t == nil {
		return
	}
	t.Record(Event{
		DraftID:     draftID,
		Kind:        KindTamperDiscard,
		Field:       field,
		Detail:      fmt.Sprintf("finalize payload carried a conflicting value for %q; discarded in favor of per-item data", field),
		PayloadHash: hashPayload(attempted),
	})
}

// ByDraft returns the events for a draft, oldest first.
func (t *Trail) ByDraft(draftID string, limit int) ([]Event, error) {
	if t == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := t.db.Query(
		`SELECT id, draft_id, kind, COALESCE(field, ''), COALESCE(detail, ''), COALESCE(payload_hash, ''), created_at
		 FROM events WHERE draft_id = ? ORDER BY created_at ASC, id ASC LIMIT ?`,
		draftID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.DraftID, &e.Kind, &e.Field, &e.Detail, &e.PayloadHash, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByKind returns how many events of the given kind exist.
func (t *Trail) CountByKind(kind string) (int, error) {
	if t == nil {
		return 0, nil
	}
	var n int
	err := t.db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = ?`, kind).Scan(&n)
	return n, err
}

// hashPayload produces a stable sha256 of the JSON form of a payload.
func hashPayload(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", v))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
