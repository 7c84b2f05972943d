package audit

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync/atomic"
	"testing"
)

func openTestTrail(t *testing.T) *Trail {
	t.Helper()
	trail, err := Open(Config{DataDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { trail.Close() })
	return trail
}

// brokenConn fails every statement, so Open dies on the first pragma.
type brokenConn struct {
	closed *atomic.Int32
}

func (c *brokenConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("statement refused")
}
func (c *brokenConn) Begin() (driver.Tx, error) { return nil, errors.New("tx refused") }
func (c *brokenConn) Close() error {
	c.closed.Add(1)
	return nil
}

type brokenDriver struct {
	closed atomic.Int32
}

func (d *brokenDriver) Open(string) (driver.Conn, error) {
	return &brokenConn{closed: &d.closed}, nil
}

func TestOpen_ClosesHandleOnSetupFailure(t *testing.T) {
	drv := &brokenDriver{}
	sql.Register("audit-broken", drv)

	orig := openDB
	openDB = func(_, dsn string) (*sql.DB, error) { return sql.Open("audit-broken", dsn) }
	t.Cleanup(func() { openDB = orig })

	trail, err := Open(Config{DataDir: t.TempDir()}, nil)
	if err == nil {
		trail.Close()
		t.Fatal("Open should fail when pragmas cannot run")
	}
	if drv.closed.Load() == 0 {
		t.Error("Open left the database handle open after a setup failure")
	}
}

func TestRecord_AndByDraft(t *testing.T) {
	trail := openTestTrail(t)

	trail.Record(Event{DraftID: "req-a-1", Kind: KindDraftCreated})
	trail.Record(Event{DraftID: "req-a-1", Kind: KindItemFinalized, Field: "acceptance_criteria"})
	trail.Record(Event{DraftID: "req-b-1", Kind: KindDraftCreated})

	events, err := trail.ByDraft("req-a-1", 0)
	if err != nil {
		t.Fatalf("ByDraft failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	kinds := map[string]bool{}
	for _, e := range events {
		if e.ID == "" || e.CreatedAt == "" {
			t.Errorf("event missing id or timestamp: %+v", e)
		}
		if e.DraftID != "req-a-1" {
			t.Errorf("event for wrong draft: %+v", e)
		}
		kinds[e.Kind] = true
	}
	if !kinds[KindDraftCreated] || !kinds[KindItemFinalized] {
		t.Errorf("kinds = %v, want both created and item_finalized", kinds)
	}
}

func TestByDraft_Limit(t *testing.T) {
	trail := openTestTrail(t)
	for i := 0; i < 5; i++ {
		trail.Record(Event{DraftID: "req-a-1", Kind: KindDraftCreated})
	}

	events, err := trail.ByDraft("req-a-1", 2)
	if err != nil {
		t.Fatalf("ByDraft failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("events = %d, want 2", len(events))
	}
}

func TestByDraft_NoEvents(t *testing.T) {
	trail := openTestTrail(t)
	events, err := trail.ByDraft("req-none-1", 0)
	if err != nil {
		t.Fatalf("ByDraft failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %d, want 0", len(events))
	}
}

func TestRecordTamper_HashesPayload(t *testing.T) {
	trail := openTestTrail(t)

	payload := []any{map[string]any{"criterion": "forged"}}
	trail.RecordTamper("req-a-1", "acceptance_criteria", payload)
	trail.RecordTamper("req-a-1", "acceptance_criteria", payload)

	events, err := trail.ByDraft("req-a-1", 0)
	if err != nil {
		t.Fatalf("ByDraft failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	for _, e := range events {
		if e.Kind != KindTamperDiscard {
			t.Errorf("Kind = %q, want %q", e.Kind, KindTamperDiscard)
		}
		if e.Field != "acceptance_criteria" {
			t.Errorf("Field = %q", e.Field)
		}
		if len(e.PayloadHash) != 64 {
			t.Errorf("PayloadHash = %q, want a sha256 hex digest", e.PayloadHash)
		}
		if e.Detail == "" {
			t.Error("Detail should describe the discard")
		}
	}
	if events[0].PayloadHash != events[1].PayloadHash {
		t.Error("identical payloads should hash identically")
	}
}

func TestCountByKind(t *testing.T) {
	trail := openTestTrail(t)

	trail.Record(Event{DraftID: "req-a-1", Kind: KindDraftCreated})
	trail.Record(Event{DraftID: "req-b-1", Kind: KindDraftCreated})
	trail.RecordTamper("req-a-1", "acceptance_criteria", "x")

	n, err := trail.CountByKind(KindDraftCreated)
	if err != nil {
		t.Fatalf("CountByKind failed: %v", err)
	}
	if n != 2 {
		t.Errorf("created count = %d, want 2", n)
	}

	n, err = trail.CountByKind(KindTamperDiscard)
	if err != nil {
		t.Fatalf("CountByKind failed: %v", err)
	}
	if n != 1 {
		t.Errorf("tamper count = %d, want 1", n)
	}
}

func TestTrail_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	trail, err := Open(Config{DataDir: dir}, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	trail.Record(Event{DraftID: "req-a-1", Kind: KindDraftFinalized})
	if err := trail.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(Config{DataDir: dir}, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	events, err := reopened.ByDraft("req-a-1", 0)
	if err != nil {
		t.Fatalf("ByDraft failed: %v", err)
	}
	if len(events) != 1 || events[0].Kind != KindDraftFinalized {
		t.Errorf("events after reopen = %+v", events)
	}
}

func TestNilTrail_IsSafe(t *testing.T) {
	var trail *Trail

	trail.Record(Event{DraftID: "req-a-1", Kind: KindDraftCreated})
	trail.RecordTamper("req-a-1", "articles", nil)

	events, err := trail.ByDraft("req-a-1", 0)
	if err != nil || events != nil {
		t.Errorf("nil trail ByDraft = (%v, %v), want (nil, nil)", events, err)
	}
	n, err := trail.CountByKind(KindDraftCreated)
	if err != nil || n != 0 {
		t.Errorf("nil trail CountByKind = (%d, %v), want (0, nil)", n, err)
	}
	if err := trail.Close(); err != nil {
		t.Errorf("nil trail Close = %v, want nil", err)
	}
}
