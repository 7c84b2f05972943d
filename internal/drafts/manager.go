package drafts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/sdd-quill/internal/entity"
	"github.com/HendryAvila/sdd-quill/internal/steps"
	"github.com/HendryAvila/sdd-quill/internal/validation"
)

// Config holds draft manager configuration.
type Config struct {
	DataDir       string
	TTL           time.Duration
	SweepInterval time.Duration
}

// DefaultConfig returns the default configuration: drafts live under
// ~/.quill/drafts, expire after 24 hours, and are swept hourly.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:       filepath.Join(home, ".quill", "drafts"),
		TTL:           24 * time.Hour,
		SweepInterval: time.Hour,
	}
}

// Manager owns the lifecycle of draft records: create, fetch, update,
// delete, list, expiry, and persistence. Drafts are independent of each
// other; the mutex only guards the shared map against the sweep
// goroutine. There is no per-draft versioning; concurrent mutation of
// the same draft id is last-write-wins.
type Manager struct {
	mu     sync.Mutex
	drafts map[string]*Draft
	store  *fileStore
	cfg    Config
	log    *zap.Logger

	sweepTicker *time.Ticker
	sweepDone   chan struct{}
	destroyOnce sync.Once
}

// NewManager creates a Manager, scans the persisted store, loads
// non-expired drafts into memory, deletes files of already-expired
// drafts, and starts the recurring expiry sweep. Call Destroy on
// shutdown, otherwise the sweep timer dangles.
func NewManager(cfg Config, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}

	store, err := newFileStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		drafts:    make(map[string]*Draft),
		store:     store,
		cfg:       cfg,
		log:       log,
		sweepDone: make(chan struct{}),
	}

	loaded, err := store.loadAll()
	if err != nil {
		return nil, err
	}
	now := timeNow()
	for _, d := range loaded {
		if d.Expired(now) {
			if err := store.delete(d.ID); err != nil {
				log.Warn("removing expired draft file", zap.String("draft_id", d.ID), zap.Error(err))
			}
			continue
		}
		m.drafts[d.ID] = d
	}

	m.sweepTicker = time.NewTicker(cfg.SweepInterval)
	go m.sweepLoop()

	return m, nil
}

// Destroy stops the expiry sweep. Idempotent; after Destroy the manager
// still serves reads and writes but no longer purges on a timer.
func (m *Manager) Destroy() {
	m.destroyOnce.Do(func() {
		m.sweepTicker.Stop()
		close(m.sweepDone)
	})
}

// sweepLoop purges expired drafts on the configured interval until
// Destroy is called.
func (m *Manager) sweepLoop() {
	for {
		select {
		case <-m.sweepDone:
			return
		case <-m.sweepTicker.C:
			n := m.Sweep()
			if n > 0 {
				m.log.Info("expired drafts purged", zap.Int("count", n))
			}
		}
	}
}

// Sweep removes every expired draft from memory and disk, returning the
// number purged. Exposed so tests and shutdown paths can run it
// deterministically.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := timeNow()
	n := 0
	for id, d := range m.drafts {
		if d.Expired(now) {
			delete(m.drafts, id)
			if err := m.store.delete(id); err != nil {
				m.log.Warn("removing expired draft file", zap.String("draft_id", id), zap.Error(err))
			}
			n++
		}
	}
	return n
}

// Create makes a new draft of the given type. The optional slug is
// embedded in the id; the optional name is seeded into the data map.
// total_steps is the type's fixed step count, including the synthetic
// list and item steps per array field.
func (m *Manager) Create(t entity.Type, slug, name string) (*Draft, error) {
	if err := entity.ValidateType(t); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := timeNow()
	data := make(map[string]any)
	if slug != "" {
		data["slug"] = slug
	}
	if name != "" {
		data["name"] = name
	}

	d := &Draft{
		ID:                m.newIDLocked(t, slug, now),
		Type:              t,
		CurrentStep:       1,
		TotalSteps:        steps.TotalSteps(t),
		Data:              data,
		ValidationResults: []validation.Result{},
		CreatedAt:         now,
		UpdatedAt:         now,
		ExpiresAt:         now.Add(m.cfg.TTL),
	}

	m.drafts[d.ID] = d
	m.persistLocked(d)
	return d.clone(), nil
}

// newIDLocked generates a collision-resistant draft id of the form
// {prefix}-{slug-or-datestamp}-{suffix}, where the suffix is the
// creation time in unix milliseconds, bumped until unique.
func (m *Manager) newIDLocked(t entity.Type, slug string, now time.Time) string {
	mid := Slugify(slug)
	if mid == "" {
		mid = now.UTC().Format("20060102150405")
	}

	suffix := now.UnixMilli()
	for {
		id := fmt.Sprintf("%s-%s-%d", entity.Prefix(t), mid, suffix)
		if _, taken := m.drafts[id]; !taken && !m.store.exists(id) {
			return id
		}
		suffix++
	}
}

// Get returns the draft with the given id, or nil if it is absent or
// expired. Expired drafts are treated as absent at the read boundary;
// the sweep deletes their files asynchronously.
func (m *Manager) Get(id string) *Draft {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.getLiveLocked(id)
	if d == nil {
		return nil
	}
	return d.clone()
}

// getLiveLocked returns the stored (not cloned) draft if present and
// not expired.
func (m *Manager) getLiveLocked(id string) *Draft {
	d, ok := m.drafts[id]
	if !ok || d.Expired(timeNow()) {
		return nil
	}
	return d
}

// Update merges partial into the stored record. id, type, and
// created_at are always preserved verbatim regardless of what partial
// contains. Returns nil if the draft does not exist (or has expired).
func (m *Manager) Update(id string, partial map[string]any) *Draft {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.getLiveLocked(id)
	if d == nil {
		return nil
	}

	for key, value := range partial {
		switch key {
		case "id", "type", "created_at":
			// Immutable after creation, silently preserved.
		case "current_step":
			if n, ok := asInt(value); ok {
				d.CurrentStep = n
			}
		case "total_steps":
			if n, ok := asInt(value); ok {
				d.TotalSteps = n
			}
		case "data":
			if patch, ok := value.(map[string]any); ok {
				for k, v := range patch {
					d.Data[k] = v
				}
			}
		case "validation_results":
			if results, ok := value.([]validation.Result); ok {
				d.ValidationResults = results
			}
		case "finalized":
			if b, ok := value.(bool); ok {
				d.Finalized = b
			}
		case "progress":
			if p, ok := value.(Progress); ok {
				d.Progress = p
			}
		case "expires_at":
			switch v := value.(type) {
			case time.Time:
				d.ExpiresAt = v
			case string:
				if ts, err := time.Parse(time.RFC3339, v); err == nil {
					d.ExpiresAt = ts
				}
			}
		default:
			m.log.Debug("ignoring unknown draft field in update", zap.String("draft_id", id), zap.String("field", key))
		}
	}

	d.UpdatedAt = timeNow()
	m.persistLocked(d)
	return d.clone()
}

// AppendValidation appends a step validation result to the draft's
// ordered history. Returns nil if the draft does not exist.
func (m *Manager) AppendValidation(id string, res validation.Result) *Draft {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.getLiveLocked(id)
	if d == nil {
		return nil
	}
	d.ValidationResults = append(d.ValidationResults, res)
	d.UpdatedAt = timeNow()
	m.persistLocked(d)
	return d.clone()
}

// Delete removes the draft from memory and disk. Returns false if it
// was not present.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.drafts[id]
	if !ok {
		return false
	}
	delete(m.drafts, id)
	if err := m.store.delete(id); err != nil {
		m.log.Warn("deleting draft file", zap.String("draft_id", id), zap.Error(err))
	}
	return true
}

// List returns all non-expired drafts, optionally filtered by type.
// Pass empty string for no filter. Sorted by creation time.
func (m *Manager) List(t entity.Type) []*Draft {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := timeNow()
	out := []*Draft{}
	for _, d := range m.drafts {
		if d.Expired(now) {
			continue
		}
		if t != "" && d.Type != t {
			continue
		}
		out = append(out, d.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// persistLocked writes the draft to disk. A write failure after a
// successful in-memory mutation is logged and does not roll back;
// the in-memory map is the source of truth for the current process.
func (m *Manager) persistLocked(d *Draft) {
	if err := m.store.write(d); err != nil {
		m.log.Error("persisting draft", zap.String("draft_id", d.ID), zap.Error(err))
	}
}

// asInt normalizes the numeric types a JSON-ish partial may carry.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
