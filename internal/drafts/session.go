package drafts

import (
	"fmt"
	"sync"
)

// Sessions binds live EntityDrafters to their persisted draft records.
// The manager owns persistence; a session owns the in-memory question
// progression and rebuilds it from the record after a process restart.
type Sessions struct {
	mu      sync.Mutex
	manager *Manager
	live    map[string]*EntityDrafter
}

// NewSessions creates a session registry over the given manager.
func NewSessions(m *Manager) *Sessions {
	return &Sessions{manager: m, live: make(map[string]*EntityDrafter)}
}

// Manager returns the underlying draft manager.
func (s *Sessions) Manager() *Manager { return s.manager }

// Drafter returns the live drafter for a draft id, rehydrating it from
// the persisted record if this process has not seen the draft yet.
// Returns ErrNotFound for unknown or expired drafts.
func (s *Sessions) Drafter(id string) (*EntityDrafter, error) {
	d := s.manager.Get(id)
	if d == nil {
		return nil, fmt.Errorf("%w: %q (it may have expired)", ErrNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ed, ok := s.live[id]; ok {
		return ed, nil
	}
	ed, err := Rehydrate(d)
	if err != nil {
		return nil, err
	}
	s.live[id] = ed
	return ed, nil
}

// Track registers a freshly created drafter for a draft id.
func (s *Sessions) Track(id string, ed *EntityDrafter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[id] = ed
}

// Release drops the live drafter for a draft id. Called on delete and
// after finalization.
func (s *Sessions) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, id)
}

// Sync writes the drafter's current state into the persisted record:
// the data read view, the current step position, the flow progress,
// and whether the draft has been finalized. Returns the updated draft,
// or nil if the record vanished underneath the session.
func (s *Sessions) Sync(id string, ed *EntityDrafter) *Draft {
	return s.manager.Update(id, map[string]any{
		"data":         ed.Data(),
		"current_step": ed.CurrentStepNumber(),
		"progress":     ed.Progress(),
		"finalized":    ed.Finalized(),
	})
}
