package drafts

import (
	"time"

	"github.com/HendryAvila/sdd-quill/internal/entity"
	"github.com/HendryAvila/sdd-quill/internal/validation"
)

// Draft is the persisted record of one in-progress entity, written as
// one JSON file per draft. id, type, and created_at are immutable after
// creation; Update preserves them regardless of what a partial carries.
type Draft struct {
	ID                string              `json:"id"`
	Type              entity.Type         `json:"type"`
	CurrentStep       int                 `json:"current_step"`
	TotalSteps        int                 `json:"total_steps"`
	Data              map[string]any      `json:"data"`
	ValidationResults []validation.Result `json:"validation_results"`
	Finalized         bool                `json:"finalized"`
	Progress          Progress            `json:"progress"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	ExpiresAt         time.Time           `json:"expires_at"`
}

// Progress captures flow state the data map alone cannot reconstruct
// after a restart: which questions were skipped and, per array field,
// the declared item descriptions plus the indexes already finalized.
type Progress struct {
	Skipped []string                 `json:"skipped,omitempty"`
	Fields  map[string]FieldProgress `json:"fields,omitempty"`
}

// FieldProgress is the per-array-field portion of Progress. Finalized
// holds item indexes in ascending order; the k-th finalized index owns
// the k-th entry of the field's data array.
type FieldProgress struct {
	Descriptions []string `json:"descriptions"`
	Finalized    []int    `json:"finalized,omitempty"`
}

// Expired reports whether the draft's TTL has lapsed at time now.
func (d *Draft) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}

// clone returns a deep-enough copy for handing out of the manager:
// the data map is copied one level deep so callers cannot mutate the
// stored record behind the manager's back. Nested values are shared;
// finalized item data is treated as immutable once set.
func (d *Draft) clone() *Draft {
	cp := *d
	cp.Data = make(map[string]any, len(d.Data))
	for k, v := range d.Data {
		cp.Data[k] = v
	}
	cp.ValidationResults = make([]validation.Result, len(d.ValidationResults))
	copy(cp.ValidationResults, d.ValidationResults)
	if d.Progress.Skipped != nil {
		cp.Progress.Skipped = make([]string, len(d.Progress.Skipped))
		copy(cp.Progress.Skipped, d.Progress.Skipped)
	}
	if d.Progress.Fields != nil {
		cp.Progress.Fields = make(map[string]FieldProgress, len(d.Progress.Fields))
		for k, v := range d.Progress.Fields {
			cp.Progress.Fields[k] = v
		}
	}
	return &cp
}
