package drafts

import (
	"fmt"

	"github.com/HendryAvila/sdd-quill/internal/entity"
	"github.com/HendryAvila/sdd-quill/internal/schema"
	"github.com/HendryAvila/sdd-quill/internal/steps"
)

// ItemDraft is the guided sub-flow for one array item. Its free-text
// questions force a reasoning sequence; the structured payload passed
// to finalize is what actually enters the entity, validated against the
// field's item schema.
type ItemDraft struct {
	Index         int
	Description   string
	Questions     []*Question
	FinalizedData map[string]any // nil until finalized, then immutable
}

// Finalized reports whether the item has its authoritative data set.
func (it *ItemDraft) Finalized() bool { return it.FinalizedData != nil }

// pending returns the first unresolved question of this item, or nil.
func (it *ItemDraft) pending() *Question {
	for _, q := range it.Questions {
		if !q.Resolved() {
			return q
		}
	}
	return nil
}

// ArrayDrafter manages one array field: the collection question plus N
// per-item sub-flows. It is the sole authority for the field's
// finalized contents; Finalize on the parent drafter reads from here
// and nowhere else.
type ArrayDrafter struct {
	entityType entity.Type
	field      steps.ArrayField

	Collection *Question
	Items      []*ItemDraft

	described bool // SetDescriptions called; item count is fixed
}

// newArrayDrafter builds the drafter for one declared array field.
func newArrayDrafter(t entity.Type, field steps.ArrayField) *ArrayDrafter {
	return &ArrayDrafter{
		entityType: t,
		field:      field,
		Collection: &Question{
			ID:       field.CollectionID,
			Prompt:   field.ListPrompt,
			Guidance: field.ListGuidance,
		},
	}
}

// FieldName returns the array field this drafter owns.
func (a *ArrayDrafter) FieldName() string { return a.field.Name }

// Described reports whether SetDescriptions has been called.
func (a *ArrayDrafter) Described() bool { return a.described }

// SetDescriptions materializes exactly len(descs) item drafts, cloning
// the item question template per item with uniquely indexed ids. The
// item count is fixed afterwards; the collection cannot shrink or grow.
// Callable once, and only after the collection question is answered.
func (a *ArrayDrafter) SetDescriptions(descs []string) error {
	if a.described {
		return fmt.Errorf("%w: descriptions for %q are already set (%d items)", ErrIllegalState, a.field.Name, len(a.Items))
	}
	if !a.Collection.Answered() {
		return fmt.Errorf("%w: answer the collection question %q before setting item descriptions", ErrIllegalState, a.Collection.ID)
	}
	if len(descs) == 0 {
		return fmt.Errorf("%w: %q needs at least one item description", ErrIllegalState, a.field.Name)
	}

	a.Items = make([]*ItemDraft, len(descs))
	for i, desc := range descs {
		qs := make([]*Question, len(a.field.ItemQuestions))
		for j, tmpl := range a.field.ItemQuestions {
			qs[j] = &Question{
				ID:       fmt.Sprintf("%s-item-%d", tmpl.ID, i),
				Prompt:   tmpl.Prompt,
				Guidance: tmpl.Guidance,
				Optional: tmpl.Optional,
			}
		}
		a.Items[i] = &ItemDraft{Index: i, Description: desc, Questions: qs}
	}
	a.described = true
	return nil
}

// FinalizeItemWithData validates the structured payload against the
// field's item schema and, on success, stores it permanently. This is
// the only path by which array-item data enters the system. An item is
// finalized exactly once, and only after its required free-text
// questions are resolved.
func (a *ArrayDrafter) FinalizeItemWithData(index int, payload map[string]any) error {
	if !a.described {
		return fmt.Errorf("%w: set item descriptions for %q before finalizing items", ErrIllegalState, a.field.Name)
	}
	if index < 0 || index >= len(a.Items) {
		return fmt.Errorf("%w: item index %d out of range for %q (%d items)", ErrNotFound, index, a.field.Name, len(a.Items))
	}

	item := a.Items[index]
	if item.Finalized() {
		return fmt.Errorf("%w: item %d of %q is already finalized", ErrIllegalState, index, a.field.Name)
	}
	for _, q := range item.Questions {
		if !q.Optional && !q.Resolved() {
			return fmt.Errorf("%w: answer question %q before finalizing item %d of %q", ErrIllegalState, q.ID, index, a.field.Name)
		}
	}

	s, err := schema.ItemSchema(a.entityType, a.field.Name)
	if err != nil {
		return err
	}
	accepted, issues := s.Parse(payload)
	if len(issues) > 0 {
		return &InvalidPayloadError{
			Subject: fmt.Sprintf("%s item %d", a.field.Name, index),
			Issues:  issues,
		}
	}

	item.FinalizedData = accepted
	return nil
}

// IsComplete reports whether the field is fully drafted: described and
// every item finalized.
func (a *ArrayDrafter) IsComplete() bool {
	if !a.described {
		return false
	}
	for _, it := range a.Items {
		if !it.Finalized() {
			return false
		}
	}
	return true
}

// FinalizedData returns the concatenation, in item order, of every
// finalized item's data. Items not yet finalized are omitted.
func (a *ArrayDrafter) FinalizedData() []map[string]any {
	out := make([]map[string]any, 0, len(a.Items))
	for _, it := range a.Items {
		if it.Finalized() {
			out = append(out, it.FinalizedData)
		}
	}
	return out
}

// pendingItemQuestion returns the first unresolved item question, in
// item order, or nil when every materialized item's questions are
// resolved.
func (a *ArrayDrafter) pendingItemQuestion() *Question {
	for _, it := range a.Items {
		if q := it.pending(); q != nil {
			return q
		}
	}
	return nil
}

// findQuestion locates a question by id within this field's scope.
func (a *ArrayDrafter) findQuestion(id string) *Question {
	if a.Collection.ID == id {
		return a.Collection
	}
	for _, it := range a.Items {
		for _, q := range it.Questions {
			if q.ID == id {
				return q
			}
		}
	}
	return nil
}

// restore rebuilds the field from recorded progress: every declared
// item is rematerialized from its description, finalized data is
// reattached to its original index, and items not yet finalized come
// back pending. The k-th finalized index owns the k-th entry of data.
func (a *ArrayDrafter) restore(fp FieldProgress, data []map[string]any) {
	a.Collection.answer(fmt.Sprintf("%d item(s) restored from persisted draft", len(fp.Descriptions)))
	if err := a.SetDescriptions(fp.Descriptions); err != nil {
		return
	}
	for k, idx := range fp.Finalized {
		if idx < 0 || idx >= len(a.Items) || k >= len(data) {
			continue
		}
		item := a.Items[idx]
		for _, q := range item.Questions {
			q.answer(item.Description)
		}
		item.FinalizedData = data[k]
	}
}

// restoreFinalized rebuilds the field from persisted item data alone,
// for records that carry no field progress. Every stored item is
// recreated as already finalized,
// with their template questions marked answered from the stored
// description, since the reasoning ritual happened before the restart.
func (a *ArrayDrafter) restoreFinalized(items []map[string]any) {
	descs := make([]string, len(items))
	for i, data := range items {
		descs[i] = restoredDescription(data, i)
	}

	joined := fmt.Sprintf("%d item(s) restored from persisted draft", len(items))
	a.Collection.answer(joined)
	if err := a.SetDescriptions(descs); err != nil {
		return
	}
	for i, data := range items {
		for _, q := range a.Items[i].Questions {
			q.answer(a.Items[i].Description)
		}
		a.Items[i].FinalizedData = data
	}
}

// restoredDescription picks a human-readable label for a restored item.
func restoredDescription(data map[string]any, index int) string {
	for _, key := range []string{"title", "name", "criterion", "option", "question"} {
		if v, ok := data[key].(string); ok && v != "" {
			return v
		}
	}
	return fmt.Sprintf("item %d", index)
}
