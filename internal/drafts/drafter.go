package drafts

import (
	"fmt"
	"reflect"

	"github.com/HendryAvila/sdd-quill/internal/entity"
	"github.com/HendryAvila/sdd-quill/internal/steps"
)

// EntityDrafter sequences the guided Q&A for one draft: main questions
// in declared order, then per array field (declaration order) the
// collection question and the per-item sub-flows. Finalization pulls
// array contents exclusively from the ArrayDrafters; the finalize
// payload cannot override them.
//
// A drafter is not safe for concurrent use. One draft is driven by one
// caller at a time; when two callers mutate the same draft, the last
// write wins.
type EntityDrafter struct {
	entityType entity.Type
	main       []*Question
	mainFields []string // answer key per main question, same order
	arrays     []*ArrayDrafter
	finalized  bool
}

// TamperEvent records a finalize-time attempt to override an array
// field with bulk payload data. The override is discarded, not an
// error, but callers should hand these to the audit trail.
type TamperEvent struct {
	Field     string
	Attempted any // the discarded payload value
}

// NewEntityDrafter builds the drafter for an entity type from the step
// registry.
func NewEntityDrafter(t entity.Type) (*EntityDrafter, error) {
	if err := entity.ValidateType(t); err != nil {
		return nil, err
	}

	mains := steps.MainSteps(t)
	d := &EntityDrafter{
		entityType: t,
		main:       make([]*Question, len(mains)),
		mainFields: make([]string, len(mains)),
	}
	for i, def := range mains {
		d.main[i] = &Question{
			ID:       def.ID,
			Prompt:   def.Prompt,
			Guidance: def.Guidance,
			Optional: def.Optional,
		}
		d.mainFields[i] = def.Field
	}
	for _, af := range steps.ArrayFields(t) {
		d.arrays = append(d.arrays, newArrayDrafter(t, af))
	}
	return d, nil
}

// Type returns the entity type being drafted.
func (d *EntityDrafter) Type() entity.Type { return d.entityType }

// Finalized reports whether Finalize has completed.
func (d *EntityDrafter) Finalized() bool { return d.finalized }

// CurrentQuestion resolves the single pending question by strict
// precedence: main questions in declared order, then per array field
// its collection question followed by each item's questions. Returns
// nil when no question is pending (including before SetDescriptions has
// materialized a field's items).
func (d *EntityDrafter) CurrentQuestion() *Question {
	for _, q := range d.main {
		if !q.Resolved() {
			return q
		}
	}
	for _, a := range d.arrays {
		if !a.Collection.Resolved() {
			return a.Collection
		}
		if !a.Described() {
			// Blocked on SetDescriptions: no question is pending, but
			// later fields must not surface early either.
			return nil
		}
		if q := a.pendingItemQuestion(); q != nil {
			return q
		}
		if !a.IsComplete() {
			// Blocked on item finalization.
			return nil
		}
	}
	return nil
}

// SubmitAnswer applies the value to the current pending question.
// Fails if the drafter is finalized or no question is pending.
func (d *EntityDrafter) SubmitAnswer(value string) (*Question, error) {
	if d.finalized {
		return nil, fmt.Errorf("%w: drafter is finalized", ErrIllegalState)
	}
	q := d.CurrentQuestion()
	if q == nil {
		return nil, fmt.Errorf("%w: no question is pending; set item descriptions or finalize pending items", ErrIllegalState)
	}
	q.answer(value)
	return q, nil
}

// SkipAnswer marks the targeted question skipped. Skipping a required
// question is illegal state, not a silent no-op.
func (d *EntityDrafter) SkipAnswer(questionID string) error {
	if d.finalized {
		return fmt.Errorf("%w: drafter is finalized", ErrIllegalState)
	}
	q := d.FindQuestionByID(questionID)
	if q == nil {
		return fmt.Errorf("%w: question %q", ErrNotFound, questionID)
	}
	if !q.Optional {
		return fmt.Errorf("%w: question %q is required and cannot be skipped", ErrIllegalState, questionID)
	}
	if q.Resolved() {
		return fmt.Errorf("%w: question %q is already %s", ErrIllegalState, questionID, resolvedWord(q))
	}
	q.Skipped = true
	return nil
}

func resolvedWord(q *Question) string {
	if q.Answered() {
		return "answered"
	}
	return "skipped"
}

// FindQuestionByID locates a question across main, collection, and item
// scopes. Item-question ids are the template id suffixed with the item
// index (e.g. "const-art-q-001-item-0").
func (d *EntityDrafter) FindQuestionByID(id string) *Question {
	for _, q := range d.main {
		if q.ID == id {
			return q
		}
	}
	for _, a := range d.arrays {
		if q := a.findQuestion(id); q != nil {
			return q
		}
	}
	return nil
}

// ArrayDrafterFor returns the sub-drafter for a declared array field.
func (d *EntityDrafter) ArrayDrafterFor(field string) (*ArrayDrafter, error) {
	for _, a := range d.arrays {
		if a.FieldName() == field {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not a declared array field of %s", ErrNotFound, field, d.entityType)
}

// ArrayDrafters returns the sub-drafters in declaration order.
func (d *EntityDrafter) ArrayDrafters() []*ArrayDrafter {
	out := make([]*ArrayDrafter, len(d.arrays))
	copy(out, d.arrays)
	return out
}

// IsComplete reports whether the drafter can finalize: every required
// main question answered or skipped, every array field described, and
// every materialized item finalized.
func (d *EntityDrafter) IsComplete() bool {
	for _, q := range d.main {
		if !q.Optional && !q.Resolved() {
			return false
		}
	}
	for _, a := range d.arrays {
		if !a.IsComplete() {
			return false
		}
	}
	return true
}

// Finalize produces the output entity from the payload, with every key
// matching a declared array field overwritten by the concatenation, in
// item order, of that field's finalized item data, regardless of any
// conflicting value in the payload, including an empty-array override.
// The caller is untrusted for array contents; only the audited per-item
// path counts. Returned TamperEvents record discarded overrides.
//
// Finalization is all-or-nothing: on error nothing changes; on success
// the drafter transitions to finalized and further mutation fails.
func (d *EntityDrafter) Finalize(payload map[string]any) (map[string]any, []TamperEvent, error) {
	if d.finalized {
		return nil, nil, fmt.Errorf("%w: drafter is already finalized", ErrIllegalState)
	}
	if !d.IsComplete() {
		return nil, nil, fmt.Errorf("%w: drafting is incomplete: %s", ErrIllegalState, d.incompleteReason())
	}

	out := make(map[string]any, len(payload)+len(d.arrays))
	for k, v := range payload {
		out[k] = v
	}

	var tampers []TamperEvent
	for _, a := range d.arrays {
		authoritative := a.FinalizedData()
		if supplied, present := payload[a.FieldName()]; present && !equalsFinalized(supplied, authoritative) {
			tampers = append(tampers, TamperEvent{Field: a.FieldName(), Attempted: supplied})
		}
		out[a.FieldName()] = authoritative
	}

	d.finalized = true
	return out, tampers, nil
}

// equalsFinalized reports whether a supplied payload value already
// matches the authoritative item data, so an honest echo of the
// finalized contents is not flagged as tampering.
func equalsFinalized(supplied any, authoritative []map[string]any) bool {
	list, ok := supplied.([]map[string]any)
	if ok {
		return reflect.DeepEqual(list, authoritative)
	}
	anyList, ok := supplied.([]any)
	if !ok || len(anyList) != len(authoritative) {
		return false
	}
	for i, v := range anyList {
		m, ok := v.(map[string]any)
		if !ok || !reflect.DeepEqual(m, authoritative[i]) {
			return false
		}
	}
	return true
}

// incompleteReason names the first thing blocking finalization, for
// error messages an agent can act on.
func (d *EntityDrafter) incompleteReason() string {
	for _, q := range d.main {
		if !q.Optional && !q.Resolved() {
			return fmt.Sprintf("question %q is unanswered", q.ID)
		}
	}
	for _, a := range d.arrays {
		if !a.Described() {
			return fmt.Sprintf("array field %q has no item descriptions yet", a.FieldName())
		}
		for _, it := range a.Items {
			if !it.Finalized() {
				return fmt.Sprintf("item %d of %q is not finalized", it.Index, a.FieldName())
			}
		}
	}
	return "unknown"
}

// Data is the read view: answered main fields plus, for every declared
// array field, exactly the finalized item data. Never a raw merge of
// submitted answers with finalize-payload arrays.
func (d *EntityDrafter) Data() map[string]any {
	out := make(map[string]any)
	for i, q := range d.main {
		if q.Answered() {
			out[d.mainFields[i]] = *q.Answer
		}
	}
	for _, a := range d.arrays {
		out[a.FieldName()] = a.FinalizedData()
	}
	return out
}

// CurrentStepNumber returns the 1-based position of the step the
// drafter is on, in the registry's ordering: main steps, then per array
// field its list step and item step. A complete drafter reports the
// final step.
func (d *EntityDrafter) CurrentStepNumber() int {
	for i, q := range d.main {
		if !q.Resolved() {
			return i + 1
		}
	}
	pos := len(d.main)
	for _, a := range d.arrays {
		if !a.Collection.Resolved() || !a.Described() {
			return pos + 1 // the field's list step
		}
		if !a.IsComplete() {
			return pos + 2 // the field's item step
		}
		pos += 2
	}
	if pos == 0 {
		return 1
	}
	return pos
}

// AnsweredCount returns how many questions in the whole flow are
// resolved, and the total materialized so far. Used for progress
// reporting; item questions only count once materialized.
func (d *EntityDrafter) AnsweredCount() (resolved, total int) {
	count := func(q *Question) {
		total++
		if q.Resolved() {
			resolved++
		}
	}
	for _, q := range d.main {
		count(q)
	}
	for _, a := range d.arrays {
		count(a.Collection)
		for _, it := range a.Items {
			for _, q := range it.Questions {
				count(q)
			}
		}
	}
	return resolved, total
}

// Progress reports the flow state that must survive a restart beyond
// the data read view: skipped questions, plus each described field's
// item descriptions and finalized indexes.
func (d *EntityDrafter) Progress() Progress {
	var p Progress
	collect := func(q *Question) {
		if q.Skipped {
			p.Skipped = append(p.Skipped, q.ID)
		}
	}
	for _, q := range d.main {
		collect(q)
	}
	for _, a := range d.arrays {
		for _, it := range a.Items {
			for _, q := range it.Questions {
				collect(q)
			}
		}
		if !a.Described() {
			continue
		}
		fp := FieldProgress{Descriptions: make([]string, len(a.Items))}
		for i, it := range a.Items {
			fp.Descriptions[i] = it.Description
			if it.Finalized() {
				fp.Finalized = append(fp.Finalized, i)
			}
		}
		if p.Fields == nil {
			p.Fields = make(map[string]FieldProgress)
		}
		p.Fields[a.FieldName()] = fp
	}
	return p
}

// Rehydrate rebuilds a drafter from a persisted draft record. Scalar
// answers come from the data map. Array fields rematerialize from the
// recorded progress: every declared item comes back, finalized data is
// reattached to its original index, and the remaining items are
// pending again. Records without field progress fall back to treating
// every stored item as finalized. Free-text answers for pending items
// do not survive a restart; finalized data always does.
func Rehydrate(d *Draft) (*EntityDrafter, error) {
	ed, err := NewEntityDrafter(d.Type)
	if err != nil {
		return nil, err
	}

	for i, q := range ed.main {
		field := ed.mainFields[i]
		if v, ok := d.Data[field].(string); ok {
			q.answer(v)
		}
	}

	for _, a := range ed.arrays {
		items := itemMaps(d.Data[a.FieldName()])
		if fp, ok := d.Progress.Fields[a.FieldName()]; ok && len(fp.Descriptions) > 0 {
			a.restore(fp, items)
		} else if len(items) > 0 {
			a.restoreFinalized(items)
		}
	}

	for _, id := range d.Progress.Skipped {
		if q := ed.FindQuestionByID(id); q != nil && q.Optional && !q.Resolved() {
			q.Skipped = true
		}
	}

	ed.finalized = d.Finalized
	return ed, nil
}

// itemMaps normalizes a persisted array-field value, which round-trips
// through JSON as []any of map[string]any.
func itemMaps(v any) []map[string]any {
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
