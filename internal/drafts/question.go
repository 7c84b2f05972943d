package drafts

// Question is one prompt in a drafting flow, answered or skipped
// exactly once. Ids are unique within a drafter instance; item-scoped
// questions carry their template id suffixed with the item index.
type Question struct {
	ID       string  `json:"id"`
	Prompt   string  `json:"prompt"`
	Guidance string  `json:"guidance,omitempty"`
	Answer   *string `json:"answer"`
	Optional bool    `json:"optional"`
	Skipped  bool    `json:"skipped"`
}

// Answered reports whether the question has a recorded answer.
func (q *Question) Answered() bool { return q.Answer != nil }

// Resolved reports whether the question no longer blocks the flow.
func (q *Question) Resolved() bool { return q.Answer != nil || q.Skipped }

// answer records the value. Callers guard against double answering.
func (q *Question) answer(value string) {
	v := value
	q.Answer = &v
	q.Skipped = false
}
