package drafts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/sdd-quill/internal/schema"
)

// Sentinel errors for the draft engine. Callers branch on these with
// errors.Is; the messages wrapped around them carry the specifics.
var (
	// ErrNotFound covers unknown ids and expired drafts alike; at the
	// read boundary an expired draft is indistinguishable from an
	// absent one.
	ErrNotFound = errors.New("draft not found")

	// ErrIllegalState covers out-of-sequence operations: submitting
	// with no pending question, skipping a required question,
	// finalizing an incomplete drafter, or mutating a finalized one.
	ErrIllegalState = errors.New("illegal draft state")
)

// InvalidPayloadError reports a schema violation on a step answer or an
// item finalization. It keeps the structured issues so tools can relay
// them to the agent instead of a flattened string.
type InvalidPayloadError struct {
	Subject string
	Issues  []schema.Issue
}

func (e *InvalidPayloadError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		msgs[i] = iss.Message
	}
	return fmt.Sprintf("invalid payload for %s: %s", e.Subject, strings.Join(msgs, "; "))
}
