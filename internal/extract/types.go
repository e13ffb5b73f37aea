package extract

import "fmt"

// Canonical speaker roles. Any other value coming back from the model is
// coerced, never rejected.
const (
	RoleATC   = "atc"
	RolePilot = "pilot"
)

// Annotation types surfaced to callers. The upstream model may also emit
// "why", which is dropped during normalization.
const (
	AnnotationWho  = "who"
	AnnotationWhat = "what"
)

// Annotation marks a labeled span of a turn's message.
type Annotation struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// ConversationTurn is one attributed utterance of a radio exchange.
// Ordering within a conversation is significant.
type ConversationTurn struct {
	Role             string       `json:"role"`
	Message          string       `json:"message"`
	Annotations      []Annotation `json:"annotations"`
	HighlightForUser bool         `json:"highlight_for_user,omitempty"`
}

// ParseValidationError reports model output that could not be decoded
// into a turn list. Field-level problems never produce this error; only
// structural failure does.
type ParseValidationError struct {
	Reason string
	Err    error
}

func (e *ParseValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extract: %s", e.Reason)
}

func (e *ParseValidationError) Unwrap() error { return e.Err }
