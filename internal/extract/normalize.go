package extract

import (
	"encoding/json"
	"strings"

	"github.com/atcdesk/radioscribe/pkg/logging"
)

// Role tokens coerced to "atc". Anything else that is not already
// canonical becomes "pilot".
var atcRoleTokens = map[string]bool{
	"atc":        true,
	"controller": true,
	"tower":      true,
	"ground":     true,
	"approach":   true,
	"departure":  true,
}

// UnwrapFences strips one surrounding markdown code fence from a model
// response, preferring a language-tagged fence over a bare one. Text
// without fences passes through unchanged.
func UnwrapFences(text string) string {
	text = strings.TrimSpace(text)
	if start := strings.Index(text, "```json"); start >= 0 {
		start += len("```json")
		if end := strings.Index(text[start:], "```"); end >= 0 {
			return strings.TrimSpace(text[start : start+end])
		}
		return strings.TrimSpace(text[start:])
	}
	if start := strings.Index(text, "```"); start >= 0 {
		start += len("```")
		if end := strings.Index(text[start:], "```"); end >= 0 {
			return strings.TrimSpace(text[start : start+end])
		}
		return strings.TrimSpace(text[start:])
	}
	return text
}

// rawTurn accepts any structurally plausible model output. Fields are
// validated and coerced turn by turn during normalization.
type rawTurn struct {
	Role             string            `json:"role"`
	Message          string            `json:"message"`
	Annotations      []json.RawMessage `json:"annotations"`
	HighlightForUser bool              `json:"highlight_for_user"`
}

// DecodeTurns parses an unwrapped payload into normalized conversation
// turns. Structural failure is fatal; field-level problems degrade per
// field.
func DecodeTurns(payload string, logger *logging.Logger) ([]ConversationTurn, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var raw []rawTurn
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, &ParseValidationError{Reason: "model output is not a turn list", Err: err}
	}

	turns := make([]ConversationTurn, 0, len(raw))
	for i, r := range raw {
		turns = append(turns, ConversationTurn{
			Role:             normalizeRole(r.Role, i, logger),
			Message:          r.Message,
			Annotations:      normalizeAnnotations(r.Annotations, r.Message, i, logger),
			HighlightForUser: r.HighlightForUser,
		})
	}
	return turns, nil
}

// NormalizeTurns re-applies role and annotation normalization to already
// decoded turns. Idempotent; used for cached conversations so stale
// entries written under older rules still come out canonical.
func NormalizeTurns(turns []ConversationTurn, logger *logging.Logger) []ConversationTurn {
	if logger == nil {
		logger = logging.Default()
	}
	out := make([]ConversationTurn, 0, len(turns))
	for i, t := range turns {
		kept := make([]Annotation, 0, len(t.Annotations))
		for _, a := range t.Annotations {
			if keepAnnotation(a, t.Message, i, logger) {
				kept = append(kept, a)
			}
		}
		out = append(out, ConversationTurn{
			Role:             normalizeRole(t.Role, i, logger),
			Message:          t.Message,
			Annotations:      kept,
			HighlightForUser: t.HighlightForUser,
		})
	}
	return out
}

func normalizeRole(role string, idx int, logger *logging.Logger) string {
	if role == RoleATC || role == RolePilot {
		return role
	}
	logger.Warn("unexpected role, coercing", "index", idx, "role", role)
	if atcRoleTokens[strings.ToLower(strings.TrimSpace(role))] {
		return RoleATC
	}
	return RolePilot
}

func normalizeAnnotations(raw []json.RawMessage, message string, idx int, logger *logging.Logger) []Annotation {
	kept := make([]Annotation, 0, len(raw))
	for _, entry := range raw {
		var a Annotation
		if err := json.Unmarshal(entry, &a); err != nil {
			logger.Warn("malformed annotation dropped", "index", idx, "error", err)
			continue
		}
		if keepAnnotation(a, message, idx, logger) {
			kept = append(kept, a)
		}
	}
	return kept
}

func keepAnnotation(a Annotation, message string, idx int, logger *logging.Logger) bool {
	switch a.Type {
	case AnnotationWho, AnnotationWhat:
	case "why":
		// Legal upstream value, expected; dropped without noise.
		return false
	default:
		logger.Warn("unknown annotation type dropped", "index", idx, "type", a.Type)
		return false
	}
	if a.Text == "" {
		logger.Warn("annotation without text dropped", "index", idx, "type", a.Type)
		return false
	}
	// Advisory only. A span the model paraphrased instead of copying is
	// kept but flagged.
	if !strings.Contains(message, a.Text) {
		logger.Warn("annotation text is not a substring of its message", "index", idx, "text", a.Text)
	}
	return true
}
