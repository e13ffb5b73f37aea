// Package assistant holds the registry of chat assistants and the
// dispatcher that routes inbound turns to exactly one of them.
package assistant

import (
	"context"

	"github.com/atcdesk/radioscribe/internal/session"
)

// TurnContext carries per-turn identity and the session store an
// assistant may use to persist dialogue state between turns.
type TurnContext struct {
	SessionID string
	UserID    string
	Sessions  session.Store
}

// Attachment is one typed non-text payload on an inbound turn.
type Attachment struct {
	Name string
	MIME string
	Data []byte
}

type HandlerFunc func(ctx context.Context, text string, tc TurnContext) (string, error)

type FileHandlerFunc func(ctx context.Context, file Attachment, tc TurnContext) (string, error)

// Descriptor describes a registered assistant. HandleMessage is
// required; the file and search handlers are optional capabilities the
// dispatcher checks explicitly before falling back to shared handling.
type Descriptor struct {
	Name        string
	Command     string
	Description string

	HandleMessage HandlerFunc
	HandleFile    FileHandlerFunc
	HandleSearch  HandlerFunc
}
