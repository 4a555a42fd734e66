package interfaces

import "context"

// OutboundMessage is one plain-text message headed for a user's chat.
// Emphasis is a presentational hint for narration lines.
type OutboundMessage struct {
	Text     string `json:"text"`
	Emphasis bool   `json:"emphasis,omitempty"`
}

// Emitter delivers outbound messages to a single user. The transport owns
// recipient association; a failed send must be reported so the caller can
// retry from the same point.
type Emitter interface {
	// Send delivers one message to the given user
	Send(ctx context.Context, userID string, msg OutboundMessage) error
}
