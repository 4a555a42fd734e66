package interfaces

import "context"

// DialogueRequest holds everything the generation service needs to speak
// for the scene's characters.
type DialogueRequest struct {
	// Characters maps character name to that character's goal
	Characters map[string]string

	// Transcript is the scripted lines delivered so far, in order
	Transcript []string

	// UserInput is the player's latest message
	UserInput string

	// PromptOverride replaces the default prompt template when non-empty
	PromptOverride string
}

// DialogueLine is one generated character line.
type DialogueLine struct {
	Speaker string
	Text    string
}

// String formats the line the way scripted lines are sent.
func (l DialogueLine) String() string {
	if l.Speaker == "" {
		return l.Text
	}
	return l.Speaker + ": " + l.Text
}

// DialogueResult is the typed outcome of a generation call. When Err is
// non-nil, Lines still holds a synthetic fallback line so callers always
// have content to send.
type DialogueResult struct {
	Lines []DialogueLine
	Err   error
}

// DialogueGenerator defines the interface for character dialogue generation
type DialogueGenerator interface {
	// Generate produces character lines for the given request
	Generate(ctx context.Context, req *DialogueRequest) DialogueResult
}
