package engine

import (
	"context"
	"log"

	"Hollow-Pines/server/internal/interfaces"
)

// Session control surface. The transport layer maps its inbound events 1:1
// onto these operations.

// Start resets the user's session to the opening scene and begins delivery.
// Reset waits for any in-flight run, so a restart never interleaves with
// old output.
func (e *Engine) Start(ctx context.Context, userID string) error {
	e.sessions.Reset(userID)
	return e.Advance(ctx, userID)
}

// SubmitInput feeds the user's message to the dialogue generator, sends the
// generated character lines, then continues scripted delivery. Generation
// reads session state without the guard; a slightly stale step index only
// shifts the grounding transcript by one step.
func (e *Engine) SubmitInput(ctx context.Context, userID, text string) error {
	sess := e.sessions.GetOrCreate(userID)

	sc, err := e.library.Scene(sess.SceneID)
	if err != nil {
		e.reportContentError(ctx, userID, err)
		return err
	}

	if sess.StepIndex < len(sc.Steps) {
		step := sc.Steps[sess.StepIndex]
		result := e.generator.Generate(ctx, &interfaces.DialogueRequest{
			Characters:     sc.Characters,
			Transcript:     Transcript(sc, sess.StepIndex),
			UserInput:      text,
			PromptOverride: step.PromptOverride,
		})
		if result.Err != nil {
			log.Printf("[Engine] Dialogue generation degraded for %s: %v", userID, result.Err)
		}
		for _, line := range result.Lines {
			msg := interfaces.OutboundMessage{Text: line.String()}
			if err := e.emitter.Send(ctx, userID, msg); err != nil {
				log.Printf("[Engine] Failed to send generated line to %s: %v", userID, err)
				break
			}
		}
	}

	return e.Advance(ctx, userID)
}

// Pause suspends the user's delivery at the next line boundary. The exact
// resume point is kept in the session.
func (e *Engine) Pause(userID string) {
	e.sessions.GetOrCreate(userID).Pause()
}

// Resume clears the pause and picks delivery back up from where it stopped.
func (e *Engine) Resume(ctx context.Context, userID string) error {
	e.sessions.GetOrCreate(userID).Resume()
	return e.Advance(ctx, userID)
}
