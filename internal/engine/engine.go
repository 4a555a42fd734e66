package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"Hollow-Pines/server/internal/interfaces"
	"Hollow-Pines/server/internal/session"
	"Hollow-Pines/server/internal/story"
)

// genericErrorText is the only user-visible failure message. Content errors
// are a programming or authoring defect; the user just sees this.
const genericErrorText = "Something went wrong. Try again later."

// Engine walks each user's current step, emitting narration and scripted
// lines in authored order at a paced cadence. At most one delivery run is
// active per user at a time.
type Engine struct {
	library   *story.Library
	sessions  *session.Manager
	emitter   interfaces.Emitter
	generator interfaces.DialogueGenerator

	defaultDelay time.Duration
}

// New creates a delivery engine.
func New(
	library *story.Library,
	sessions *session.Manager,
	emitter interfaces.Emitter,
	generator interfaces.DialogueGenerator,
	defaultDelay time.Duration,
) *Engine {
	if defaultDelay <= 0 {
		defaultDelay = 2 * time.Second
	}
	return &Engine{
		library:      library,
		sessions:     sessions,
		emitter:      emitter,
		generator:    generator,
		defaultDelay: defaultDelay,
	}
}

// Sessions exposes the session manager for the transport layer.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Advance delivers the user's current step: narration first, then each
// remaining scripted line in order, paced by the step delay. One step per
// call; the next step waits for the next Advance. A redundant Advance while
// a run is in flight for the same user is a silent no-op.
//
// Indices only move past a message once it was sent, so a transport failure
// aborts the run and a later Advance retries from the same point.
func (e *Engine) Advance(ctx context.Context, userID string) error {
	sess := e.sessions.GetOrCreate(userID)
	if !sess.BeginDelivery() {
		return nil
	}

	guard := e.sessions.Guard(userID)
	guard.Lock()
	defer guard.Unlock()
	defer sess.EndDelivery()

	return e.deliverStep(ctx, userID, sess)
}

// deliverStep runs the delivery loop body for one step. Caller holds the
// user's guard and the delivering flag.
func (e *Engine) deliverStep(ctx context.Context, userID string, sess *session.Session) error {
	sc, err := e.library.Scene(sess.SceneID)
	if err != nil {
		e.reportContentError(ctx, userID, err)
		return err
	}

	// Scene exhausted: roll over to the linked scene as a fresh start, or
	// stop if this is the end of the road.
	if sess.StepIndex >= len(sc.Steps) {
		if sc.Next == "" {
			return nil
		}
		next, err := e.library.Scene(sc.Next)
		if err != nil {
			e.reportContentError(ctx, userID, err)
			return err
		}
		sess.MoveTo(next.ID)
		sc = next
	}

	step := sc.Steps[sess.StepIndex]
	delay := step.Delay(e.defaultDelay)

	if sess.LineIndex == 0 && !sess.NarrationDone && step.Narration != "" {
		if sess.Paused() {
			return nil
		}
		msg := interfaces.OutboundMessage{Text: step.Narration, Emphasis: true}
		if err := e.emitter.Send(ctx, userID, msg); err != nil {
			return fmt.Errorf("failed to send narration: %w", err)
		}
		sess.NarrationDone = true
		if len(step.Lines) > 0 {
			if err := e.wait(ctx, delay); err != nil {
				return err
			}
		}
	}

	for sess.LineIndex < len(step.Lines) {
		if sess.Paused() {
			return nil
		}
		line := step.Lines[sess.LineIndex]
		msg := interfaces.OutboundMessage{Text: line.Speaker + ": " + line.Text}
		if err := e.emitter.Send(ctx, userID, msg); err != nil {
			return fmt.Errorf("failed to send line %d: %w", sess.LineIndex, err)
		}
		sess.LineIndex++
		if sess.LineIndex < len(step.Lines) {
			if err := e.wait(ctx, delay); err != nil {
				return err
			}
		}
	}

	sess.AdvanceStep()
	return nil
}

// wait suspends the current run for the pacing delay without holding an OS
// thread, and gives up early when the context is cancelled.
func (e *Engine) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) reportContentError(ctx context.Context, userID string, err error) {
	log.Printf("[Engine] Content error for %s: %v", userID, err)
	msg := interfaces.OutboundMessage{Text: genericErrorText}
	if sendErr := e.emitter.Send(ctx, userID, msg); sendErr != nil {
		log.Printf("[Engine] Failed to report error to %s: %v", userID, sendErr)
	}
}
