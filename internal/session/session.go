package session

import (
	"go.uber.org/atomic"
)

// Session is one user's progression through the story. Index fields are
// mutated only while the user's guard is held; the two flags are atomic so
// pause requests and duplicate-run checks work against an in-flight
// delivery without touching the guard.
type Session struct {
	SceneID   string
	StepIndex int
	LineIndex int

	// NarrationDone marks the current step's narration as sent, so a
	// pause between the narration and the first line does not replay it
	NarrationDone bool

	paused     atomic.Bool
	delivering atomic.Bool
}

// Pause requests suspension of the current delivery run. Observed at line
// boundaries, never mid-send.
func (s *Session) Pause() {
	s.paused.Store(true)
}

// Resume clears a pause request.
func (s *Session) Resume() {
	s.paused.Store(false)
}

// Paused reports whether a pause has been requested.
func (s *Session) Paused() bool {
	return s.paused.Load()
}

// BeginDelivery claims the session for a delivery run. It returns false if
// another run already owns the session.
func (s *Session) BeginDelivery() bool {
	return s.delivering.CompareAndSwap(false, true)
}

// EndDelivery releases the session at the end of a delivery run.
func (s *Session) EndDelivery() {
	s.delivering.Store(false)
}

// Delivering reports whether a delivery run owns the session.
func (s *Session) Delivering() bool {
	return s.delivering.Load()
}

// AdvanceStep moves the session to the next step of the current scene.
func (s *Session) AdvanceStep() {
	s.StepIndex++
	s.LineIndex = 0
	s.NarrationDone = false
}

// MoveTo puts the session at the beginning of the given scene.
func (s *Session) MoveTo(sceneID string) {
	s.SceneID = sceneID
	s.StepIndex = 0
	s.LineIndex = 0
	s.NarrationDone = false
}
