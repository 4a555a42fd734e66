package story

import (
	"errors"
	"fmt"
	"time"
)

// ErrSceneNotFound is returned when a scene id is not in the library.
var ErrSceneNotFound = errors.New("scene not found")

// Line is one authored character line, delivered verbatim.
type Line struct {
	Speaker string `yaml:"speaker"`
	Text    string `yaml:"text"`
}

// Step is one unit of scripted content: optional narration followed by an
// ordered list of character lines.
type Step struct {
	Narration      string `yaml:"narration"`
	Lines          []Line `yaml:"lines"`
	DelaySec       int    `yaml:"delay"`
	PromptOverride string `yaml:"prompt_override"`
}

// Delay returns the step's pacing delay, falling back to def when the step
// does not set one.
func (s Step) Delay(def time.Duration) time.Duration {
	if s.DelaySec <= 0 {
		return def
	}
	return time.Duration(s.DelaySec) * time.Second
}

// Scene is a named, ordered sequence of steps plus the character roster
// used as generation grounding. Immutable after load.
type Scene struct {
	ID         string            `yaml:"-"`
	Next       string            `yaml:"next"`
	Characters map[string]string `yaml:"characters"`
	Steps      []Step            `yaml:"steps"`
}

// Library is the read-only set of scenes loaded at startup.
type Library struct {
	start  string
	scenes map[string]*Scene
}

// NewLibrary builds a validated library from already-parsed scenes.
func NewLibrary(start string, scenes map[string]*Scene) (*Library, error) {
	for id, sc := range scenes {
		sc.ID = id
	}
	lib := &Library{start: start, scenes: scenes}
	if err := lib.validate(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Start returns the id of the opening scene.
func (l *Library) Start() string {
	return l.start
}

// Scene returns the scene with the given id.
func (l *Library) Scene(id string) (*Scene, error) {
	sc, ok := l.scenes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSceneNotFound, id)
	}
	return sc, nil
}

// validate rejects malformed content. Authoring mistakes must fail at load
// time, never during delivery.
func (l *Library) validate() error {
	if l.start == "" {
		return fmt.Errorf("story has no start scene")
	}
	if _, ok := l.scenes[l.start]; !ok {
		return fmt.Errorf("start scene %q does not exist", l.start)
	}

	for id, sc := range l.scenes {
		if len(sc.Steps) == 0 {
			return fmt.Errorf("scene %q has no steps", id)
		}
		if sc.Next != "" {
			if _, ok := l.scenes[sc.Next]; !ok {
				return fmt.Errorf("scene %q links to unknown scene %q", id, sc.Next)
			}
		}
		for i, step := range sc.Steps {
			if step.Narration == "" && len(step.Lines) == 0 {
				return fmt.Errorf("scene %q step %d has neither narration nor lines", id, i)
			}
			if step.DelaySec < 0 {
				return fmt.Errorf("scene %q step %d has negative delay", id, i)
			}
			for j, line := range step.Lines {
				if line.Speaker == "" || line.Text == "" {
					return fmt.Errorf("scene %q step %d line %d is missing speaker or text", id, i, j)
				}
			}
		}
	}
	return nil
}
