package story

import (
	"errors"
	"testing"
	"time"
)

const validStory = `
start: intro
scenes:
  intro:
    next: cabin
    characters:
      Mira: "Find her sister"
      Tom: "Keep calm"
    steps:
      - narration: "The car stalls."
        delay: 1
        lines:
          - speaker: Mira
            text: "You ok?"
          - speaker: Tom
            text: "Let's check the engine."
  cabin:
    steps:
      - narration: "The cabin door is open."
`

func TestParseValidStory(t *testing.T) {
	lib, err := Parse([]byte(validStory))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if lib.Start() != "intro" {
		t.Errorf("start = %q, want %q", lib.Start(), "intro")
	}

	sc, err := lib.Scene("intro")
	if err != nil {
		t.Fatalf("scene intro: %v", err)
	}
	if sc.ID != "intro" {
		t.Errorf("scene ID = %q, want %q", sc.ID, "intro")
	}
	if sc.Next != "cabin" {
		t.Errorf("next = %q, want %q", sc.Next, "cabin")
	}
	if len(sc.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(sc.Steps))
	}

	step := sc.Steps[0]
	if step.Narration != "The car stalls." {
		t.Errorf("narration = %q", step.Narration)
	}
	if len(step.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(step.Lines))
	}
	if step.Lines[0].Speaker != "Mira" || step.Lines[0].Text != "You ok?" {
		t.Errorf("line 0 = %+v", step.Lines[0])
	}
	if got := sc.Characters["Tom"]; got != "Keep calm" {
		t.Errorf("Tom goal = %q", got)
	}
}

func TestParseRejectsMalformedContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing start scene",
			content: `
scenes:
  intro:
    steps:
      - narration: "hello"
`,
		},
		{
			name: "start scene does not exist",
			content: `
start: missing
scenes:
  intro:
    steps:
      - narration: "hello"
`,
		},
		{
			name: "dangling next reference",
			content: `
start: intro
scenes:
  intro:
    next: nowhere
    steps:
      - narration: "hello"
`,
		},
		{
			name: "scene with no steps",
			content: `
start: intro
scenes:
  intro:
    steps: []
`,
		},
		{
			name: "step with neither narration nor lines",
			content: `
start: intro
scenes:
  intro:
    steps:
      - delay: 2
`,
		},
		{
			name: "line missing speaker",
			content: `
start: intro
scenes:
  intro:
    steps:
      - lines:
          - text: "who said that"
`,
		},
		{
			name: "negative delay",
			content: `
start: intro
scenes:
  intro:
    steps:
      - narration: "hello"
        delay: -1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.content)); err == nil {
				t.Fatal("expected parse error, got nil")
			}
		})
	}
}

func TestSceneNotFound(t *testing.T) {
	lib, err := Parse([]byte(validStory))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	_, err = lib.Scene("ep99")
	if !errors.Is(err, ErrSceneNotFound) {
		t.Fatalf("err = %v, want ErrSceneNotFound", err)
	}
}

func TestStepDelayDefault(t *testing.T) {
	def := 2 * time.Second

	if got := (Step{}).Delay(def); got != def {
		t.Errorf("unset delay = %v, want default %v", got, def)
	}
	if got := (Step{DelaySec: 5}).Delay(def); got != 5*time.Second {
		t.Errorf("delay = %v, want 5s", got)
	}
}
