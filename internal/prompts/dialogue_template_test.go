package prompts

import (
	"strings"
	"testing"
)

func TestRenderContent(t *testing.T) {
	vars := map[string]string{"player": "Alex", "user_input": "run!"}

	got := RenderContent("{{player}} says {{user_input}} to {{unknown}}", vars)
	want := "Alex says run! to {{unknown}}"
	if got != want {
		t.Errorf("RenderContent = %q, want %q", got, want)
	}
}

func TestDefaultTemplateRenders(t *testing.T) {
	e := NewEngine()

	out, err := e.Render(DialogueTemplateName, map[string]string{
		"player":          "Alex",
		"character_goals": "Ethan: protect Alex",
		"transcript":      "Mira: You ok?",
		"user_input":      "I think so",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, fragment := range []string{"Alex", "Ethan: protect Alex", "Mira: You ok?", "I think so"} {
		if !strings.Contains(out, fragment) {
			t.Errorf("rendered prompt missing %q", fragment)
		}
	}
	if strings.Contains(out, "{{") {
		t.Errorf("rendered prompt has unresolved placeholders:\n%s", out)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	e := NewEngine()
	if _, err := e.Render("nope", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestFormatGoalsIsStable(t *testing.T) {
	goals := map[string]string{
		"Tom":   "keep calm",
		"Ethan": "protect",
		"Mira":  "search",
	}

	want := "Ethan: protect\nMira: search\nTom: keep calm"
	for i := 0; i < 5; i++ {
		if got := FormatGoals(goals); got != want {
			t.Fatalf("FormatGoals = %q, want %q", got, want)
		}
	}
}
