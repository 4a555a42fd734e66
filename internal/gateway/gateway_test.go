package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Hollow-Pines/server/internal/config"
	"Hollow-Pines/server/internal/interfaces"
	"Hollow-Pines/server/internal/prompts"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.OpenAIConfig{
		BaseURL:    srv.URL + "/v1",
		APIKey:     "test-key",
		Model:      "gpt-4o-mini",
		TimeoutSec: 2,
	}
	return New(cfg, "Alex", prompts.NewEngine())
}

func completionResponse(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]string{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		})
	}
}

func TestGenerateParsesSpeakerLines(t *testing.T) {
	client := newTestClient(t, completionResponse(
		"Ethan: I'll go with you.\n\n  Mira: Wait for me.\nsomething without a speaker\n",
	))

	result := client.Generate(context.Background(), &interfaces.DialogueRequest{
		Characters: map[string]string{"Ethan": "protect", "Mira": "search"},
		UserInput:  "I'm going in",
	})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	want := []interfaces.DialogueLine{
		{Speaker: "Ethan", Text: "I'll go with you."},
		{Speaker: "Mira", Text: "Wait for me."},
		{Text: "something without a speaker"},
	}
	if len(result.Lines) != len(want) {
		t.Fatalf("lines = %v, want %v", result.Lines, want)
	}
	for i := range want {
		if result.Lines[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, result.Lines[i], want[i])
		}
	}
}

func TestGeneratePromptIncludesContext(t *testing.T) {
	var gotPrompt string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) == 1 {
			gotPrompt = req.Messages[0].Content
		}
		completionResponse("Ethan: Right behind you.")(w, r)
	})

	result := client.Generate(context.Background(), &interfaces.DialogueRequest{
		Characters: map[string]string{"Ethan": "protect Alex"},
		Transcript: []string{"Mira: You ok?"},
		UserInput:  "let's go",
	})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	for _, fragment := range []string{"Ethan: protect Alex", "Mira: You ok?", "let's go", "Alex"} {
		if !strings.Contains(gotPrompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, gotPrompt)
		}
	}
}

func TestGenerateUsesPromptOverride(t *testing.T) {
	var gotPrompt string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) == 1 {
			gotPrompt = req.Messages[0].Content
		}
		completionResponse("Ethan: Fine.")(w, r)
	})

	result := client.Generate(context.Background(), &interfaces.DialogueRequest{
		Characters:     map[string]string{"Ethan": "protect"},
		UserInput:      "hello",
		PromptOverride: "Custom scare prompt. {{player}} says: {{user_input}}",
	})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	want := "Custom scare prompt. Alex says: hello"
	if gotPrompt != want {
		t.Errorf("prompt = %q, want %q", gotPrompt, want)
	}
}

func TestGenerateFailureYieldsSyntheticLine(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	})

	result := client.Generate(context.Background(), &interfaces.DialogueRequest{
		Characters: map[string]string{"Ethan": "protect"},
		UserInput:  "hello",
	})

	if result.Err == nil {
		t.Fatal("expected error in result")
	}
	if len(result.Lines) != 1 || result.Lines[0].Text != fallbackLine {
		t.Fatalf("lines = %v, want single synthetic line", result.Lines)
	}
}

func TestGenerateEmptyResponseYieldsSyntheticLine(t *testing.T) {
	client := newTestClient(t, completionResponse("\n\n"))

	result := client.Generate(context.Background(), &interfaces.DialogueRequest{
		Characters: map[string]string{"Ethan": "protect"},
		UserInput:  "hello",
	})

	if result.Err == nil {
		t.Fatal("expected error in result")
	}
	if len(result.Lines) != 1 || result.Lines[0].Text != fallbackLine {
		t.Fatalf("lines = %v, want single synthetic line", result.Lines)
	}
}
