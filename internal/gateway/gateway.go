package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"Hollow-Pines/server/internal/config"
	"Hollow-Pines/server/internal/interfaces"
	"Hollow-Pines/server/internal/prompts"
)

const defaultTimeout = 10 * time.Second

// fallbackLine is sent in place of generated dialogue when the generation
// service fails or times out, so the user always gets a reply.
const fallbackLine = "(static) ...the line goes quiet for a moment. Say that again?"

// Client turns a character roster, transcript and user input into generated
// character lines via an OpenAI-compatible chat completion API.
type Client struct {
	client      *openai.Client
	templates   *prompts.Engine
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	playerName  string
}

// New creates a dialogue gateway from config.
func New(cfg config.OpenAIConfig, playerName string, templates *prompts.Engine) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		templates:   templates,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
		timeout:     timeout,
		playerName:  playerName,
	}
}

// Generate produces character lines for the given request. Failures never
// propagate as bare errors: the result still carries a synthetic line so
// scripted delivery is not interrupted.
func (c *Client) Generate(ctx context.Context, req *interfaces.DialogueRequest) interfaces.DialogueResult {
	prompt, err := c.buildPrompt(req)
	if err != nil {
		return c.failure(fmt.Errorf("failed to build prompt: %w", err))
	}

	// The call holds the user's delivery path; never let it hang.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return c.failure(fmt.Errorf("chat completion failed: %w", err))
	}
	if len(resp.Choices) == 0 {
		return c.failure(fmt.Errorf("no choices returned from model"))
	}

	lines := c.parseLines(resp.Choices[0].Message.Content, req.Characters)
	if len(lines) == 0 {
		return c.failure(fmt.Errorf("model returned no usable lines"))
	}
	return interfaces.DialogueResult{Lines: lines}
}

func (c *Client) buildPrompt(req *interfaces.DialogueRequest) (string, error) {
	vars := map[string]string{
		"player":          c.playerName,
		"character_goals": prompts.FormatGoals(req.Characters),
		"transcript":      strings.Join(req.Transcript, "\n"),
		"user_input":      req.UserInput,
	}
	if req.PromptOverride != "" {
		return prompts.RenderContent(req.PromptOverride, vars), nil
	}
	return c.templates.Render(prompts.DialogueTemplateName, vars)
}

// parseLines splits raw model output into speaker-tagged lines. Empty lines
// are dropped. Speaker names are not validated against the roster, but
// mismatches are logged.
func (c *Client) parseLines(raw string, roster map[string]string) []interfaces.DialogueLine {
	var lines []interfaces.DialogueLine
	for _, part := range strings.Split(raw, "\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		speaker, text, found := strings.Cut(part, ":")
		if !found || strings.TrimSpace(speaker) == "" {
			lines = append(lines, interfaces.DialogueLine{Text: part})
			continue
		}

		speaker = strings.TrimSpace(speaker)
		if _, ok := roster[speaker]; !ok {
			log.Printf("[Gateway] Generated line for unknown speaker %q", speaker)
		}
		lines = append(lines, interfaces.DialogueLine{
			Speaker: speaker,
			Text:    strings.TrimSpace(text),
		})
	}
	return lines
}

func (c *Client) failure(err error) interfaces.DialogueResult {
	log.Printf("[Gateway] %v", err)
	return interfaces.DialogueResult{
		Lines: []interfaces.DialogueLine{{Text: fallbackLine}},
		Err:   err,
	}
}
