package prompts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// DialogueTemplateName is the default template used for character dialogue.
const DialogueTemplateName = "character_dialogue"

// Engine manages prompt templates
type Engine struct {
	templates map[string]*Template
	mu        sync.RWMutex
}

// Template represents a prompt template with {{variable}} placeholders
type Template struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

var varRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// NewEngine creates a template engine with the default dialogue template
// registered.
func NewEngine() *Engine {
	e := &Engine{templates: make(map[string]*Template)}
	e.Register(&Template{
		Name:        DialogueTemplateName,
		Description: "Default template for in-character dialogue replies",
		Content: `You are voicing the non-player characters of an interactive horror story
told over a messenger chat. {{player}} is the player's character; never
write lines for {{player}}.

## Characters and their goals
{{character_goals}}

## Conversation so far
{{transcript}}

## {{player}} writes
{{user_input}}

Reply as one or more of the named characters, as if texting. Keep each
message short. Format every line exactly as "Name: message" and output
nothing else.`,
	})
	return e
}

// Register registers a template, replacing any previous one with that name.
func (e *Engine) Register(tmpl *Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[tmpl.Name] = tmpl
}

// Render renders a registered template with the given variables.
func (e *Engine) Render(name string, vars map[string]string) (string, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}
	return RenderContent(tmpl.Content, vars), nil
}

// RenderContent renders raw template content with the given variables.
// Unknown placeholders are kept as-is. Used for per-step prompt overrides.
func RenderContent(content string, vars map[string]string) string {
	return varRegex.ReplaceAllStringFunc(content, func(match string) string {
		name := varRegex.FindStringSubmatch(match)[1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// FormatGoals renders a character-goal mapping as "Name: goal" lines in a
// stable order.
func FormatGoals(goals map[string]string) string {
	names := make([]string, 0, len(goals))
	for name := range goals {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+goals[name])
	}
	return strings.Join(lines, "\n")
}
