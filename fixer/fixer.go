// Package fixer generates corrected source files for individual linter
// findings using an LLM. Each smell code maps to a focused instruction; the
// model receives the whole file and returns the whole rewritten file.
// Results are cached per (path, smell, line) so repeated previews of the
// same finding cost one API call.
package fixer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var (
	// ErrUnsupportedSmell is returned for smell codes without a prompt.
	ErrUnsupportedSmell = errors.New("fixer: unsupported smell code")

	// ErrEmptyFix is returned when the model produces no usable code.
	ErrEmptyFix = errors.New("fixer: model returned empty fix")
)

const systemPrompt = "You are a code-fixing assistant. Reply with the complete corrected file and nothing else: no explanations, no markdown fences."

// PromptFor builds the model instruction for a smell code, embedding the
// current file content. Returns ErrUnsupportedSmell for unknown codes.
func PromptFor(smellCode, content string) (string, error) {
	var instruction string
	switch {
	case smellCode == "C0114":
		instruction = "Add a one-liner *module* docstring at the very top."
	case smellCode == "C0115":
		instruction = "Add a one-liner *class* docstring."
	case smellCode == "C0301":
		instruction = "Refactor any line >100 chars so it complies with PEP-8."
	case smellCode == "C0303":
		instruction = "Refactor overly complex lines into simpler constructs."
	case smellCode == "C0411":
		instruction = "Move all import statements to the top of the file (PEP-8)."
	case smellCode == "C0412":
		instruction = "Replace the wildcard import with explicit names."
	case smellCode == "D0123":
		instruction = "Re-format all docstrings to follow PEP-257."
	case strings.HasPrefix(smellCode, "C041"), smellCode == "E0401":
		instruction = "Remove or fix any unused / unresolved imports."
	case strings.HasPrefix(smellCode, "E11"):
		instruction = fmt.Sprintf("Fix the %s attribute / call error shown below.", smellCode)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSmell, smellCode)
	}
	return fmt.Sprintf("%s\n\nFile content:\n\"\"\"%s\"\"\"", instruction, content), nil
}

// StripFences removes markdown code fences and surrounding whitespace from a
// model reply.
func StripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```python", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

type cacheKey struct {
	path  string
	smell string
	line  int
}

// Generator produces fixes through the OpenAI API.
type Generator struct {
	client openai.Client
	model  string

	mu    sync.Mutex
	cache map[cacheKey]string
}

// Option configures a Generator.
type Option func(*config)

type config struct {
	model   string
	baseURL string
}

// WithModel overrides the model. Default: gpt-4o-mini.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithBaseURL overrides the API base URL (for testing or proxies).
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = u }
}

// New creates a Generator with the given API key.
func New(apiKey string, opts ...Option) *Generator {
	cfg := config{model: "gpt-4o-mini"}
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(3),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &Generator{
		client: openai.NewClient(clientOpts...),
		model:  cfg.model,
		cache:  make(map[cacheKey]string),
	}
}

// Preview generates the fixed file content for one finding without touching
// the file on disk.
func (g *Generator) Preview(ctx context.Context, path, smellCode string, line int) (string, error) {
	return g.fix(ctx, path, smellCode, line, false)
}

// Apply generates the fixed file content and writes it back to path.
func (g *Generator) Apply(ctx context.Context, path, smellCode string, line int) (string, error) {
	return g.fix(ctx, path, smellCode, line, true)
}

func (g *Generator) fix(ctx context.Context, path, smellCode string, line int, save bool) (string, error) {
	key := cacheKey{path: path, smell: smellCode, line: line}

	g.mu.Lock()
	cached, ok := g.cache[key]
	g.mu.Unlock()
	if ok {
		if save {
			if err := os.WriteFile(path, []byte(cached), 0o644); err != nil {
				return "", fmt.Errorf("fixer: write fix: %w", err)
			}
		}
		return cached, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("fixer: read %s: %w", path, err)
	}

	prompt, err := PromptFor(smellCode, string(content))
	if err != nil {
		return "", err
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("fixer: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyFix
	}

	fixed := StripFences(resp.Choices[0].Message.Content)
	if fixed == "" {
		return "", ErrEmptyFix
	}

	if save {
		if err := os.WriteFile(path, []byte(fixed), 0o644); err != nil {
			return "", fmt.Errorf("fixer: write fix: %w", err)
		}
	}

	g.mu.Lock()
	g.cache[key] = fixed
	g.mu.Unlock()

	return fixed, nil
}
