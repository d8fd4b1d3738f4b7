// Package extract turns a conversation into a belief-pixel extraction
// result by prompting a Claude model and strictly parsing its reply.
//
// Parsing is a two-stage pipeline: a pure text normalization step strips
// code fences, then a schema-validated parse produces the tagged
// pixel/no-pixel result. Malformed output is always an *Error carrying the
// raw response text; it is never coerced into a no-pixel result.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/beliefmap/pixels-go/pixel"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

// Message is one conversation turn handed to the extractor.
type Message struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a fragment of a message. Only text parts contribute to the
// transcript; other kinds (images, tool calls) flatten to nothing.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Error reports an extraction failure: a provider error, unparseable model
// output, or output that fails schema validation. Raw holds the model's
// unmodified response text when one was received.
type Error struct {
	Op  string
	Raw string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Extractor invokes the model once per batch with a fixed system prompt.
// No retries happen here; the caller re-submits the whole batch on failure.
type Extractor struct {
	client       *anthropic.Client
	model        string
	maxTokens    int64
	systemPrompt string
}

// Option configures the extractor.
type Option func(*Extractor)

// WithModel overrides the Claude model.
func WithModel(model string) Option {
	return func(e *Extractor) {
		e.model = model
	}
}

// WithMaxTokens overrides the maximum response tokens.
func WithMaxTokens(n int64) Option {
	return func(e *Extractor) {
		e.maxTokens = n
	}
}

// WithSystemPrompt replaces the built-in belief-extraction prompt.
func WithSystemPrompt(prompt string) Option {
	return func(e *Extractor) {
		e.systemPrompt = prompt
	}
}

// New creates an extractor with the given Anthropic client.
func New(client *anthropic.Client, opts ...Option) *Extractor {
	e := &Extractor{
		client:       client,
		model:        defaultModel,
		maxTokens:    defaultMaxTokens,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract flattens the conversation, calls the model once, and parses the
// response into a pixel or no-pixel result.
func (e *Extractor) Extract(ctx context.Context, messages []Message) (*pixel.ExtractionResult, error) {
	transcript := Transcript(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Chat log:\n" + transcript)),
		},
		System: []anthropic.TextBlockParam{
			{Text: e.systemPrompt},
		},
	}

	resp, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &Error{Op: "model call", Err: err}
	}

	var raw string
	for _, block := range resp.Content {
		if block.Type == "text" {
			raw += block.Text
		}
	}

	return Parse(raw)
}

// Parse normalizes raw model output and parses it into a validated
// extraction result. Exposed separately so tests and replays can skip the
// provider call.
func Parse(raw string) (*pixel.ExtractionResult, error) {
	cleaned := StripFences(raw)

	var result pixel.ExtractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &Error{Op: "parse model output", Raw: raw, Err: err}
	}
	if err := result.Validate(); err != nil {
		return nil, &Error{Op: "validate model output", Raw: raw, Err: err}
	}
	return &result, nil
}

// StripFences removes a leading ```json fence marker and the matching
// trailing fence, then trims surrounding whitespace. Text without fences
// passes through unchanged.
func StripFences(s string) string {
	s = strings.Replace(s, "```json", "", 1)
	s = strings.Replace(s, "```", "", 1)
	return strings.TrimSpace(s)
}

// Transcript flattens a conversation into one line per message, each line
// being the role followed by the message's text parts joined with spaces.
// An empty conversation yields the literal placeholder "No messages".
func Transcript(messages []Message) string {
	if len(messages) == 0 {
		return "No messages"
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		texts := make([]string, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			if part.Type == "text" {
				texts = append(texts, part.Text)
			} else {
				texts = append(texts, "")
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, strings.Join(texts, " ")))
	}
	return strings.Join(lines, "\n")
}
