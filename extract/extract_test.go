package extract_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/beliefmap/pixels-go/extract"
)

func TestTranscript(t *testing.T) {
	if got := extract.Transcript(nil); got != "No messages" {
		t.Errorf("empty conversation = %q, want %q", got, "No messages")
	}

	messages := []extract.Message{
		{
			ID:   "m1",
			Role: "user",
			Parts: []extract.Part{
				{Type: "text", Text: "I feel like"},
				{Type: "text", Text: "I never do enough at work"},
			},
		},
		{
			ID:   "m2",
			Role: "assistant",
			Parts: []extract.Part{
				{Type: "text", Text: "What makes you feel that way?"},
			},
		},
	}

	got := extract.Transcript(messages)
	want := "user: I feel like I never do enough at work\nassistant: What makes you feel that way?"
	if got != want {
		t.Errorf("transcript = %q, want %q", got, want)
	}
}

func TestTranscriptNonTextParts(t *testing.T) {
	messages := []extract.Message{
		{
			ID:   "m1",
			Role: "user",
			Parts: []extract.Part{
				{Type: "image"},
				{Type: "text", Text: "hello"},
			},
		},
	}

	// Non-text parts contribute empty strings but keep their join slot.
	got := extract.Transcript(messages)
	want := "user:  hello"
	if got != want {
		t.Errorf("transcript = %q, want %q", got, want)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"fenced", "```json\n{\"no_pixel\": true}\n```", `{"no_pixel": true}`},
		{"unfenced", `{"no_pixel": true}`, `{"no_pixel": true}`},
		{"whitespace", "  \n{\"no_pixel\": true}\n ", `{"no_pixel": true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extract.StripFences(tc.in); got != tc.want {
				t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

const validPixelJSON = `{
  "pixel": {
    "statement": "I never do enough at work",
    "context": "Discussing workload pressure",
    "explanation": "Achievement-driven self-worth",
    "color_stage": {"beige":0,"purple":0,"red":0,"blue":0,"orange":0.8,"green":0,"yellow":0,"turquoise":0,"coral":0,"teal":0},
    "confidence_score": 0.7,
    "too_nuanced": false,
    "absolute_thinking": true
  }
}`

func TestParsePixel(t *testing.T) {
	result, err := extract.Parse("```json\n" + validPixelJSON + "\n```")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.NoPixel {
		t.Fatal("expected pixel branch, got no_pixel")
	}
	if result.Pixel == nil {
		t.Fatal("pixel is nil")
	}
	if result.Pixel.Statement != "I never do enough at work" {
		t.Errorf("statement = %q", result.Pixel.Statement)
	}
	if result.Pixel.ColorStage.Orange != 0.8 {
		t.Errorf("orange = %v, want 0.8", result.Pixel.ColorStage.Orange)
	}
	if !result.Pixel.AbsoluteThinking {
		t.Error("absolute_thinking should be true")
	}
}

func TestParseNoPixel(t *testing.T) {
	result, err := extract.Parse(`{"no_pixel": true, "reason": "small talk only"}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !result.NoPixel {
		t.Error("expected no_pixel branch")
	}
	if result.Reason != "small talk only" {
		t.Errorf("reason = %q", result.Reason)
	}
	if result.Pixel != nil {
		t.Error("pixel should be nil for no_pixel result")
	}
}

func TestParseMalformedKeepsRaw(t *testing.T) {
	raw := "I could not produce JSON, sorry."
	_, err := extract.Parse(raw)
	if err == nil {
		t.Fatal("expected parse error for non-JSON output")
	}

	var extErr *extract.Error
	if !errors.As(err, &extErr) {
		t.Fatalf("error is %T, want *extract.Error", err)
	}
	if extErr.Raw != raw {
		t.Errorf("Raw = %q, want original text", extErr.Raw)
	}
}

func TestParseValidationFailureIsError(t *testing.T) {
	// A missing dimension is a schema violation, never a no-pixel result.
	bad := `{"pixel": {"statement": "x", "context": "y", "explanation": "",
	  "color_stage": {"beige":0,"purple":0,"red":0,"blue":0,"orange":0,"green":0,"yellow":0,"turquoise":0,"coral":0},
	  "confidence_score": 0.5, "too_nuanced": false, "absolute_thinking": false}}`
	_, err := extract.Parse(bad)
	if err == nil {
		t.Fatal("expected validation error for incomplete stage vector")
	}
	if !strings.Contains(err.Error(), "teal") {
		t.Errorf("error should name the missing dimension, got: %v", err)
	}
}

func TestParseEmptyUnionIsError(t *testing.T) {
	_, err := extract.Parse(`{}`)
	if err == nil {
		t.Fatal("expected error for result with neither branch")
	}
}
