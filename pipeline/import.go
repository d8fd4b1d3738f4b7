package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/beliefmap/pixels-go/pixel"
	"github.com/beliefmap/pixels-go/store"
)

// ValidationError reports a malformed batch-import entry. One entry's
// failure never aborts the rest of the import.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid import entry: %s", e.Msg)
}

// ImportEntry is one item of a bulk pixel import. Text and Timestamp are
// optional: text defaults to the canonical document encoding and the
// timestamp defaults to now.
type ImportEntry struct {
	Text      string       `json:"text,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
	Pixel     *ImportDraft `json:"pixel"`
}

// ImportDraft mirrors the extraction pixel shape with laxer requirements:
// imports of historical data may omit explanation, confidence, and flags.
type ImportDraft struct {
	Statement        string             `json:"statement"`
	Context          string             `json:"context"`
	Explanation      string             `json:"explanation,omitempty"`
	ColorStage       *pixel.StageVector `json:"color_stage"`
	ConfidenceScore  float64            `json:"confidence_score,omitempty"`
	TooNuanced       bool               `json:"too_nuanced,omitempty"`
	AbsoluteThinking bool               `json:"absolute_thinking,omitempty"`
}

// ImportSummary counts the outcome of a bulk import.
type ImportSummary struct {
	Succeeded int
	Failed    int
	Total     int
}

// Importer stores out-of-band pixels for a user, one entry at a time.
type Importer struct {
	store store.Store
	now   func() time.Time
}

// NewImporter creates an importer over the given store.
func NewImporter(s store.Store) *Importer {
	return &Importer{store: s, now: time.Now}
}

// Import processes every entry independently: a failed entry is logged and
// counted but never stops the remaining entries. Callers decide whether a
// non-zero failure count is fatal.
func (im *Importer) Import(ctx context.Context, userID string, entries []ImportEntry) *ImportSummary {
	summary := &ImportSummary{Total: len(entries)}

	for i, entry := range entries {
		if err := im.importEntry(ctx, userID, &entry); err != nil {
			summary.Failed++
			log.Printf("[IMPORT] [%d/%d] Failed: %v", i+1, len(entries), err)
			continue
		}
		summary.Succeeded++
		log.Printf("[IMPORT] [%d/%d] Imported: %q", i+1, len(entries), truncate(entry.Pixel.Statement, 50))
	}

	return summary
}

func (im *Importer) importEntry(ctx context.Context, userID string, entry *ImportEntry) error {
	if entry.Pixel == nil {
		return &ValidationError{Msg: "missing 'pixel' field"}
	}
	draft := entry.Pixel
	if draft.Statement == "" {
		return &ValidationError{Msg: "missing 'pixel.statement' field"}
	}
	if draft.Context == "" {
		return &ValidationError{Msg: "missing 'pixel.context' field"}
	}
	if draft.ColorStage == nil {
		return &ValidationError{Msg: "missing 'pixel.color_stage' field"}
	}
	if err := draft.ColorStage.Validate(); err != nil {
		return &ValidationError{Msg: err.Error()}
	}

	timestamp := pixel.Timestamp(im.now())
	if entry.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			return &ValidationError{Msg: fmt.Sprintf("invalid timestamp %q: must be ISO 8601 (e.g. 2024-01-15T10:30:00Z)", entry.Timestamp)}
		}
		timestamp = pixel.Timestamp(parsed)
	}

	documentText := entry.Text
	if documentText == "" {
		documentText = fmt.Sprintf("context: %s\nstatement: %s", draft.Context, draft.Statement)
	}

	metadata := &pixel.Metadata{
		Statement:        draft.Statement,
		Context:          draft.Context,
		Explanation:      draft.Explanation,
		ColorStage:       draft.ColorStage,
		ConfidenceScore:  draft.ConfidenceScore,
		TooNuanced:       draft.TooNuanced,
		AbsoluteThinking: draft.AbsoluteThinking,
		ChatID:           "", // empty for out-of-band imports
		UserEmail:        "",
		Timestamp:        timestamp,
	}

	if err := im.store.Add(ctx, userID, documentText, metadata, uuid.New().String()); err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
