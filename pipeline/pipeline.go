// Package pipeline orchestrates extraction and storage for inbound chat
// batches, and bulk-imports pixels from out-of-band sources.
//
// The coordinator upholds one ordering contract: a pixel's durable storage
// is a precondition for marking its source messages processed. A storage
// failure therefore aborts the batch before any message is marked, which
// makes blind retry of the whole batch safe (at the cost of a possible
// duplicate pixel when a crash lands between store and mark).
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/beliefmap/pixels-go/extract"
	"github.com/beliefmap/pixels-go/pixel"
	"github.com/beliefmap/pixels-go/store"
)

// Extractor is the part of the extraction component the coordinator needs.
type Extractor interface {
	Extract(ctx context.Context, messages []extract.Message) (*pixel.ExtractionResult, error)
}

// MessageMarker records that chat messages have been considered for
// extraction. It is an external collaborator backed by the chat transcript
// store.
type MessageMarker interface {
	MarkProcessed(ctx context.Context, messageIDs []string) error
}

// Batch is one inbound unit of chat messages to process for a user.
type Batch struct {
	ChatID    string            `json:"chatId"`
	UserID    string            `json:"userId"`
	UserEmail string            `json:"userEmail"`
	Messages  []extract.Message `json:"messages"`
}

// Result reports a successfully processed batch.
type Result struct {
	// Extraction is the model's pixel or no-pixel outcome.
	Extraction *pixel.ExtractionResult `json:"extraction"`

	// StoredPixelID is the id of the newly stored pixel, empty when the
	// batch yielded no pixel.
	StoredPixelID string `json:"storedPixelId,omitempty"`
}

// Coordinator sequences extract -> store -> mark for each batch.
type Coordinator struct {
	extractor Extractor
	store     store.Store
	marker    MessageMarker
	now       func() time.Time
}

// New creates a coordinator. marker may be nil for out-of-band callers
// that have no transcript store to update.
func New(extractor Extractor, s store.Store, marker MessageMarker) *Coordinator {
	return &Coordinator{
		extractor: extractor,
		store:     s,
		marker:    marker,
		now:       time.Now,
	}
}

// Process runs one batch end to end. On any error the batch is considered
// failed as a whole: no message is marked processed and the caller may
// retry the identical batch.
func (c *Coordinator) Process(ctx context.Context, batch *Batch) (*Result, error) {
	log.Printf("[PIPELINE] Processing batch: chat=%s user=%s messages=%d",
		batch.ChatID, batch.UserID, len(batch.Messages))

	extraction, err := c.extractor.Extract(ctx, batch.Messages)
	if err != nil {
		return nil, fmt.Errorf("extract batch: %w", err)
	}

	result := &Result{Extraction: extraction}

	if extraction.Pixel != nil {
		draft := extraction.Pixel
		colorStage := draft.ColorStage

		metadata := &pixel.Metadata{
			Statement:        draft.Statement,
			Context:          draft.Context,
			Explanation:      draft.Explanation,
			ColorStage:       &colorStage,
			ConfidenceScore:  draft.ConfidenceScore,
			TooNuanced:       draft.TooNuanced,
			AbsoluteThinking: draft.AbsoluteThinking,
			ChatID:           batch.ChatID,
			UserEmail:        batch.UserEmail,
			Timestamp:        pixel.Timestamp(c.now()),
		}

		id := uuid.New().String()

		// The store call must complete before any message is marked
		// processed. A failure here aborts the batch so retrying it
		// cannot lose the pixel.
		if err := c.store.Add(ctx, batch.UserID, draft.DocumentText(), metadata, id); err != nil {
			return nil, fmt.Errorf("store pixel: %w", err)
		}

		result.StoredPixelID = id
		log.Printf("[PIPELINE] Pixel stored: id=%s user=%s", id, batch.UserID)
	} else {
		log.Printf("[PIPELINE] No pixel extracted: %s", extraction.Reason)
	}

	ids := messageIDs(batch.Messages)
	if len(ids) > 0 && c.marker != nil {
		if err := c.marker.MarkProcessed(ctx, ids); err != nil {
			return nil, fmt.Errorf("mark messages processed: %w", err)
		}
		log.Printf("[PIPELINE] Marked %d messages processed", len(ids))
	}

	return result, nil
}

// messageIDs collects the non-empty message ids of a batch.
func messageIDs(messages []extract.Message) []string {
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.ID != "" {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}
