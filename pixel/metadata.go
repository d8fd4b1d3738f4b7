package pixel

import (
	"fmt"
	"strconv"
)

// Metadata is the structured view of a stored pixel's flat metadata.
// The vector store only accepts string values, so Encode flattens this
// struct (the stage vector becomes one JSON string field) and Decode
// rebuilds it. The flattening is a storage-edge concern; everything above
// the store works with this typed form.
type Metadata struct {
	Statement        string
	Context          string
	Explanation      string
	ColorStage       *StageVector
	ConfidenceScore  float64
	TooNuanced       bool
	AbsoluteThinking bool

	// ChatID and UserEmail record provenance. Both are empty for
	// out-of-band imports.
	ChatID    string
	UserEmail string

	// Timestamp is the RFC 3339 creation instant. Kept as a string so a
	// record with an unparseable timestamp survives decoding; time-range
	// filters exclude such records instead.
	Timestamp string
}

// Encode flattens the metadata into the string map the vector store accepts.
func (m *Metadata) Encode() (map[string]string, error) {
	if m.ColorStage == nil {
		return nil, fmt.Errorf("metadata missing color stage")
	}
	colorStage, err := m.ColorStage.Encode()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"statement":         m.Statement,
		"context":           m.Context,
		"explanation":       m.Explanation,
		"color_stage":       colorStage,
		"confidence_score":  strconv.FormatFloat(m.ConfidenceScore, 'g', -1, 64),
		"too_nuanced":       strconv.FormatBool(m.TooNuanced),
		"absolute_thinking": strconv.FormatBool(m.AbsoluteThinking),
		"chatId":            m.ChatID,
		"userEmail":         m.UserEmail,
		"timestamp":         m.Timestamp,
	}, nil
}

// DecodeMetadata rebuilds the structured view from a stored string map.
// Decoding is lenient: a malformed color_stage leaves ColorStage nil (the
// presenter falls back to a neutral color) and malformed numerics decode to
// their zero value, so one bad field never hides the rest of the record.
func DecodeMetadata(raw map[string]string) *Metadata {
	m := &Metadata{
		Statement:   raw["statement"],
		Context:     raw["context"],
		Explanation: raw["explanation"],
		ChatID:      raw["chatId"],
		UserEmail:   raw["userEmail"],
		Timestamp:   raw["timestamp"],
	}

	if s, ok := raw["color_stage"]; ok && s != "" {
		if v, err := DecodeStageVector(s); err == nil {
			m.ColorStage = &v
		}
	}
	if s, ok := raw["confidence_score"]; ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			m.ConfidenceScore = f
		}
	}
	if s, ok := raw["too_nuanced"]; ok {
		if b, err := strconv.ParseBool(s); err == nil {
			m.TooNuanced = b
		}
	}
	if s, ok := raw["absolute_thinking"]; ok {
		if b, err := strconv.ParseBool(s); err == nil {
			m.AbsoluteThinking = b
		}
	}

	return m
}
