// Package pixel defines the belief-pixel data model: the ten-dimensional
// developmental stage vector, the extraction result shape, and the flat
// metadata encoding used by the vector store.
//
// A pixel is a single extracted belief statement scored against the ten
// Spiral Dynamics stages. Pixels are append-only: once stored they are never
// mutated, only deleted by their owning user.
package pixel

import (
	"encoding/json"
	"fmt"
	"time"
)

// StageNames is the canonical dimension order. Ties in prominence
// comparisons are broken by position in this list.
var StageNames = []string{
	"beige",
	"purple",
	"red",
	"blue",
	"orange",
	"green",
	"yellow",
	"turquoise",
	"coral",
	"teal",
}

// StageVector scores a belief against the ten developmental stages.
// Values lie in [-1, 1]: positive means aligned with the stage, negative
// means counter-aligned.
type StageVector struct {
	Beige     float64 `json:"beige"`
	Purple    float64 `json:"purple"`
	Red       float64 `json:"red"`
	Blue      float64 `json:"blue"`
	Orange    float64 `json:"orange"`
	Green     float64 `json:"green"`
	Yellow    float64 `json:"yellow"`
	Turquoise float64 `json:"turquoise"`
	Coral     float64 `json:"coral"`
	Teal      float64 `json:"teal"`
}

// StageValue pairs a stage name with its score.
type StageValue struct {
	Name  string
	Value float64
}

// Values returns all ten scores in canonical stage order.
func (v StageVector) Values() []StageValue {
	return []StageValue{
		{"beige", v.Beige},
		{"purple", v.Purple},
		{"red", v.Red},
		{"blue", v.Blue},
		{"orange", v.Orange},
		{"green", v.Green},
		{"yellow", v.Yellow},
		{"turquoise", v.Turquoise},
		{"coral", v.Coral},
		{"teal", v.Teal},
	}
}

// Value returns the score for a stage name.
func (v StageVector) Value(name string) (float64, bool) {
	for _, sv := range v.Values() {
		if sv.Name == name {
			return sv.Value, true
		}
	}
	return 0, false
}

// UnmarshalJSON requires every stage dimension to be present. A vector
// missing a dimension is a validation failure, not a zero score.
func (v *StageVector) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, name := range StageNames {
		if _, ok := raw[name]; !ok {
			return fmt.Errorf("stage vector missing dimension %q", name)
		}
	}

	v.Beige = raw["beige"]
	v.Purple = raw["purple"]
	v.Red = raw["red"]
	v.Blue = raw["blue"]
	v.Orange = raw["orange"]
	v.Green = raw["green"]
	v.Yellow = raw["yellow"]
	v.Turquoise = raw["turquoise"]
	v.Coral = raw["coral"]
	v.Teal = raw["teal"]
	return nil
}

// Validate checks that every score lies in [-1, 1].
func (v StageVector) Validate() error {
	for _, sv := range v.Values() {
		if sv.Value < -1 || sv.Value > 1 {
			return fmt.Errorf("stage %q out of range: %v (want [-1, 1])", sv.Name, sv.Value)
		}
	}
	return nil
}

// Encode serializes the vector to its JSON string form for flat metadata
// storage. Readers use DecodeStageVector; callers never hand-parse it.
func (v StageVector) Encode() (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode stage vector: %w", err)
	}
	return string(b), nil
}

// DecodeStageVector parses the serialized form produced by Encode.
func DecodeStageVector(s string) (StageVector, error) {
	var v StageVector
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return StageVector{}, fmt.Errorf("decode stage vector: %w", err)
	}
	return v, nil
}

// Draft is an extracted pixel before storage: it carries the belief content
// and scoring but no id, embedding, or timestamp.
type Draft struct {
	Statement        string      `json:"statement"`
	Context          string      `json:"context"`
	Explanation      string      `json:"explanation"`
	ColorStage       StageVector `json:"color_stage"`
	ConfidenceScore  float64     `json:"confidence_score"`
	TooNuanced       bool        `json:"too_nuanced"`
	AbsoluteThinking bool        `json:"absolute_thinking"`
}

// UnmarshalJSON rejects drafts that omit color_stage entirely; a plain
// struct decode would silently read that as an all-zero vector.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if _, ok := keys["color_stage"]; !ok {
		return fmt.Errorf("pixel missing color_stage")
	}

	type draftAlias Draft
	var a draftAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = Draft(a)
	return nil
}

// Validate checks the draft against the extraction schema.
func (d *Draft) Validate() error {
	if d.Statement == "" {
		return fmt.Errorf("pixel statement is required")
	}
	if d.Context == "" {
		return fmt.Errorf("pixel context is required")
	}
	if d.ConfidenceScore < 0.1 || d.ConfidenceScore > 1.0 {
		return fmt.Errorf("confidence_score out of range: %v (want [0.1, 1.0])", d.ConfidenceScore)
	}
	if err := d.ColorStage.Validate(); err != nil {
		return fmt.Errorf("color_stage: %w", err)
	}
	return nil
}

// DocumentText returns the canonical text encoding of the draft, the exact
// form that gets embedded and stored as the record's document.
func (d *Draft) DocumentText() string {
	return fmt.Sprintf("context: %s\nstatement: %s", d.Context, d.Statement)
}

// ExtractionResult is the tagged union produced by the extractor: either a
// pixel draft or a deliberate no-pixel outcome with an optional reason.
type ExtractionResult struct {
	Pixel   *Draft `json:"pixel,omitempty"`
	NoPixel bool   `json:"no_pixel,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Validate enforces that exactly one branch of the union is populated and
// that a populated pixel branch satisfies the draft schema.
func (r *ExtractionResult) Validate() error {
	if r.Pixel == nil && !r.NoPixel {
		return fmt.Errorf("extraction result has neither pixel nor no_pixel")
	}
	if r.Pixel != nil && r.NoPixel {
		return fmt.Errorf("extraction result has both pixel and no_pixel")
	}
	if r.Pixel != nil {
		if err := r.Pixel.Validate(); err != nil {
			return fmt.Errorf("pixel: %w", err)
		}
	}
	return nil
}

// Timestamp formats a creation instant the way stored records carry it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
