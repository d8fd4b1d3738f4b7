// Package present turns stored pixels into display-ready points: it
// derives each pixel's color from its stage vector, assembles projected
// positions, and filters point sets by time range.
package present

import (
	"math"
	"sort"
	"time"

	"github.com/beliefmap/pixels-go/pixel"
	"github.com/beliefmap/pixels-go/project"
	"github.com/beliefmap/pixels-go/store"
)

// Point is one display-ready projected pixel.
type Point struct {
	ID              string             `json:"id"`
	Position        project.Position   `json:"position"`
	Color           string             `json:"color"`
	Statement       string             `json:"statement"`
	Document        string             `json:"document"`
	ColorStage      *pixel.StageVector `json:"colorStage,omitempty"`
	ProminentStage  string             `json:"prominentStage,omitempty"`
	ConfidenceScore float64            `json:"confidenceScore,omitempty"`
	Timestamp       string             `json:"timestamp,omitempty"`
}

// MostProminentStage returns the stage with the largest absolute score.
// Ties go to the earlier stage in canonical order. A nil vector has no
// prominent stage; callers fall back to NeutralColor.
func MostProminentStage(v *pixel.StageVector) (string, bool) {
	if v == nil {
		return "", false
	}

	name := ""
	max := math.Inf(-1)
	for _, sv := range v.Values() {
		if abs := math.Abs(sv.Value); abs > max {
			max = abs
			name = sv.Name
		}
	}
	return name, true
}

// TopStagesByAbsoluteValue returns the k stages with the largest absolute
// scores, descending. Values keep their sign.
func TopStagesByAbsoluteValue(v *pixel.StageVector, k int) []pixel.StageValue {
	if v == nil || k <= 0 {
		return nil
	}

	values := v.Values()
	sort.SliceStable(values, func(i, j int) bool {
		return math.Abs(values[i].Value) > math.Abs(values[j].Value)
	})
	if k > len(values) {
		k = len(values)
	}
	return values[:k]
}

// BuildPoints projects every stored pixel into the display volume and
// colors it by its most prominent stage.
func BuildPoints(all *store.GetAllResult, scale float64) []Point {
	positions := project.NormalizePositions(project.ReduceTo3D(all.Embeddings), scale)

	points := make([]Point, 0, all.Len())
	for i, id := range all.IDs {
		point := Point{
			ID:        id,
			Position:  positions[i],
			Color:     NeutralColor,
			Statement: "Untitled Pixel",
		}
		if i < len(all.Documents) {
			point.Document = all.Documents[i]
		}

		if i < len(all.Metadatas) && all.Metadatas[i] != nil {
			md := all.Metadatas[i]
			if md.Statement != "" {
				point.Statement = md.Statement
			}
			point.ColorStage = md.ColorStage
			point.ConfidenceScore = md.ConfidenceScore
			point.Timestamp = md.Timestamp

			if stage, ok := MostProminentStage(md.ColorStage); ok {
				point.ProminentStage = stage
				point.Color = ColorForStage(stage)
			}
		}

		points = append(points, point)
	}
	return points
}

// FilterByTimeRange retains points whose timestamp falls within
// [start, end] inclusive. A point without a parseable timestamp is always
// excluded.
func FilterByTimeRange(points []Point, start, end time.Time) []Point {
	filtered := make([]Point, 0, len(points))
	for _, point := range points {
		ts, err := time.Parse(time.RFC3339, point.Timestamp)
		if err != nil {
			continue
		}
		if ts.Before(start) || ts.After(end) {
			continue
		}
		filtered = append(filtered, point)
	}
	return filtered
}
