// Command sample-data emits one month of synthetic pixels as batch-import
// JSON. The month walks through all ten stages in order, three days per
// stage, with the third day blending into the next stage. Useful for
// exercising the projection view without real chat history.
//
// Usage:
//
//	sample-data > sample-month.json
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/beliefmap/pixels-go/pipeline"
	"github.com/beliefmap/pixels-go/pixel"
)

type sampleStatement struct {
	statement string
	context   string
}

// Three statements per stage, in canonical stage order.
var statementsByStage = map[string][]sampleStatement{
	"beige": {
		{"I don't know how I'm going to pay rent this month", "Focused on immediate survival, unable to think past the present."},
		{"Every day feels like a struggle just to keep going", "Operating at the most basic level of existence."},
		{"I have no one to turn to when things get really bad", "Feeling isolated and without any support system."},
	},
	"purple": {
		{"I moved to a new city and everyone already has their groups", "Seeking belonging and connection but feeling excluded."},
		{"I change my behavior based on my partner's reactions", "Adapting to fit in and keep approval in the relationship."},
		{"My friend group is drifting apart and I can't hold it together", "Watching the tribe fragment and feeling powerless."},
	},
	"red": {
		{"Everyone expects you to answer work emails at 11pm", "Frustrated with power dynamics and boundary pressure."},
		{"We keep having the same argument over and over", "Stuck in power struggles with no way to break the cycle."},
		{"My manager keeps changing the requirements mid-sprint", "Feeling controlled by constant changes from above."},
	},
	"blue": {
		{"I'm the only one on the team who writes tests", "Committed to standards and process but unsupported."},
		{"I need better boundaries to protect my work-life balance", "Reaching for structure and rules to guard time and energy."},
		{"I want to be more intentional about who I spend time with", "Building structure into social connections."},
	},
	"orange": {
		{"I want to get promoted this year and stand out", "Achievement-driven and measuring progress against peers."},
		{"I need to optimize my workflow for better results", "Focused on efficiency and measurable outcomes."},
		{"I'm tracking goals and metrics across every area of my life", "Goal-oriented and competitive about self-improvement."},
	},
	"green": {
		{"I want a work environment where everyone feels heard", "Valuing inclusion and consensus over competition."},
		{"I'm learning to listen more deeply to my partner's needs", "Seeking mutual understanding and harmony."},
		{"I want a community where people can be their authentic selves", "Building supportive, inclusive connection."},
	},
	"yellow": {
		{"I'm seeing how the systems at work interconnect", "Noticing patterns and relationships between parts."},
		{"I adapt my approach to what the situation actually needs", "Moving past rigid plans toward responsive systems."},
		{"My relationship patterns connect to larger life patterns", "Thinking systemically about personal growth."},
	},
	"turquoise": {
		{"My work contributes to larger patterns of human development", "Seeing individual effort inside a collective whole."},
		{"My community is part of a global network of human growth", "Local connection as an expression of universal patterns."},
		{"Love connects all beings beyond individual relationships", "Experiencing connection as a universal principle."},
	},
	"coral": {
		{"Work integrates survival, achievement, harmony, and transcendence", "Holding every mode of development inside one practice."},
		{"My relationship includes every stage of the journey at once", "Experiencing love as a complete, fluid practice."},
		{"Community should honor every stage of everyone's journey", "Making space for all human experience at once."},
	},
	"teal": {
		{"Work flows effortlessly from presence and purpose", "Productivity arising naturally from being present."},
		{"Love is a natural state that needs no strategy", "Fully present in connection without managing it."},
		{"Work, love, and community are one seamless expression", "Experiencing all of life as a single flow."},
	},
}

func main() {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	entries := make([]pipeline.ImportEntry, 0, 30)
	for day := 0; day < 30; day++ {
		stageIdx := day / 3
		if stageIdx >= len(pixel.StageNames) {
			stageIdx = len(pixel.StageNames) - 1
		}
		stage := pixel.StageNames[stageIdx]

		sample := statementsByStage[stage][day%3]
		value := 0.6 + rng.Float64()*0.3

		colorStage := stageVector(stage, value)
		// The last day of each stage leans toward the next one.
		if day%3 == 2 && stageIdx+1 < len(pixel.StageNames) {
			blend := stageVector(pixel.StageNames[stageIdx+1], value*0.5)
			colorStage = addVectors(colorStage, blend)
		}

		ts := start.AddDate(0, 0, day).Add(time.Duration(rng.IntN(10)) * time.Hour)
		entries = append(entries, pipeline.ImportEntry{
			Timestamp: pixel.Timestamp(ts),
			Pixel: &pipeline.ImportDraft{
				Statement:       sample.statement,
				Context:         sample.context,
				Explanation:     fmt.Sprintf("Synthetic sample pixel centered on the %s stage.", stage),
				ColorStage:      colorStage,
				ConfidenceScore: 0.5 + rng.Float64()*0.4,
			},
		})
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	if err := out.Encode(entries); err != nil {
		log.Fatalf("encode sample data: %v", err)
	}
}

func stageVector(stage string, value float64) *pixel.StageVector {
	v := &pixel.StageVector{}
	switch stage {
	case "beige":
		v.Beige = value
	case "purple":
		v.Purple = value
	case "red":
		v.Red = value
	case "blue":
		v.Blue = value
	case "orange":
		v.Orange = value
	case "green":
		v.Green = value
	case "yellow":
		v.Yellow = value
	case "turquoise":
		v.Turquoise = value
	case "coral":
		v.Coral = value
	case "teal":
		v.Teal = value
	}
	return v
}

func addVectors(a, b *pixel.StageVector) *pixel.StageVector {
	return &pixel.StageVector{
		Beige:     a.Beige + b.Beige,
		Purple:    a.Purple + b.Purple,
		Red:       a.Red + b.Red,
		Blue:      a.Blue + b.Blue,
		Orange:    a.Orange + b.Orange,
		Green:     a.Green + b.Green,
		Yellow:    a.Yellow + b.Yellow,
		Turquoise: a.Turquoise + b.Turquoise,
		Coral:     a.Coral + b.Coral,
		Teal:      a.Teal + b.Teal,
	}
}
