// Package emotion holds the classroom emotion taxonomy and the per-tick transition engine.
package emotion

import (
	"fmt"

	"github.com/easeaico/classroom-pulse/internal/types"
)

// Display is the presentation metadata of one emotion.
type Display struct {
	Label      string `json:"label"`
	Emoji      string `json:"emoji"`
	ColorClass string `json:"color_class"`
}

// Describe returns the display metadata for e. It panics on values outside the taxonomy.
func Describe(e types.Emotion) Display {
	switch e {
	case types.EmotionHappy:
		return Display{Label: "Happy", Emoji: "😊", ColorClass: "bg-green-500/20 text-green-500 border-green-500/50"}
	case types.EmotionEngaged:
		return Display{Label: "Engaged", Emoji: "🎯", ColorClass: "bg-blue-500/20 text-blue-500 border-blue-500/50"}
	case types.EmotionNeutral:
		return Display{Label: "Neutral", Emoji: "😐", ColorClass: "bg-slate-500/20 text-slate-400 border-slate-500/50"}
	case types.EmotionConfused:
		return Display{Label: "Confused", Emoji: "😕", ColorClass: "bg-orange-500/20 text-orange-500 border-orange-500/50"}
	case types.EmotionBored:
		return Display{Label: "Bored", Emoji: "😴", ColorClass: "bg-gray-500/20 text-gray-500 border-gray-500/50"}
	case types.EmotionFrustrated:
		return Display{Label: "Frustrated", Emoji: "😤", ColorClass: "bg-red-500/20 text-red-500 border-red-500/50"}
	default:
		panic(fmt.Sprintf("emotion: unknown emotion %q", string(e)))
	}
}

// Rank orders emotions from least to most positive:
// frustrated < bored < confused < neutral < happy < engaged.
func Rank(e types.Emotion) int {
	switch e {
	case types.EmotionFrustrated:
		return 0
	case types.EmotionBored:
		return 1
	case types.EmotionConfused:
		return 2
	case types.EmotionNeutral:
		return 3
	case types.EmotionHappy:
		return 4
	case types.EmotionEngaged:
		return 5
	default:
		return -1
	}
}

// IsPositive reports whether e is in the subset interventions nudge students toward.
func IsPositive(e types.Emotion) bool {
	switch e {
	case types.EmotionHappy, types.EmotionEngaged, types.EmotionNeutral:
		return true
	default:
		return false
	}
}

// PositiveEmotions returns the intervention target subset.
func PositiveEmotions() []types.Emotion {
	return []types.Emotion{types.EmotionHappy, types.EmotionEngaged, types.EmotionNeutral}
}

// ClampConfidence bounds confidence to 0-100.
func ClampConfidence(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
