package emotion

import "github.com/easeaico/classroom-pulse/internal/types"

// Guidance returns a short instructor hint for a class dominated by e.
func Guidance(e types.Emotion) string {
	switch e {
	case types.EmotionConfused:
		return "Many students look lost; an example or a clarifying slide may help."
	case types.EmotionFrustrated:
		return "Frustration is building; slow down and open the floor for questions."
	case types.EmotionBored:
		return "Attention is drifting; a short break or a Q&A could re-engage the room."
	case types.EmotionHappy, types.EmotionEngaged:
		return "The class is with you; keep the current pace."
	default:
		return ""
	}
}
