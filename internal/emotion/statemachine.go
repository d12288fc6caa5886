package emotion

import (
	"math/rand/v2"

	"github.com/easeaico/classroom-pulse/internal/types"
)

const (
	// StayProbability is the chance an online student keeps the current emotion on a tick.
	StayProbability = 0.6
	// MaxConfidenceDelta bounds the per-tick confidence drift in either direction.
	MaxConfidenceDelta = 5
)

// StateMachine advances student emotions one tick at a time.
// It is not safe for concurrent use because it shares one random source.
type StateMachine struct {
	rng *rand.Rand
}

// NewStateMachine returns a StateMachine drawing from rng.
func NewStateMachine(rng *rand.Rand) *StateMachine {
	return &StateMachine{rng: rng}
}

// Advance returns the roster after one tick. The input slice is not modified.
func (s *StateMachine) Advance(roster []types.Student) []types.Student {
	next := make([]types.Student, len(roster))
	copy(next, roster)
	for i := range next {
		if !next[i].IsOnline {
			continue
		}
		next[i].CurrentEmotion = s.nextEmotion(next[i].CurrentEmotion)
		delta := s.rng.IntN(2*MaxConfidenceDelta+1) - MaxConfidenceDelta
		next[i].Confidence = ClampConfidence(next[i].Confidence + delta)
	}
	return next
}

func (s *StateMachine) nextEmotion(current types.Emotion) types.Emotion {
	if s.rng.Float64() < StayProbability {
		return current
	}
	all := types.AllEmotions()
	others := make([]types.Emotion, 0, len(all)-1)
	for _, e := range all {
		if e != current {
			others = append(others, e)
		}
	}
	return others[s.rng.IntN(len(others))]
}
