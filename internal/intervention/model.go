// Package intervention models instructor actions and their probabilistic effect on a roster.
package intervention

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/classroom-pulse/internal/emotion"
	"github.com/easeaico/classroom-pulse/internal/types"
)

// ErrUnknownIntervention is returned for an action outside the fixed set.
var ErrUnknownIntervention = errors.New("unknown intervention type")

const (
	MinImpact   = 10
	MaxImpact   = 30
	MinAccepted = 70
	MaxAccepted = 100
	// UptakeProbability is the chance each online student responds to an intervention.
	UptakeProbability = 0.7
	// ConfidenceBoost is added to a responding student's confidence.
	ConfidenceBoost = 5
)

// Model creates interventions and applies their effect. It is not safe for concurrent use.
type Model struct {
	rng *rand.Rand
	now func() time.Time
}

// NewModel returns a Model. A nil now defaults to time.Now.
func NewModel(rng *rand.Rand, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	return &Model{rng: rng, now: now}
}

// Trigger records a new intervention of type t with randomized impact and acceptance.
func (m *Model) Trigger(t types.InterventionType) (types.Intervention, error) {
	if Describe(t) == "" {
		return types.Intervention{}, fmt.Errorf("%w: %q", ErrUnknownIntervention, string(t))
	}
	return types.Intervention{
		ID:                 uuid.NewString(),
		Type:               t,
		Timestamp:          m.now(),
		Impact:             MinImpact + m.rng.IntN(MaxImpact-MinImpact+1),
		AcceptedPercentage: MinAccepted + m.rng.IntN(MaxAccepted-MinAccepted+1),
	}, nil
}

// ApplyEffect returns the roster after iv settles: each online student independently moves to a
// positive emotion with UptakeProbability. The input slice is not modified.
func (m *Model) ApplyEffect(roster []types.Student, iv types.Intervention) []types.Student {
	positive := emotion.PositiveEmotions()
	next := make([]types.Student, len(roster))
	copy(next, roster)
	for i := range next {
		if !next[i].IsOnline || m.rng.Float64() >= UptakeProbability {
			continue
		}
		next[i].CurrentEmotion = positive[m.rng.IntN(len(positive))]
		next[i].Confidence = emotion.ClampConfidence(next[i].Confidence + ConfidenceBoost)
	}
	return next
}

// Describe returns the dashboard message for t, or "" for an unknown type.
func Describe(t types.InterventionType) string {
	switch t {
	case types.InterventionBreak:
		return "Break suggested"
	case types.InterventionSlowDown:
		return "Pace slowed down"
	case types.InterventionExample:
		return "Example shown"
	case types.InterventionQA:
		return "Q&A session started"
	case types.InterventionClarifyingSlide:
		return "Clarifying slide inserted"
	default:
		return ""
	}
}
