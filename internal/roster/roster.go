// Package roster seeds the student roster of a classroom session.
package roster

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/easeaico/classroom-pulse/internal/types"
)

// ErrInvalidClassSize is returned for a non-positive roster size.
var ErrInvalidClassSize = errors.New("class size must be positive")

const (
	minInitialConfidence = 60
	maxInitialConfidence = 100
	// offlineEvery marks every n-th student as offline at session start.
	offlineEvery = 8
)

var namePool = []string{
	"Alex Chen", "Jordan Kim", "Sam Taylor", "Morgan Lee",
	"Casey Brown", "Riley Davis", "Quinn Martinez", "Avery Wilson",
	"Blake Anderson", "Cameron Thomas", "Drew Parker", "Emery Scott",
	"Finley Moore", "Harper Young", "Jamie Clark", "Kendall White",
}

var avatarColors = []string{
	"bg-blue-500", "bg-green-500", "bg-purple-500", "bg-pink-500",
	"bg-yellow-500", "bg-indigo-500", "bg-red-500", "bg-teal-500",
}

type weightedEmotion struct {
	emotion types.Emotion
	weight  int
}

// initialWeights gives every emotion a nonzero chance at session start.
var initialWeights = []weightedEmotion{
	{types.EmotionHappy, 20},
	{types.EmotionEngaged, 25},
	{types.EmotionNeutral, 25},
	{types.EmotionConfused, 12},
	{types.EmotionBored, 10},
	{types.EmotionFrustrated, 8},
}

// New creates a roster of size students drawing from rng.
func New(size int, rng *rand.Rand) ([]types.Student, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidClassSize, size)
	}

	students := make([]types.Student, size)
	for i := range students {
		name := studentName(i)
		students[i] = types.Student{
			ID:             uuid.NewString(),
			Name:           name,
			AvatarLabel:    initials(name),
			AvatarColor:    avatarColors[i%len(avatarColors)],
			CurrentEmotion: pickInitialEmotion(rng),
			Confidence:     minInitialConfidence + rng.IntN(maxInitialConfidence-minInitialConfidence+1),
			IsOnline:       (i+1)%offlineEvery != 0,
		}
	}
	return students, nil
}

func studentName(i int) string {
	if i < len(namePool) {
		return namePool[i]
	}
	return fmt.Sprintf("Student %d", i+1)
}

func initials(name string) string {
	var sb strings.Builder
	for _, part := range strings.Fields(name) {
		sb.WriteString(strings.ToUpper(part[:1]))
		if sb.Len() >= 2 {
			break
		}
	}
	return sb.String()
}

func pickInitialEmotion(rng *rand.Rand) types.Emotion {
	total := 0
	for _, w := range initialWeights {
		total += w.weight
	}
	n := rng.IntN(total)
	for _, w := range initialWeights {
		if n < w.weight {
			return w.emotion
		}
		n -= w.weight
	}
	return types.EmotionNeutral
}
