// Package metrics reduces a roster into classroom statistics and layers edge-triggered alerts on top.
package metrics

import (
	"github.com/easeaico/classroom-pulse/internal/types"
)

// NeutralBaseline is the engagement score of a class that is entirely neutral.
const NeutralBaseline = 50

// engagementWeight scores each emotion; weights never decrease along
// frustrated < bored < confused < neutral < happy <= engaged.
func engagementWeight(e types.Emotion) int {
	switch e {
	case types.EmotionEngaged:
		return 100
	case types.EmotionHappy:
		return 90
	case types.EmotionNeutral:
		return NeutralBaseline
	case types.EmotionConfused:
		return 20
	case types.EmotionBored:
		return 10
	default:
		return 0
	}
}

// Aggregate computes a fresh snapshot from roster. Alerts and ComputedAt are left empty.
func Aggregate(roster []types.Student) types.ClassMetrics {
	dist := make(map[types.Emotion]int, 6)
	for _, e := range types.AllEmotions() {
		dist[e] = 0
	}

	online := 0
	for _, s := range roster {
		if !s.IsOnline {
			continue
		}
		online++
		dist[s.CurrentEmotion]++
	}

	return types.ClassMetrics{
		TotalStudents:       len(roster),
		OnlineStudents:      online,
		EmotionDistribution: dist,
		OverallEngagement:   Engagement(dist),
	}
}

// Engagement returns the rounded mean weight of the distribution, 0 for an empty class.
func Engagement(dist map[types.Emotion]int) int {
	total, sum := 0, 0
	for e, n := range dist {
		total += n
		sum += n * engagementWeight(e)
	}
	if total == 0 {
		return 0
	}
	// Round half up without floating point.
	return (2*sum + total) / (2 * total)
}

// Percent returns n as a rounded percentage of total.
func Percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*n + total) / (2 * total)
}

// Dominant returns the most common emotion, preferring canonical order on ties.
func Dominant(m types.ClassMetrics) types.Emotion {
	best := types.EmotionNeutral
	bestCount := -1
	for _, e := range types.AllEmotions() {
		if n := m.EmotionDistribution[e]; n > bestCount {
			best, bestCount = e, n
		}
	}
	return best
}
