package metrics

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/classroom-pulse/internal/types"
)

const (
	// AlertHistoryLimit caps the alert list carried by a snapshot.
	AlertHistoryLimit = 10
	// ConfusionThreshold is the confused+frustrated share, in percent, above which the class counts as confused.
	ConfusionThreshold = 30
	// LowEngagementThreshold is the engagement score below which the class counts as disengaged.
	LowEngagementThreshold = 40
)

// Rule keys carried on emitted alerts.
const (
	RuleClassConfusion      = "class-confusion"
	RuleLowEngagement       = "low-engagement"
	RuleConfusionCleared    = "confusion-cleared"
	RuleEngagementRecovered = "engagement-recovered"
)

// rule fires when active goes from false on the previous snapshot to true on the current one.
type rule struct {
	key      string
	severity types.Severity
	active   func(m types.ClassMetrics) bool
	message  func(m types.ClassMetrics) string
	// requiresPrevious suppresses firing when there is no previous snapshot.
	requiresPrevious bool
}

var rules = []rule{
	{
		key:      RuleClassConfusion,
		severity: types.SeverityWarning,
		active:   isConfused,
		message: func(m types.ClassMetrics) string {
			return fmt.Sprintf("Class confusion at %d%%: consider clarifying", ConfusionPercent(m))
		},
	},
	{
		key:      RuleLowEngagement,
		severity: types.SeverityError,
		active:   isDisengaged,
		message: func(m types.ClassMetrics) string {
			return fmt.Sprintf("Engagement dropped to %d%%", m.OverallEngagement)
		},
	},
	{
		key:              RuleConfusionCleared,
		severity:         types.SeveritySuccess,
		active:           func(m types.ClassMetrics) bool { return !isConfused(m) },
		requiresPrevious: true,
		message: func(m types.ClassMetrics) string {
			return fmt.Sprintf("Confusion back down to %d%%", ConfusionPercent(m))
		},
	},
	{
		key:              RuleEngagementRecovered,
		severity:         types.SeveritySuccess,
		active:           func(m types.ClassMetrics) bool { return !isDisengaged(m) },
		requiresPrevious: true,
		message: func(m types.ClassMetrics) string {
			return fmt.Sprintf("Engagement recovered to %d%%", m.OverallEngagement)
		},
	},
}

func isConfused(m types.ClassMetrics) bool {
	if m.OnlineStudents == 0 {
		return false
	}
	struggling := m.EmotionDistribution[types.EmotionConfused] + m.EmotionDistribution[types.EmotionFrustrated]
	return struggling*100 > ConfusionThreshold*m.OnlineStudents
}

func isDisengaged(m types.ClassMetrics) bool {
	return m.OverallEngagement < LowEngagementThreshold
}

// ConfusionPercent returns the rounded confused+frustrated share of online students.
func ConfusionPercent(m types.ClassMetrics) int {
	struggling := m.EmotionDistribution[types.EmotionConfused] + m.EmotionDistribution[types.EmotionFrustrated]
	return Percent(struggling, m.OnlineStudents)
}

// Evaluate compares curr with prev and returns curr carrying the updated alert history.
// A nil prev is treated as a snapshot where no rule was active. Neither argument is modified.
func Evaluate(prev *types.ClassMetrics, curr types.ClassMetrics) types.ClassMetrics {
	at := curr.ComputedAt
	if at.IsZero() {
		at = time.Now()
	}

	var fresh []types.Alert
	for _, r := range rules {
		if prev == nil {
			if r.requiresPrevious || !r.active(curr) {
				continue
			}
		} else if r.active(*prev) || !r.active(curr) {
			continue
		}
		fresh = append(fresh, types.Alert{
			ID:        uuid.NewString(),
			Rule:      r.key,
			Severity:  r.severity,
			Message:   r.message(curr),
			Timestamp: at,
		})
	}

	var history []types.Alert
	if prev != nil {
		history = prev.Alerts
	}

	out := curr.Clone()
	out.Alerts = make([]types.Alert, 0, min(len(fresh)+len(history), AlertHistoryLimit))
	out.Alerts = append(out.Alerts, fresh...)
	out.Alerts = append(out.Alerts, history...)
	if len(out.Alerts) > AlertHistoryLimit {
		out.Alerts = out.Alerts[:AlertHistoryLimit]
	}
	return out
}
