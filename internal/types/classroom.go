package types

import "time"

// Emotion is one category of the closed classroom emotion taxonomy.
type Emotion string

const (
	EmotionHappy      Emotion = "happy"
	EmotionEngaged    Emotion = "engaged"
	EmotionNeutral    Emotion = "neutral"
	EmotionConfused   Emotion = "confused"
	EmotionBored      Emotion = "bored"
	EmotionFrustrated Emotion = "frustrated"
)

// AllEmotions returns every emotion in canonical display order.
func AllEmotions() []Emotion {
	return []Emotion{
		EmotionHappy,
		EmotionEngaged,
		EmotionNeutral,
		EmotionConfused,
		EmotionBored,
		EmotionFrustrated,
	}
}

// Valid reports whether e belongs to the taxonomy.
func (e Emotion) Valid() bool {
	switch e {
	case EmotionHappy, EmotionEngaged, EmotionNeutral, EmotionConfused, EmotionBored, EmotionFrustrated:
		return true
	default:
		return false
	}
}

// Student is one classroom participant.
type Student struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	AvatarLabel    string  `json:"avatar_label"`
	AvatarColor    string  `json:"avatar_color"`
	CurrentEmotion Emotion `json:"current_emotion"`
	// Confidence is the simulated detector confidence, always within 0-100.
	Confidence int  `json:"confidence"`
	IsOnline   bool `json:"is_online"`
}

// Severity selects how an alert is presented.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is a notification emitted when a metrics rule crosses its threshold.
type Alert struct {
	ID           string    `json:"id"`
	Rule         string    `json:"rule"`
	Severity     Severity  `json:"severity"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	Acknowledged bool      `json:"acknowledged"`
}

// ClassMetrics is an immutable snapshot derived from one roster.
type ClassMetrics struct {
	TotalStudents  int `json:"total_students"`
	OnlineStudents int `json:"online_students"`
	// EmotionDistribution counts online students per emotion and always sums to OnlineStudents.
	EmotionDistribution map[Emotion]int `json:"emotion_distribution"`
	OverallEngagement   int             `json:"overall_engagement"`
	// Alerts holds the most recent alert first.
	Alerts     []Alert   `json:"alerts"`
	ComputedAt time.Time `json:"computed_at"`
}

// Clone returns a deep copy so callers never share maps or slices with the engine.
func (m ClassMetrics) Clone() ClassMetrics {
	out := m
	out.EmotionDistribution = make(map[Emotion]int, len(m.EmotionDistribution))
	for k, v := range m.EmotionDistribution {
		out.EmotionDistribution[k] = v
	}
	out.Alerts = append([]Alert(nil), m.Alerts...)
	return out
}

// EmotionDataPoint is one timeline sample of emotion percentages summing to 100.
type EmotionDataPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Happy      int       `json:"happy"`
	Engaged    int       `json:"engaged"`
	Neutral    int       `json:"neutral"`
	Confused   int       `json:"confused"`
	Bored      int       `json:"bored"`
	Frustrated int       `json:"frustrated"`
}

// Total returns the sum of the six percentages.
func (p EmotionDataPoint) Total() int {
	return p.Happy + p.Engaged + p.Neutral + p.Confused + p.Bored + p.Frustrated
}

// InterventionType names an instructor action.
type InterventionType string

const (
	InterventionBreak           InterventionType = "break"
	InterventionSlowDown        InterventionType = "slow-down"
	InterventionExample         InterventionType = "example"
	InterventionQA              InterventionType = "qa"
	InterventionClarifyingSlide InterventionType = "clarifying-slide"
)

// AllInterventionTypes returns the fixed set of instructor actions.
func AllInterventionTypes() []InterventionType {
	return []InterventionType{
		InterventionBreak,
		InterventionSlowDown,
		InterventionExample,
		InterventionQA,
		InterventionClarifyingSlide,
	}
}

// Intervention records one instructor action.
type Intervention struct {
	ID        string           `json:"id"`
	Type      InterventionType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	// Impact is the nominal engagement improvement in percentage points (10-30).
	Impact int `json:"impact"`
	// AcceptedPercentage is the simulated share of students accepting the nudge (70-100).
	AcceptedPercentage int `json:"accepted_percentage"`
}
