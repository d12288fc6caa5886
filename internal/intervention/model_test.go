package intervention

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/easeaico/classroom-pulse/internal/emotion"
	"github.com/easeaico/classroom-pulse/internal/types"
)

func newTestModel(seed uint64) *Model {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return NewModel(rand.New(rand.NewPCG(seed, seed^0xff)), func() time.Time { return now })
}

func TestTriggerStaysInRange(t *testing.T) {
	m := newTestModel(1)
	ids := map[string]bool{}
	for i := 0; i < 1000; i++ {
		typ := types.AllInterventionTypes()[i%5]
		iv, err := m.Trigger(typ)
		if err != nil {
			t.Fatalf("Trigger(%s): %v", typ, err)
		}
		if iv.Impact < MinImpact || iv.Impact > MaxImpact {
			t.Fatalf("impact out of range: %d", iv.Impact)
		}
		if iv.AcceptedPercentage < MinAccepted || iv.AcceptedPercentage > MaxAccepted {
			t.Fatalf("accepted out of range: %d", iv.AcceptedPercentage)
		}
		if iv.Type != typ || iv.Timestamp.IsZero() {
			t.Fatalf("unexpected record: %#v", iv)
		}
		if ids[iv.ID] {
			t.Fatalf("duplicate id %s", iv.ID)
		}
		ids[iv.ID] = true
	}
}

func TestTriggerRejectsUnknownType(t *testing.T) {
	_, err := newTestModel(2).Trigger(types.InterventionType("pizza"))
	if !errors.Is(err, ErrUnknownIntervention) {
		t.Fatalf("expected ErrUnknownIntervention, got %v", err)
	}
}

func TestApplyEffectBreakScenario(t *testing.T) {
	m := newTestModel(3)
	roster := make([]types.Student, 10)
	for i := range roster {
		roster[i] = types.Student{ID: string(rune('a' + i)), CurrentEmotion: types.EmotionBored, Confidence: 98, IsOnline: true}
	}

	iv, err := m.Trigger(types.InterventionBreak)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if iv.AcceptedPercentage < 70 || iv.AcceptedPercentage > 100 {
		t.Fatalf("accepted out of range: %d", iv.AcceptedPercentage)
	}

	after := m.ApplyEffect(roster, iv)
	changed := 0
	for i, s := range after {
		if roster[i].CurrentEmotion != types.EmotionBored {
			t.Fatal("input roster mutated")
		}
		if s.CurrentEmotion == types.EmotionBored {
			if s.Confidence != 98 {
				t.Fatalf("unchanged student had confidence touched: %d", s.Confidence)
			}
			continue
		}
		if !emotion.IsPositive(s.CurrentEmotion) {
			t.Fatalf("student moved to non-positive emotion %s", s.CurrentEmotion)
		}
		if s.Confidence != 100 {
			t.Fatalf("expected confidence clamped to 100, got %d", s.Confidence)
		}
		changed++
	}
	if changed > len(roster) {
		t.Fatalf("changed count out of range: %d", changed)
	}
}

func TestApplyEffectUptakeRate(t *testing.T) {
	m := newTestModel(4)
	roster := make([]types.Student, 5000)
	for i := range roster {
		roster[i] = types.Student{CurrentEmotion: types.EmotionFrustrated, Confidence: 50, IsOnline: i%10 != 0}
	}
	after := m.ApplyEffect(roster, types.Intervention{Type: types.InterventionQA})

	changed := 0
	for i, s := range after {
		if !roster[i].IsOnline {
			if s != roster[i] {
				t.Fatalf("offline student changed: %#v", s)
			}
			continue
		}
		if s.CurrentEmotion != types.EmotionFrustrated {
			changed++
		}
	}
	online := 4500
	if rate := float64(changed) / float64(online); rate < 0.65 || rate > 0.75 {
		t.Fatalf("expected roughly 70%% uptake, got %.3f", rate)
	}
}

func TestDescribeCoversAllTypes(t *testing.T) {
	for _, typ := range types.AllInterventionTypes() {
		if Describe(typ) == "" {
			t.Fatalf("missing description for %s", typ)
		}
	}
}
