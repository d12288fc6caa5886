package roster

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/easeaico/classroom-pulse/internal/types"
)

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -3} {
		students, err := New(size, rand.New(rand.NewPCG(1, 1)))
		if !errors.Is(err, ErrInvalidClassSize) {
			t.Fatalf("size %d: expected ErrInvalidClassSize, got %v", size, err)
		}
		if students != nil {
			t.Fatalf("size %d: expected nil roster, got %d students", size, len(students))
		}
	}
}

func TestNewSeedsRoster(t *testing.T) {
	students, err := New(16, rand.New(rand.NewPCG(2, 3)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(students) != 16 {
		t.Fatalf("expected 16 students, got %d", len(students))
	}

	ids := map[string]bool{}
	online := 0
	for _, s := range students {
		if s.ID == "" || ids[s.ID] {
			t.Fatalf("missing or duplicate id %q", s.ID)
		}
		ids[s.ID] = true
		if s.Confidence < 60 || s.Confidence > 100 {
			t.Fatalf("confidence out of seed range: %d", s.Confidence)
		}
		if !s.CurrentEmotion.Valid() {
			t.Fatalf("invalid emotion %q", s.CurrentEmotion)
		}
		if s.Name == "" || s.AvatarLabel == "" || s.AvatarColor == "" {
			t.Fatalf("missing display fields: %#v", s)
		}
		if s.IsOnline {
			online++
		}
	}
	if online != 14 {
		t.Fatalf("expected 14 online students, got %d", online)
	}
	if students[0].AvatarLabel != "AC" {
		t.Fatalf("expected initials AC, got %s", students[0].AvatarLabel)
	}
}

func TestNewCoversAllEmotions(t *testing.T) {
	students, err := New(2000, rand.New(rand.NewPCG(4, 5)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	seen := map[types.Emotion]bool{}
	for _, s := range students {
		seen[s.CurrentEmotion] = true
	}
	for _, e := range types.AllEmotions() {
		if !seen[e] {
			t.Fatalf("emotion %s never seeded", e)
		}
	}
	if students[1999].Name != "Student 2000" {
		t.Fatalf("unexpected fallback name %q", students[1999].Name)
	}
}
