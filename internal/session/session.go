// Package session drives one live classroom simulation: it owns the roster, serializes ticks and
// intervention effects, and keeps the rolling metrics and intervention history.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/easeaico/classroom-pulse/internal/emotion"
	"github.com/easeaico/classroom-pulse/internal/intervention"
	"github.com/easeaico/classroom-pulse/internal/metrics"
	"github.com/easeaico/classroom-pulse/internal/roster"
	"github.com/easeaico/classroom-pulse/internal/timeline"
	"github.com/easeaico/classroom-pulse/internal/types"
)

// Config holds the tunables of a session.
type Config struct {
	CourseTitle       string
	ClassSize         int
	TickMin           time.Duration
	TickMax           time.Duration
	TimerInterval     time.Duration
	InterventionDelay time.Duration
	HistoryLimit      int
}

// DefaultConfig returns the dashboard defaults for a class of size students.
func DefaultConfig(size int) Config {
	return Config{
		CourseTitle:       "CS101 - Introduction to AI",
		ClassSize:         size,
		TickMin:           3 * time.Second,
		TickMax:           5 * time.Second,
		TimerInterval:     time.Second,
		InterventionDelay: 2 * time.Second,
		HistoryLimit:      20,
	}
}

// Listener receives every new metrics snapshot.
type Listener func(types.ClassMetrics)

// Option customizes a Session.
type Option func(*Session)

// WithClock replaces the wall clock used for timestamps and deferred effects.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithRand replaces the random source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	CourseTitle   string               `json:"course_title"`
	StartedAt     time.Time            `json:"started_at"`
	Elapsed       string               `json:"elapsed"`
	Metrics       types.ClassMetrics   `json:"metrics"`
	Students      []types.Student      `json:"students"`
	Interventions []types.Intervention `json:"interventions"`
	Pending       []string             `json:"pending"`
}

// Session is one in-memory classroom. All mutation happens under mu so ticks and
// intervention effects never overlap.
type Session struct {
	cfg    Config
	clock  Clock
	rng    *rand.Rand
	logger *slog.Logger

	mu        sync.Mutex
	machine   *emotion.StateMachine
	model     *intervention.Model
	timelines *timeline.Generator
	students  []types.Student
	metrics   types.ClassMetrics
	history   []types.Intervention
	pending   map[string]Timer
	listeners []Listener
	startedAt time.Time
	elapsed   time.Duration
	closed    bool
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// New seeds a session roster and computes its first snapshot.
func New(cfg Config, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:     cfg,
		clock:   realClock{},
		logger:  slog.Default(),
		pending: make(map[string]Timer),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.cfg.TickMax < s.cfg.TickMin {
		return nil, fmt.Errorf("tick max %s is below tick min %s", s.cfg.TickMax, s.cfg.TickMin)
	}
	if s.cfg.HistoryLimit <= 0 {
		s.cfg.HistoryLimit = 20
	}
	if s.cfg.TimerInterval <= 0 {
		s.cfg.TimerInterval = time.Second
	}

	students, err := roster.New(cfg.ClassSize, s.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create roster: %w", err)
	}

	s.machine = emotion.NewStateMachine(s.rng)
	s.model = intervention.NewModel(s.rng, s.clock.Now)
	s.timelines = timeline.NewGenerator(s.rng, s.clock.Now)
	s.students = students
	s.startedAt = s.clock.Now()

	first := metrics.Aggregate(students)
	first.ComputedAt = s.startedAt
	s.metrics = metrics.Evaluate(nil, first)

	s.logger.Info("classroom session started",
		"course", s.cfg.CourseTitle,
		"students", first.TotalStudents,
		"online", first.OnlineStudents,
		"engagement", first.OverallEngagement)
	return s, nil
}

// Subscribe registers l for every future snapshot.
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Tick advances every online student by one step and returns the new snapshot.
func (s *Session) Tick() (types.ClassMetrics, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return types.ClassMetrics{}, ErrSessionClosed
	}
	snapshot := s.applyLocked(s.machine.Advance(s.students))
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.notify(listeners, snapshot)
	return snapshot, nil
}

// TriggerIntervention records an instructor action and schedules its effect after the settling delay.
func (s *Session) TriggerIntervention(t types.InterventionType) (types.Intervention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.Intervention{}, ErrSessionClosed
	}

	iv, err := s.model.Trigger(t)
	if err != nil {
		return types.Intervention{}, err
	}

	s.history = append([]types.Intervention{iv}, s.history...)
	if len(s.history) > s.cfg.HistoryLimit {
		s.history = s.history[:s.cfg.HistoryLimit]
	}
	s.pending[iv.ID] = s.clock.AfterFunc(s.cfg.InterventionDelay, func() { s.settle(iv) })

	s.logger.Info("intervention triggered",
		"type", iv.Type,
		"message", intervention.Describe(iv.Type),
		"accepted", iv.AcceptedPercentage,
		"impact", iv.Impact)
	return iv, nil
}

// settle applies a pending intervention effect. It is a no-op once the session is closed.
func (s *Session) settle(iv types.Intervention) {
	s.mu.Lock()
	if _, ok := s.pending[iv.ID]; s.closed || !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, iv.ID)
	snapshot := s.applyLocked(s.model.ApplyEffect(s.students, iv))
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info("intervention settled", "type", iv.Type, "engagement", snapshot.OverallEngagement)
	s.notify(listeners, snapshot)
}

// applyLocked replaces the roster and recomputes metrics and alerts. Callers hold mu.
func (s *Session) applyLocked(next []types.Student) types.ClassMetrics {
	prev := s.metrics
	curr := metrics.Aggregate(next)
	curr.ComputedAt = s.clock.Now()
	curr = metrics.Evaluate(&prev, curr)

	s.students = next
	s.metrics = curr

	seen := make(map[string]bool, len(prev.Alerts))
	for _, a := range prev.Alerts {
		seen[a.ID] = true
	}
	for _, a := range curr.Alerts {
		if !seen[a.ID] {
			s.logger.Info("class alert", "rule", a.Rule, "severity", a.Severity, "message", a.Message)
		}
	}
	s.logger.Debug("metrics recomputed",
		"online", curr.OnlineStudents,
		"engagement", curr.OverallEngagement,
		"alerts", len(curr.Alerts))
	return curr.Clone()
}

func (s *Session) notify(listeners []Listener, snapshot types.ClassMetrics) {
	for _, l := range listeners {
		l(snapshot.Clone())
	}
}

// Run drives ticks at a random interval between TickMin and TickMax plus the session timer,
// until ctx is done or Stop is called. It stops the session on return.
func (s *Session) Run(ctx context.Context) error {
	defer s.Stop()

	tick := time.NewTimer(s.nextTickInterval())
	defer tick.Stop()
	timer := time.NewTicker(s.cfg.TimerInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("classroom session stopping", "reason", ctx.Err())
			return nil
		case <-s.stopCh:
			return nil
		case <-tick.C:
			if _, err := s.Tick(); err != nil {
				return nil
			}
			tick.Reset(s.nextTickInterval())
		case <-timer.C:
			s.updateElapsed()
		}
	}
}

func (s *Session) nextTickInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	spread := s.cfg.TickMax - s.cfg.TickMin
	if spread <= 0 {
		return max(s.cfg.TickMin, time.Millisecond)
	}
	return s.cfg.TickMin + time.Duration(s.rng.Int64N(int64(spread)+1))
}

func (s *Session) updateElapsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elapsed = s.clock.Now().Sub(s.startedAt).Truncate(time.Second)
}

// Stop tears the session down and cancels pending intervention effects. It is safe to call repeatedly.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		for id, t := range s.pending {
			t.Stop()
			delete(s.pending, id)
		}
		close(s.stopCh)
		s.logger.Info("classroom session stopped")
	})
}

// Closed reports whether Stop has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Metrics returns the latest snapshot.
func (s *Session) Metrics() types.ClassMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics.Clone()
}

// Students returns a copy of the roster.
func (s *Session) Students() []types.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Student(nil), s.students...)
}

// Interventions returns the intervention history, most recent first.
func (s *Session) Interventions() []types.Intervention {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Intervention(nil), s.history...)
}

// Pending returns the IDs of interventions whose effect has not settled yet, most recent first.
func (s *Session) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

func (s *Session) pendingLocked() []string {
	var ids []string
	for _, iv := range s.history {
		if _, ok := s.pending[iv.ID]; ok {
			ids = append(ids, iv.ID)
		}
	}
	return ids
}

// Elapsed returns the session duration as last updated by the session timer.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Timeline materializes a fresh emotion history converging on the live roster.
func (s *Session) Timeline() []types.EmotionDataPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timelines.Generate(s.students)
}

// Snapshot returns a consistent copy of the whole session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		CourseTitle:   s.cfg.CourseTitle,
		StartedAt:     s.startedAt,
		Elapsed:       FormatDuration(s.elapsed),
		Metrics:       s.metrics.Clone(),
		Students:      append([]types.Student(nil), s.students...),
		Interventions: append([]types.Intervention(nil), s.history...),
		Pending:       s.pendingLocked(),
	}
}

// FormatDuration renders d as mm:ss.
func FormatDuration(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
