package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/easeaico/classroom-pulse/internal/narrator"
	"github.com/easeaico/classroom-pulse/internal/session"
	"github.com/easeaico/classroom-pulse/internal/types"
)

func newTestServer(t *testing.T) (*Server, *session.Session) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := session.DefaultConfig(16)
	cfg.CourseTitle = "Linear Algebra"
	cfg.InterventionDelay = time.Hour
	sess, err := session.New(cfg,
		session.WithRand(rand.New(rand.NewPCG(7, 11))),
		session.WithLogger(logger))
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	t.Cleanup(sess.Stop)
	return NewServer(":0", sess, narrator.NewReporter(nil, cfg.CourseTitle, logger), logger), sess
}

func doRequest(t *testing.T, s *Server, method, path string, out any) int {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(method, path, nil), -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	var body map[string]any
	if code := doRequest(t, s, http.MethodGet, "/api/health", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestEmotionsLegend(t *testing.T) {
	s, _ := newTestServer(t)
	var legend []EmotionInfo
	doRequest(t, s, http.MethodGet, "/api/emotions", &legend)
	if len(legend) != 6 {
		t.Fatalf("got %d emotions, want 6", len(legend))
	}
	for i, info := range legend {
		if info.Rank != i {
			t.Errorf("%s rank = %d, want %d", info.Emotion, info.Rank, i)
		}
		if info.Label == "" || info.Emoji == "" {
			t.Errorf("%s missing display fields", info.Emotion)
		}
	}
}

func TestMetricsMatchSession(t *testing.T) {
	s, sess := newTestServer(t)
	var m types.ClassMetrics
	doRequest(t, s, http.MethodGet, "/api/metrics", &m)

	want := sess.Metrics()
	if m.OnlineStudents != want.OnlineStudents || m.OverallEngagement != want.OverallEngagement {
		t.Fatalf("metrics = %+v, want %+v", m, want)
	}
	sum := 0
	for _, n := range m.EmotionDistribution {
		sum += n
	}
	if sum != m.OnlineStudents {
		t.Fatalf("distribution sums to %d, want %d", sum, m.OnlineStudents)
	}
}

func TestStudentsAndTimeline(t *testing.T) {
	s, _ := newTestServer(t)
	var students []types.Student
	doRequest(t, s, http.MethodGet, "/api/students", &students)
	if len(students) != 16 {
		t.Fatalf("got %d students", len(students))
	}

	var points []types.EmotionDataPoint
	doRequest(t, s, http.MethodGet, "/api/timeline", &points)
	if len(points) == 0 {
		t.Fatal("empty timeline")
	}
	for _, p := range points {
		if p.Total() != 100 {
			t.Fatalf("point %v sums to %d", p.Timestamp, p.Total())
		}
	}
}

func TestTriggerIntervention(t *testing.T) {
	s, sess := newTestServer(t)

	var resp InterventionResponse
	code := doRequest(t, s, http.MethodPost, "/api/interventions/example", &resp)
	if code != http.StatusAccepted {
		t.Fatalf("status = %d", code)
	}
	if resp.Intervention.Type != types.InterventionExample {
		t.Fatalf("type = %s", resp.Intervention.Type)
	}
	if resp.Message == "" || resp.Description == "" {
		t.Fatalf("missing toast text: %+v", resp)
	}
	if got := sess.Pending(); len(got) != 1 || got[0] != resp.Intervention.ID {
		t.Fatalf("pending = %v", got)
	}

	var list struct {
		Interventions []types.Intervention `json:"interventions"`
		Pending       []string             `json:"pending"`
	}
	doRequest(t, s, http.MethodGet, "/api/interventions", &list)
	if len(list.Interventions) != 1 || len(list.Pending) != 1 {
		t.Fatalf("list = %+v", list)
	}
}

func TestTriggerUnknownIntervention(t *testing.T) {
	s, sess := newTestServer(t)
	if code := doRequest(t, s, http.MethodPost, "/api/interventions/dance", nil); code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if len(sess.Interventions()) != 0 {
		t.Fatal("unknown type was recorded")
	}
}

func TestTriggerOnClosedSession(t *testing.T) {
	s, sess := newTestServer(t)
	sess.Stop()
	if code := doRequest(t, s, http.MethodPost, "/api/interventions/break", nil); code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", code)
	}
}

func TestReportFallsBackToSummary(t *testing.T) {
	s, sess := newTestServer(t)
	var body map[string]string
	if code := doRequest(t, s, http.MethodGet, "/api/report?q=status", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if want := narrator.Summarize(sess.Metrics()); body["text"] != want {
		t.Fatalf("text = %q, want %q", body["text"], want)
	}
}

func TestMetricsWebsocketRequiresUpgrade(t *testing.T) {
	s, _ := newTestServer(t)
	if code := doRequest(t, s, http.MethodGet, "/ws/metrics", nil); code != http.StatusUpgradeRequired {
		t.Fatalf("status = %d, want 426", code)
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	s, _ := newTestServer(t)
	ch := make(chan []byte, clientBuffer)
	s.clients[nil] = ch
	for range clientBuffer + 1 {
		s.broadcast(types.ClassMetrics{})
	}
	if len(s.clients) != 0 {
		t.Fatal("slow client was not dropped")
	}
	if _, ok := <-ch; !ok {
		t.Fatal("queued snapshots were lost")
	}
}
