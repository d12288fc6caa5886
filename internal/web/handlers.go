package web

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/easeaico/classroom-pulse/internal/emotion"
	"github.com/easeaico/classroom-pulse/internal/intervention"
	"github.com/easeaico/classroom-pulse/internal/session"
	"github.com/easeaico/classroom-pulse/internal/types"
)

// EmotionInfo describes one taxonomy entry for the dashboard legend.
type EmotionInfo struct {
	Emotion types.Emotion `json:"emotion"`
	Rank    int           `json:"rank"`
	emotion.Display
}

// InterventionResponse is returned after an instructor action is accepted.
type InterventionResponse struct {
	Intervention types.Intervention `json:"intervention"`
	Message      string             `json:"message"`
	Description  string             `json:"description"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "closed": s.session.Closed()})
}

func (s *Server) handleEmotions(c *fiber.Ctx) error {
	all := types.AllEmotions()
	out := make([]EmotionInfo, len(all))
	for i, e := range all {
		out[i] = EmotionInfo{Emotion: e, Rank: emotion.Rank(e), Display: emotion.Describe(e)}
	}
	return c.JSON(out)
}

func (s *Server) handleSession(c *fiber.Ctx) error {
	return c.JSON(s.session.Snapshot())
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(s.session.Metrics())
}

func (s *Server) handleStudents(c *fiber.Ctx) error {
	return c.JSON(s.session.Students())
}

func (s *Server) handleTimeline(c *fiber.Ctx) error {
	return c.JSON(s.session.Timeline())
}

func (s *Server) handleListInterventions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"interventions": s.session.Interventions(),
		"pending":       s.session.Pending(),
	})
}

func (s *Server) handleTriggerIntervention(c *fiber.Ctx) error {
	typ := types.InterventionType(c.Params("type"))
	iv, err := s.session.TriggerIntervention(typ)
	switch {
	case errors.Is(err, intervention.ErrUnknownIntervention):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, session.ErrSessionClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(InterventionResponse{
		Intervention: iv,
		Message:      fmt.Sprintf("%s (%d%% accepted)", intervention.Describe(iv.Type), iv.AcceptedPercentage),
		Description:  fmt.Sprintf("Engagement improved by %d%%", iv.Impact),
	})
}

func (s *Server) handleReport(c *fiber.Ctx) error {
	text, err := s.reporter.Report(c.UserContext(), s.session.Metrics(), c.Query("q"))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"text": text})
}

// handleMetricsWS streams every new snapshot to the client until it disconnects.
func (s *Server) handleMetricsWS(conn *websocket.Conn) {
	ch := s.register(conn)
	defer s.unregister(conn)

	if err := conn.WriteJSON(s.session.Metrics()); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case data, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
