// Package web serves the instructor dashboard API and the live metrics stream.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/easeaico/classroom-pulse/internal/narrator"
	"github.com/easeaico/classroom-pulse/internal/session"
	"github.com/easeaico/classroom-pulse/internal/types"
)

// clientBuffer is the number of queued snapshots before a slow client is dropped.
const clientBuffer = 16

// Server is the dashboard HTTP server.
type Server struct {
	app      *fiber.App
	addr     string
	session  *session.Session
	reporter *narrator.Reporter
	logger   *slog.Logger

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]chan []byte
}

// NewServer creates the dashboard server and subscribes it to session snapshots.
func NewServer(addr string, sess *session.Session, reporter *narrator.Reporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:     addr,
		session:  sess,
		reporter: reporter,
		logger:   logger,
		clients:  make(map[*websocket.Conn]chan []byte),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Classroom Pulse",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/emotions", s.handleEmotions)
	api.Get("/session", s.handleSession)
	api.Get("/metrics", s.handleMetrics)
	api.Get("/students", s.handleStudents)
	api.Get("/timeline", s.handleTimeline)
	api.Get("/interventions", s.handleListInterventions)
	api.Post("/interventions/:type", s.handleTriggerIntervention)
	api.Get("/report", s.handleReport)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/metrics", websocket.New(s.handleMetricsWS))

	s.app = app
	sess.Subscribe(s.broadcast)
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is done, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", s.addr)
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dashboard server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		if err := s.app.Shutdown(); err != nil {
			return fmt.Errorf("failed to shut down dashboard: %w", err)
		}
		s.logger.Info("dashboard stopped")
		return nil
	}
}

// broadcast queues a snapshot for every websocket client, dropping clients that fall behind.
func (s *Server) broadcast(m types.ClassMetrics) {
	data, err := json.Marshal(m)
	if err != nil {
		s.logger.Error("failed to encode metrics", "error", err)
		return
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn, ch := range s.clients {
		select {
		case ch <- data:
		default:
			close(ch)
			delete(s.clients, conn)
			s.logger.Warn("dropped slow metrics client")
		}
	}
}

func (s *Server) register(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, clientBuffer)
	s.clientsMu.Lock()
	s.clients[conn] = ch
	count := len(s.clients)
	s.clientsMu.Unlock()
	s.logger.Debug("metrics client connected", "clients", count)
	return ch
}

func (s *Server) unregister(conn *websocket.Conn) {
	s.clientsMu.Lock()
	if ch, ok := s.clients[conn]; ok {
		close(ch)
		delete(s.clients, conn)
	}
	count := len(s.clients)
	s.clientsMu.Unlock()
	s.logger.Debug("metrics client disconnected", "clients", count)
}
