package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/notsocj/SmartExam/internal/middleware"
	"github.com/notsocj/SmartExam/internal/response"
	"github.com/notsocj/SmartExam/internal/service"
	ws "github.com/notsocj/SmartExam/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowlist permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live attempt events for a test to admin monitor
// clients over WebSocket, fed by the test's Redis pub/sub channel.
type MonitorHandler struct {
	testService    *service.TestService
	proctorService *service.ProctorService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(testService *service.TestService, proctorService *service.ProctorService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		testService:    testService,
		proctorService: proctorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// MonitorTest godoc
// WS /ws/v1/admin/tests/:test_id/monitor
// Upgrades to WebSocket and relays the test's proctor events until the
// client disconnects.
func (h *MonitorHandler) MonitorTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}
	if _, err := h.testService.Get(c.Request.Context(), testID); err != nil {
		failFromService(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := h.proctorService.Subscribe(ctx, testID)
	defer pubsub.Close()

	h.log.Info().Int("test_id", testID).Int("admin_id", claims.UserID).Msg("Admin attached to live monitor")

	h.serve(ctx, conn, pubsub.Channel())
}

// serve relays proctor events to the client until it disconnects. The
// reader goroutine only parses incoming frames and signals pings; every
// write to the connection happens on this goroutine, since gorilla
// connections support at most one concurrent writer.
func (h *MonitorHandler) serve(ctx context.Context, conn *websocket.Conn, events <-chan *redis.Message) {
	done := make(chan struct{})
	pings := make(chan struct{}, 1)
	go func() {
		defer close(done)
		for {
			var envelope ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &envelope); err != nil {
				return
			}
			if envelope.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case msg, ok := <-events:
			if !ok {
				return
			}
			var event ws.ProctorEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.log.Error().Err(err).Msg("Malformed proctor event on channel")
				continue
			}
			if err := ws.WriteTyped(conn, event); err != nil {
				return
			}
		}
	}
}
