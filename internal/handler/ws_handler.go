package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/istanbulinstitute/educrm-exam/internal/service"
	ws "github.com/istanbulinstitute/educrm-exam/internal/websocket"
	"github.com/rs/zerolog"
)

const wsKeepAliveInterval = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// ResultFeed streams the raw result events published for an exam.
type ResultFeed interface {
	Follow(ctx context.Context, examID uuid.UUID) (<-chan []byte, error)
}

// WSHandler streams new results to administrators watching an exam.
type WSHandler struct {
	resultService *service.ResultService
	feed          ResultFeed
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(resultService *service.ResultService, feed ResultFeed, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		resultService: resultService,
		feed:          feed,
		log:           log.With().Str("component", "ws_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// ResultStream godoc
// WS /ws/v1/admin/exams/:id/results?token=
// Sends a snapshot of the exam's results, then one event per new result.
// Clients may send {"action":"ping"} and receive {"event":"pong"}.
func (h *WSHandler) ResultStream(c *gin.Context) {
	examID, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before taking the snapshot so nothing falls in between.
	events, err := h.feed.Follow(ctx, examID)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	snapshot, err := h.resultService.ListByExam(ctx, examID)
	if err != nil {
		respondError(c, err, response.ErrInternal)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("exam_id", examID.String()).Logger()
	wsLog.Info().Msg("Result stream connected")

	if err := ws.WriteTyped(conn, ws.SnapshotEvent{
		Event:   ws.EventSnapshot,
		ExamID:  examID,
		Stats:   snapshot.Stats,
		Results: snapshot.Results,
	}); err != nil {
		return
	}

	// Only this goroutine reads; all writes stay on the loop below.
	pings := make(chan struct{}, 1)
	go func() {
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action != ws.ActionPing {
				continue
			}
			select {
			case pings <- struct{}{}:
			default:
			}
		}
	}()

	keepAlive := time.NewTicker(wsKeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Result stream closed")
			return

		case payload, ok := <-events:
			if !ok {
				ws.WriteError(conn, "result feed closed")
				return
			}
			if err := ws.WriteTyped(conn, ws.ResultCreatedEvent{
				Event:  ws.EventResultCreated,
				Result: json.RawMessage(payload),
			}); err != nil {
				return
			}

		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}

		case <-keepAlive.C:
			if err := ws.WriteKeepAlive(conn); err != nil {
				return
			}
		}
	}
}
