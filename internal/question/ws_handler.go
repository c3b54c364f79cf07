package question

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/trivia-api/pkg/http/errors"
	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

const wsMessageTimeout = 5 * time.Second

// QuestionPayload answers next_question.
type QuestionPayload struct {
	Success  bool      `json:"success"`
	Question *Question `json:"question"`
}

// WSHandler serves quiz play over WebSocket and registers clients for catalog events.
type WSHandler struct {
	svc      *Service
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewWSHandler(svc *Service, hub *ws.Hub, upgrader websocket.Upgrader, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		svc:      svc,
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "quiz_ws").Logger(),
	}
}

// HandleWebSocket upgrades GET /ws/quiz and serves the connection until the peer leaves.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	id := uuid.New()
	logger := h.logger.With().Str("conn_id", id.String()).Logger()
	wsConn := ws.NewConnection(conn, logger)
	h.hub.Register(id, wsConn)
	defer h.hub.Unregister(id)

	go wsConn.WritePump()

	// the request context ends when the handler returns; keep its values only.
	base := context.WithoutCancel(r.Context())
	wsConn.ReadPump(func(msg ws.Message) error {
		ctx, cancel := context.WithTimeout(base, wsMessageTimeout)
		defer cancel()
		return h.handleMessage(ctx, wsConn, msg)
	})
}

func (h *WSHandler) handleMessage(ctx context.Context, conn *ws.Connection, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeNextQuestion:
		return h.handleNextQuestion(ctx, conn, msg)
	case ws.TypePing:
		return h.send(conn, ws.TypePong, nil, msg.RequestID)
	default:
		return h.sendError(conn, msg.RequestID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *WSHandler) handleNextQuestion(ctx context.Context, conn *ws.Connection, msg ws.Message) error {
	var req quizRequest
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid next_question payload")
		}
	}

	next, err := h.svc.NextQuestion(ctx, req.category(), req.previous())
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && errors.Is(err, ErrValidation) {
			return h.sendError(conn, msg.RequestID, httperrors.ErrCodeValidationFailed, apiErr.Message)
		}
		h.logger.Error().Err(err).Msg("next question failed")
		return h.sendError(conn, msg.RequestID, httperrors.ErrCodeInternalError, "Internal Server Error")
	}
	return h.send(conn, ws.TypeQuestion, QuestionPayload{Success: true, Question: next}, msg.RequestID)
}

func (h *WSHandler) send(conn *ws.Connection, msgType string, payload interface{}, requestID string) error {
	out, err := ws.NewMessage(msgType, payload, requestID)
	if err != nil {
		return err
	}
	return conn.Send(out)
}

func (h *WSHandler) sendError(conn *ws.Connection, requestID, code, message string) error {
	return h.send(conn, ws.TypeError, ws.ErrorPayload{Code: code, Message: message}, requestID)
}
