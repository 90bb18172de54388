// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     server
// Description: WebSocket terminal endpoint. Each connection gets its own
//              interpreter session; frames carry one dispatch or one
//              completion request at a time.
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/msto63/chainterm/internal/session"
	"github.com/msto63/chainterm/pkg/core/logging"
)

const readDeadline = 120 * time.Second

// SessionFactory creates the session backing one terminal connection.
// id is empty for a fresh terminal and carries the previous session id
// on reconnect.
type SessionFactory func(id string) (*session.Session, error)

// TerminalHandler upgrades HTTP requests to WebSocket terminals
type TerminalHandler struct {
	newSession SessionFactory
	upgrader   websocket.Upgrader
	logger     *logging.Logger
}

// NewTerminalHandler creates the WebSocket terminal endpoint. An empty
// allowedOrigins list permits every origin, intended for local development
// only.
func NewTerminalHandler(factory SessionFactory, allowedOrigins []string, logger *logging.Logger) *TerminalHandler {
	if logger == nil {
		logger = logging.GetDefault()
	}

	return &TerminalHandler{
		newSession: factory,
		logger:     logger.WithField("component", "terminal-ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

// TerminalRequest is one inbound frame
type TerminalRequest struct {
	Type    string          `json:"type"`    // "dispatch", "suggest", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// DispatchPayload carries the input line of a dispatch request
type DispatchPayload struct {
	Input string `json:"input"`
}

// SuggestPayload carries the partial input of a completion request
type SuggestPayload struct {
	Partial string `json:"partial"`
}

// TerminalResponse is one outbound frame
type TerminalResponse struct {
	Type    string      `json:"type"` // "ready", "result", "suggestions", "error", "pong"
	Payload interface{} `json:"payload"`
}

// ReadyPayload announces the session backing the connection
type ReadyPayload struct {
	SessionID string `json:"session_id"`
}

// ResultPayload is the outcome of one dispatched line
type ResultPayload struct {
	Output  string `json:"output"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SuggestionsPayload lists completion candidates
type SuggestionsPayload struct {
	Suggestions []string `json:"suggestions"`
}

// ErrorPayload reports a protocol-level failure
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *TerminalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", logging.Fields{"error": err.Error()})
		return
	}

	h.handleConnection(r.Context(), conn, r.URL.Query().Get("session"))
}

// handleConnection runs the frame loop for one terminal
func (h *TerminalHandler) handleConnection(ctx context.Context, conn *websocket.Conn, sessionID string) {
	defer conn.Close()

	sess, err := h.newSession(sessionID)
	if err != nil {
		h.logger.Error("session creation failed", logging.Fields{"error": err.Error()})
		h.send(conn, TerminalResponse{
			Type:    "error",
			Payload: ErrorPayload{Code: "session_failed", Message: "Could not create terminal session"},
		})
		return
	}
	defer func() {
		if err := sess.Close(context.Background()); err != nil {
			h.logger.Warn("session close failed", logging.Fields{"error": err.Error()})
		}
	}()

	h.logger.Info("terminal connected", logging.Fields{
		"session": sess.ID(),
		"remote":  conn.RemoteAddr().String(),
	})

	h.send(conn, TerminalResponse{Type: "ready", Payload: ReadyPayload{SessionID: sess.ID()}})

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		var msg TerminalRequest
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error", logging.Fields{"error": err.Error()})
			} else {
				h.logger.Info("terminal disconnected", logging.Fields{"session": sess.ID()})
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readDeadline))

		// frames run inline: a terminal expects its results in input order
		switch msg.Type {
		case "ping":
			h.send(conn, TerminalResponse{Type: "pong"})

		case "dispatch":
			var payload DispatchPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(conn, "invalid_payload", "Invalid dispatch payload")
				continue
			}
			result := sess.Dispatch(ctx, payload.Input)
			h.send(conn, TerminalResponse{
				Type: "result",
				Payload: ResultPayload{
					Output:  result.Output,
					Success: result.Success,
					Error:   string(result.Error),
				},
			})

		case "suggest":
			var payload SuggestPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(conn, "invalid_payload", "Invalid suggest payload")
				continue
			}
			h.send(conn, TerminalResponse{
				Type:    "suggestions",
				Payload: SuggestionsPayload{Suggestions: sess.Suggest(payload.Partial)},
			})

		default:
			h.sendError(conn, "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}

func (h *TerminalHandler) send(conn *websocket.Conn, resp TerminalResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Error("WebSocket send error", logging.Fields{"error": err.Error()})
	}
}

func (h *TerminalHandler) sendError(conn *websocket.Conn, code, message string) {
	h.send(conn, TerminalResponse{
		Type:    "error",
		Payload: ErrorPayload{Code: code, Message: message},
	})
}
