package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/regaudit/internal/agent"
	"github.com/ziadkadry99/regaudit/internal/audit"
	"github.com/ziadkadry99/regaudit/internal/session"
)

const agentDisabled = "Agent is not configured."

type agentRequest struct {
	Input string `json:"input"`
}

// runAgent handles one free-form request against a session.
func runAgent(ctx context.Context, svc *Service, id, input string) (agent.Result, error) {
	ctx = audit.WithActor(ctx, audit.ActorAgent)
	var res agent.Result
	err := svc.Sessions.Do(id, func(s *session.Session) error {
		var err error
		res, err = svc.Agent.Run(ctx, s, input)
		return err
	})
	return res, err
}

func handleAgent(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		if svc.Agent == nil {
			writeError(w, http.StatusServiceUnavailable, agentDisabled)
			return
		}
		var req agentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		input := strings.TrimSpace(req.Input)
		if input == "" {
			writeError(w, http.StatusBadRequest, "input is required")
			return
		}

		res, err := runAgent(r.Context(), svc, id, input)
		if err != nil {
			writeError(w, statusFor(err), agent.ErrorMessage(err, "agent request"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"output":     res.Output,
			"steps":      stepsOrEmpty(res.Steps),
			"iterations": res.Iterations,
			"stopped":    res.Stopped,
		})
	}
}

func stepsOrEmpty(steps []agent.Step) []agent.Step {
	if steps == nil {
		return []agent.Step{}
	}
	return steps
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	SessionID string `json:"session_id"` // empty keeps the connection's session
	Content   string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type       string       `json:"type"` // "response" or "error"
	SessionID  string       `json:"session_id"`
	Content    string       `json:"content"`
	Steps      []agent.Step `json:"steps,omitempty"`
	Iterations int          `json:"iterations,omitempty"`
}

func handleAgentWS(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		if svc.Agent == nil {
			writeError(w, http.StatusServiceUnavailable, agentDisabled)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			svc.logger().Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					svc.logger().Warn("websocket read failed", "session", id, "error", err)
				}
				return
			}

			var req chatRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				sendChat(conn, chatResponse{Type: "error", SessionID: id, Content: "invalid message format"})
				continue
			}
			if req.SessionID != "" {
				id = session.NormalizeID(req.SessionID)
			}
			content := strings.TrimSpace(req.Content)
			if content == "" {
				sendChat(conn, chatResponse{Type: "error", SessionID: id, Content: "content is required"})
				continue
			}

			res, err := runAgent(r.Context(), svc, id, content)
			if err != nil {
				sendChat(conn, chatResponse{Type: "error", SessionID: id, Content: agent.ErrorMessage(err, "agent request")})
				return
			}
			if err := sendChat(conn, chatResponse{
				Type:       "response",
				SessionID:  id,
				Content:    res.Output,
				Steps:      res.Steps,
				Iterations: res.Iterations,
			}); err != nil {
				svc.logger().Warn("websocket write failed", "session", id, "error", err)
				return
			}
		}
	}
}

func sendChat(conn *websocket.Conn, resp chatResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
