// Package a2a exposes the concierge over the A2A JSON-RPC protocol so other
// agents can hold a GTM conversation and receive the rendered report.
package a2a

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/gtm-quest/internal/concierge"
	"github.com/BerylCAtieno/gtm-quest/internal/render"
)

//go:embed agent.json
var agentCard []byte

// Conversation is the part of the concierge the handler needs.
type Conversation interface {
	Converse(ctx context.Context, name, text string) (concierge.Reply, error)
}

type AgentCard struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	URL                string          `json:"url"`
	Version            string          `json:"version"`
	Capabilities       map[string]bool `json:"capabilities"`
	DefaultInputModes  []string        `json:"defaultInputModes"`
	DefaultOutputModes []string        `json:"defaultOutputModes"`
	Skills             []Skill         `json:"skills"`
}

type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// LoadAgentCard returns the embedded card pointing at endpoint.
func LoadAgentCard(endpoint string) (AgentCard, error) {
	var card AgentCard
	if err := json.Unmarshal(agentCard, &card); err != nil {
		return AgentCard{}, fmt.Errorf("decode agent card: %w", err)
	}
	card.URL = endpoint
	return card, nil
}

type Handler struct {
	conv   Conversation
	card   AgentCard
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler serves conv over A2A. siteURL is the public base URL used in
// the agent card.
func NewHandler(conv Conversation, siteURL string, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	card, err := LoadAgentCard(strings.TrimRight(siteURL, "/") + "/a2a/concierge")
	if err != nil {
		return nil, err
	}
	return &Handler{conv: conv, card: card, logger: logger, now: time.Now}, nil
}

// ServeAgentCard serves the agent card.
func (h *Handler) ServeAgentCard(c *gin.Context) {
	c.JSON(http.StatusOK, h.card)
}

// HandleConcierge processes one A2A request. Protocol errors are JSON-RPC
// errors with status 200; concierge errors are failed tasks.
func (h *Handler) HandleConcierge(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.sendError(c, nil, CodeParseError, "Failed to read request body")
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Warn("a2a: malformed request", zap.Error(err))
		h.sendError(c, nil, CodeParseError, "Parse error")
		return
	}

	// Some clients post bare message params without the JSON-RPC envelope.
	if req.JSONRPC == "" && req.Method == "" {
		var params MessageParams
		if err := json.Unmarshal(body, &params); err != nil || len(params.Message.Parts) == 0 {
			h.sendError(c, nil, CodeInvalidRequest, "Invalid request format")
			return
		}
		h.sendResult(c, nil, h.handleMessage(c.Request.Context(), params.Message))
		return
	}

	if req.JSONRPC != "2.0" {
		h.sendError(c, req.ID, CodeInvalidRequest, "Invalid JSON-RPC version")
		return
	}

	switch req.Method {
	case "message/send", "agent/task":
		var params MessageParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			h.logger.Warn("a2a: invalid params", zap.String("method", req.Method), zap.Error(err))
			h.sendError(c, req.ID, CodeInvalidParams, "Invalid parameters")
			return
		}
		h.sendResult(c, req.ID, h.handleMessage(c.Request.Context(), params.Message))
	default:
		h.sendError(c, req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg Message) Task {
	sessionName := msg.ContextID
	if sessionName == "" {
		sessionName = msg.TaskID
	}
	if sessionName == "" {
		sessionName = uuid.NewString()
	}
	taskID := msg.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}

	text := ExtractText(msg)
	if text == "" {
		return h.task(taskID, sessionName, StateInputRequired,
			"Tell me about your company: what you sell, who you sell to, and your stage.")
	}

	reply, err := h.conv.Converse(ctx, sessionName, text)
	if err != nil {
		h.logger.Error("a2a: concierge failed", zap.String("session", sessionName), zap.Error(err))
		if errors.Is(err, concierge.ErrUnavailable) {
			return h.task(taskID, sessionName, StateFailed, "The GTM concierge is not configured on this server.")
		}
		return h.task(taskID, sessionName, StateFailed, "The GTM concierge could not answer right now. Please try again.")
	}

	report, err := DataPart(render.Render(reply.Snapshot))
	if err != nil {
		h.logger.Error("a2a: encode report", zap.String("session", sessionName), zap.Error(err))
		return h.task(taskID, sessionName, StateFailed, "The GTM report could not be encoded.")
	}

	h.logger.Info("a2a: replied",
		zap.String("session", sessionName),
		zap.Strings("tools", reply.Tools),
		zap.Uint64("version", reply.Snapshot.Version),
	)
	task := h.task(taskID, sessionName, StateCompleted, reply.Text)
	task.Artifacts = []Artifact{{
		ArtifactID: uuid.NewString(),
		Name:       "GTM Report",
		Parts:      []Part{TextPart(reply.Text), report},
	}}
	return task
}

func (h *Handler) task(taskID, contextID, state, text string) Task {
	return Task{
		ID:        taskID,
		ContextID: contextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     state,
			Timestamp: Timestamp(h.now()),
			Message: &Message{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.NewString(),
				TaskID:    taskID,
				ContextID: contextID,
				Parts:     []Part{TextPart(text)},
			},
		},
	}
}

// ExtractText collects the user's words from a message. Text parts are used
// as is; a data part holding conversation history contributes its most
// recent meaningful text item.
func ExtractText(msg Message) string {
	var texts []string
	for _, part := range msg.Parts {
		switch part.Kind {
		case "text":
			if t := strings.TrimSpace(part.Text); t != "" {
				texts = append(texts, t)
			}
		case "data":
			if t := latestHistoryText(part.Data); t != "" {
				texts = append(texts, t)
			}
		}
	}
	return strings.TrimSpace(strings.Join(texts, " "))
}

func latestHistoryText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var items []struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Kind != "text" {
			continue
		}
		t := strings.NewReplacer("<p>", "", "</p>", "").Replace(items[i].Text)
		t = strings.TrimSpace(t)
		if t == "" || strings.Trim(t, ".") == "" {
			continue
		}
		return t
	}
	return ""
}

func (h *Handler) sendResult(c *gin.Context, id json.RawMessage, result Task) {
	c.JSON(http.StatusOK, JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

// JSON-RPC errors are sent with 200 OK.
func (h *Handler) sendError(c *gin.Context, id json.RawMessage, code int, message string) {
	h.logger.Warn("a2a: rpc error", zap.Int("code", code), zap.String("message", message))
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	})
}
