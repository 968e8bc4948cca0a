// Package concierge is the AI GTM strategist. It talks to Gemini with
// function calling and applies every tool call to the session store, which
// is what the live report renders from.
package concierge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/BerylCAtieno/gtm-quest/internal/models"
	"github.com/BerylCAtieno/gtm-quest/internal/session"
)

var (
	// ErrUnavailable means no model is configured.
	ErrUnavailable  = errors.New("concierge unavailable")
	ErrEmptyMessage = errors.New("empty message")
)

const (
	DefaultModel = "gemini-2.5-flash-lite"
	// maxToolRounds bounds the call/response loop for one user message.
	maxToolRounds = 8
)

// Chat is one multi-turn conversation with the model.
type Chat interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// ChatStarter opens conversations.
type ChatStarter interface {
	StartChat() Chat
}

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.Tools = Tools()

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiClient) StartChat() Chat {
	return g.model.StartChat()
}

func (g *GeminiClient) Close() {
	g.client.Close()
}

// Reply is the outcome of one user message.
type Reply struct {
	Session  string           `json:"session"`
	Text     string           `json:"text"`
	Tools    []string         `json:"tools,omitempty"`
	Snapshot session.Snapshot `json:"snapshot"`
}

type conversation struct {
	mu   sync.Mutex
	chat Chat
}

type Concierge struct {
	starter ChatStarter
	store   *session.Store
	logger  *zap.Logger

	mu    sync.Mutex
	convs map[string]*conversation
}

// New builds a concierge over store. A nil starter yields a concierge whose
// Converse always fails with ErrUnavailable.
func New(starter ChatStarter, store *session.Store, logger *zap.Logger) *Concierge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Concierge{
		starter: starter,
		store:   store,
		logger:  logger,
		convs:   make(map[string]*conversation),
	}
}

func (c *Concierge) Available() bool { return c.starter != nil }

func (c *Concierge) Store() *session.Store { return c.store }

func (c *Concierge) conversation(name string) *conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv, ok := c.convs[name]
	if !ok {
		conv = &conversation{chat: c.starter.StartChat()}
		c.convs[name] = conv
	}
	return conv
}

// Forget drops the chat history and state of a session.
func (c *Concierge) Forget(name string) {
	c.mu.Lock()
	delete(c.convs, name)
	c.mu.Unlock()
	c.store.Drop(name)
}

// Converse sends one user message in session name, runs any tool calls the
// model makes against the session state, and returns the model's final text
// along with the resulting snapshot. Messages within a session are handled
// one at a time.
func (c *Concierge) Converse(ctx context.Context, name, text string) (Reply, error) {
	if c.starter == nil {
		return Reply{}, ErrUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	conv := c.conversation(name)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	resp, err := conv.chat.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return Reply{}, fmt.Errorf("send message: %w", err)
	}

	reply := Reply{Session: name}
	for round := 0; ; round++ {
		calls, texts := splitResponse(resp)
		if len(calls) == 0 || round == maxToolRounds {
			if len(calls) > 0 {
				c.logger.Warn("tool rounds exhausted", zap.String("session", name), zap.Int("pending", len(calls)))
			}
			reply.Text = strings.TrimSpace(strings.Join(texts, ""))
			break
		}

		results := make([]genai.Part, 0, len(calls))
		for _, fc := range calls {
			reply.Tools = append(reply.Tools, fc.Name)
			results = append(results, genai.FunctionResponse{Name: fc.Name, Response: c.apply(name, fc)})
		}
		if resp, err = conv.chat.SendMessage(ctx, results...); err != nil {
			return Reply{}, fmt.Errorf("send tool results: %w", err)
		}
	}

	if reply.Text == "" && len(reply.Tools) > 0 {
		reply.Text = "I've updated your report."
	}
	reply.Snapshot = c.store.Snapshot(name)
	return reply, nil
}

// apply runs one tool call against the session. Failures are reported back
// to the model instead of aborting the turn.
func (c *Concierge) apply(name string, fc genai.FunctionCall) map[string]any {
	var result map[string]any
	snap, err := c.store.TryUpdate(name, func(st *models.GTMState) error {
		var err error
		result, err = ApplyTool(st, ToolCall{Name: fc.Name, Args: fc.Args})
		return err
	})
	if err != nil {
		c.logger.Warn("tool call rejected",
			zap.String("session", name),
			zap.String("tool", fc.Name),
			zap.Error(err))
		return map[string]any{"success": false, "error": err.Error()}
	}
	c.logger.Info("tool applied",
		zap.String("session", name),
		zap.String("tool", fc.Name),
		zap.Uint64("version", snap.Version),
		zap.Any("message", result["message"]))
	return result
}

func splitResponse(resp *genai.GenerateContentResponse) ([]genai.FunctionCall, []string) {
	var (
		calls []genai.FunctionCall
		texts []string
	)
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.FunctionCall:
			calls = append(calls, p)
		case *genai.FunctionCall:
			calls = append(calls, *p)
		case genai.Text:
			texts = append(texts, string(p))
		}
	}
	return calls, texts
}
