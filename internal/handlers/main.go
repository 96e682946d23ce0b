package handlers

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/tmaxmax/go-sse"
	guruwebui "github.com/vegasseoguru/guru-web-ui"
	"github.com/vegasseoguru/guru-web-ui/internal/chat"
	"github.com/vegasseoguru/guru-web-ui/internal/markdown"
	"github.com/vegasseoguru/guru-web-ui/internal/models"
)

// Store defines the persistence interface for conversations and messages. services.BoltDB
// implements it.
type Store interface {
	Conversations(ctx context.Context) ([]models.Conversation, error)
	AddConversation(ctx context.Context, conv models.Conversation) (string, error)
	UpdateConversation(ctx context.Context, conv models.Conversation) error

	Messages(ctx context.Context, conversationID string) ([]models.Message, error)
	AddMessage(ctx context.Context, conversationID string, message models.Message) (string, error)
}

// Main mounts the chat widget on the marketing page: it serves the page, accepts chat
// submissions, and fans session updates out to the browser over server-sent events.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template

	upstream chat.Upstream
	store    Store
	renderer *markdown.Renderer
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*chat.Session
}

const (
	conversationsSSETopic = "conversations"

	errLoggerKey = "err"
)

// SSE event types for real-time updates.
var (
	statusSSEType        = sse.Type("status")
	messageSSEType       = sse.Type("message")
	doneSSEType          = sse.Type("message_done")
	closeSSEType         = sse.Type("closeMessage")
	conversationsSSEType = sse.Type("conversations")
)

// NewMain creates the web shell with the provided backend client, store, and markdown
// renderer. It parses the embedded HTML templates and configures the SSE server so every
// client subscribes to the conversation-list topic plus, when requested, one
// conversation's message topic.
func NewMain(upstream chat.Upstream, store Store, renderer *markdown.Renderer, logger *slog.Logger) (*Main, error) {
	tmpl, err := template.ParseFS(
		guruwebui.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return nil, err
	}

	return &Main{
		sseSrv: &sse.Server{
			OnSession: func(s *sse.Session) (sse.Subscription, bool) {
				topics := []string{sse.DefaultTopic, conversationsSSETopic}

				conversationID := s.Req.URL.Query().Get("conversation_id")
				if conversationID != "" {
					topics = append(topics, conversationTopic(conversationID))
				}

				return sse.Subscription{
					Client:      s,
					LastEventID: s.LastEventID,
					Topics:      topics,
				}, true
			},
		},
		templates: tmpl,
		upstream:  upstream,
		store:     store,
		renderer:  renderer,
		logger:    logger,
		sessions:  map[string]*chat.Session{},
	}, nil
}

func conversationTopic(conversationID string) string {
	return fmt.Sprintf("conversation-%s", conversationID)
}

// sessionFor returns the session backing the given conversation, creating it from the
// stored history on first use. A session created over an empty history seeds the dated
// greeting, which is persisted so reloads see it too.
func (m *Main) sessionFor(ctx context.Context, conversationID string) (*chat.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[conversationID]; ok {
		return sess, nil
	}

	history, err := m.store.Messages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	sess := chat.NewSession(m.upstream, conversationEvents{
		main:           m,
		conversationID: conversationID,
	}, m.logger, chat.WithHistory(history))

	if len(history) == 0 {
		for _, msg := range sess.Messages() {
			if _, err := m.store.AddMessage(ctx, conversationID, msg); err != nil {
				return nil, fmt.Errorf("failed to persist greeting: %w", err)
			}
		}
	}

	m.sessions[conversationID] = sess
	return sess, nil
}

// Shutdown gracefully terminates the SSE server, broadcasting a close message and waiting
// up to 5 seconds for clients to disconnect.
func (m *Main) Shutdown(ctx context.Context) error {
	e := &sse.Message{Type: closeSSEType}
	// The close event complies with the SSE spec requiring data.
	e.AppendData("bye")

	// The error is ignored since we're shutting down anyway.
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	return m.sseSrv.Shutdown(ctx)
}
