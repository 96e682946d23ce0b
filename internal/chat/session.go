// Package chat implements the conversation session: the state machine that owns ordered
// message history, classifies each submission, drives the streaming exchange with the
// backend, and shapes everything the visitor sees into assistant messages.
package chat

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vegasseoguru/guru-web-ui/internal/api"
	"github.com/vegasseoguru/guru-web-ui/internal/format"
	"github.com/vegasseoguru/guru-web-ui/internal/intent"
	"github.com/vegasseoguru/guru-web-ui/internal/models"
)

// State describes what a session is currently doing.
type State string

const (
	// StateIdle accepts one submission at a time.
	StateIdle State = "idle"
	// StateAuditing is a single request/response exchange with the audit endpoint.
	StateAuditing State = "auditing"
	// StateStreaming is the normal path: an open streaming exchange with the chat
	// endpoint.
	StateStreaming State = "streaming"
)

// Fixed user-visible replies. Errors always surface as assistant messages so the
// conversation never breaks.
const (
	askURLReply = "I'd be happy to audit a page for you! Just share the full URL " +
		"(starting with http:// or https://) and I'll take a look."
	auditErrorReply = "I apologize, but I couldn't audit that page. Please verify the " +
		"URL is correct and publicly reachable, then try again."
	chatErrorReply   = "I apologize, but I encountered an error. Please try again."
	searchErrorReply = "I apologize, but I encountered an error while searching for " +
		"the latest information. Please try again."
)

var (
	// ErrEmptyMessage is returned when a submission is blank.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrRequestInFlight is returned when a submission arrives while another is being
	// processed. The UI disables the form while loading; this guard is the session's
	// own defense.
	ErrRequestInFlight = errors.New("a request is already in flight")
)

// Upstream is the backend a session talks to. api.Client implements it.
type Upstream interface {
	ChatStream(ctx context.Context, messages []models.Message, model models.Model, useSearch bool) iter.Seq[api.Chunk]
	Audit(ctx context.Context, pageURL string) (string, error)
}

// Events receives UI-facing notifications from a session. Implementations must be safe
// for use from the goroutine running Submit.
type Events interface {
	// Thinking reports the typing-indicator phrase for the in-flight request.
	Thinking(phrase string)
	// StreamingUpdate carries the formatted partial reply after each content chunk.
	StreamingUpdate(markdown string)
	// MessageAppended fires for every message added to history, user and assistant.
	MessageAppended(msg models.Message)
}

// NopEvents discards all notifications.
type NopEvents struct{}

func (NopEvents) Thinking(string)                {}
func (NopEvents) StreamingUpdate(string)         {}
func (NopEvents) MessageAppended(models.Message) {}

// Session is the lifetime of one chat widget instance. History is append-only and only
// ever mutated by the session itself; the single-in-flight invariant means it is never
// mutated concurrently.
type Session struct {
	upstream Upstream
	events   Events
	logger   *slog.Logger
	now      func() time.Time

	mu               sync.Mutex
	messages         []models.Message
	model            models.Model
	state            State
	isLoading        bool
	isSearching      bool
	streamingMessage string
}

// Option configures a Session at construction.
type Option func(*Session)

// WithHistory restores previously persisted messages instead of seeding a greeting.
func WithHistory(messages []models.Message) Option {
	return func(s *Session) {
		if len(messages) > 0 {
			s.messages = append([]models.Message(nil), messages...)
		}
	}
}

// WithClock overrides the session's notion of "now". Used by the greeting seed.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session. A fresh session starts with a single greeting message
// carrying the current date.
func NewSession(upstream Upstream, events Events, logger *slog.Logger, opts ...Option) *Session {
	s := &Session{
		upstream: upstream,
		events:   events,
		logger:   logger,
		now:      time.Now,
		model:    models.DefaultModel,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.messages) == 0 {
		greeting := models.Greeting(s.now())
		greeting.ID = uuid.New().String()
		s.messages = []models.Message{greeting}
	}
	return s
}

// Messages returns a copy of the conversation history.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...)
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsLoading reports whether a request is in flight.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// IsSearching reports whether the in-flight request asked for search augmentation.
func (s *Session) IsSearching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSearching
}

// StreamingMessage returns the formatted in-progress assistant reply, or "" when no
// content has arrived.
func (s *Session) StreamingMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamingMessage
}

// Model returns the model identifier used for requests.
func (s *Session) Model() models.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SetModel selects the backend model for subsequent requests.
func (s *Session) SetModel(m models.Model) error {
	if !m.Valid() {
		return fmt.Errorf("unsupported model: %s", m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m
	return nil
}

// Submit processes one visitor submission to completion: classification, the backend
// exchange, and the resulting history updates. It blocks until the session is idle
// again; callers wanting asynchrony run it in a goroutine. Blank input and concurrent
// submissions are rejected.
func (s *Session) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.isLoading {
		s.mu.Unlock()
		return ErrRequestInFlight
	}
	s.isLoading = true
	userMsg := models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: s.now(),
	}
	s.messages = append(s.messages, userMsg)
	history := append([]models.Message(nil), s.messages...)
	model := s.model
	s.mu.Unlock()

	s.events.MessageAppended(userMsg)
	defer s.finish()

	if intent.DetectSEOAuditIntent(text) {
		s.handleAudit(ctx, text)
		return nil
	}

	s.handleStream(ctx, history, model, intent.DetectSearchIntent(text))
	return nil
}

func (s *Session) handleAudit(ctx context.Context, text string) {
	pageURL, ok := intent.ExtractURL(text)
	if !ok {
		// Not an error: ask for the URL and return to idle. The next submission is
		// classified from scratch.
		s.appendAssistant(askURLReply)
		return
	}

	s.setState(StateAuditing)
	s.events.Thinking(loadingPhrase(actionAnalyzing))
	s.logger.Info("Auditing page", slog.String("url", pageURL))

	report, err := s.upstream.Audit(ctx, pageURL)
	if err != nil {
		s.logger.Error("Audit failed",
			slog.String("url", pageURL),
			slog.String("error", err.Error()))
		s.appendAssistant(auditErrorReply)
		return
	}
	s.appendAssistant(report)
}

func (s *Session) handleStream(ctx context.Context, history []models.Message, model models.Model, useSearch bool) {
	s.mu.Lock()
	s.isSearching = useSearch
	s.state = StateStreaming
	s.mu.Unlock()

	action := actionThinking
	if useSearch {
		action = actionSearching
	}
	s.events.Thinking(loadingPhrase(action))
	s.logger.Info("Streaming chat request",
		slog.String("model", string(model)),
		slog.Bool("useSearch", useSearch))

	var acc strings.Builder
	var sources []models.Source

	for chunk := range s.upstream.ChatStream(ctx, history, model, useSearch) {
		if chunk.Err != "" {
			// Fatal: drop the partial accumulation, record only the error message.
			s.logger.Error("Error from chat stream", slog.String("error", chunk.Err))
			s.clearStreaming()
			reply := chatErrorReply
			if useSearch {
				reply = searchErrorReply
			}
			s.appendAssistant(reply)
			return
		}

		if len(chunk.Sources) > 0 {
			sources = chunk.Sources
		}

		if chunk.Content != "" {
			acc.WriteString(chunk.Content)
			live := format.LiveView(acc.String())
			s.mu.Lock()
			s.streamingMessage = live
			s.mu.Unlock()
			s.events.StreamingUpdate(live)
		}
	}

	s.clearStreaming()
	s.appendAssistant(format.FinalizeResponse(acc.String(), sources))
}

func (s *Session) appendAssistant(content string) {
	msg := models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistant,
		Content:   content,
		Timestamp: s.now(),
	}
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	s.events.MessageAppended(msg)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) clearStreaming() {
	s.mu.Lock()
	s.streamingMessage = ""
	s.mu.Unlock()
}

func (s *Session) finish() {
	s.mu.Lock()
	s.isLoading = false
	s.isSearching = false
	s.streamingMessage = ""
	s.state = StateIdle
	s.mu.Unlock()
}
