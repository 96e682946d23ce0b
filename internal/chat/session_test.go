package chat_test

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vegasseoguru/guru-web-ui/internal/api"
	"github.com/vegasseoguru/guru-web-ui/internal/chat"
	"github.com/vegasseoguru/guru-web-ui/internal/models"
)

type mockUpstream struct {
	mu           sync.Mutex
	chatCalls    int
	auditCalls   int
	lastSearch   bool
	lastModel    models.Model
	lastHistory  []models.Message
	lastAuditURL string

	chunks      []api.Chunk
	auditReport string
	auditErr    error

	// blockChat, when set, holds ChatStream open until released. Used to test the
	// single-flight guard.
	blockChat chan struct{}
}

func (m *mockUpstream) ChatStream(
	_ context.Context,
	messages []models.Message,
	model models.Model,
	useSearch bool,
) iter.Seq[api.Chunk] {
	m.mu.Lock()
	m.chatCalls++
	m.lastSearch = useSearch
	m.lastModel = model
	m.lastHistory = messages
	m.mu.Unlock()

	return func(yield func(api.Chunk) bool) {
		if m.blockChat != nil {
			<-m.blockChat
		}
		for _, c := range m.chunks {
			if !yield(c) {
				return
			}
		}
	}
}

func (m *mockUpstream) Audit(_ context.Context, pageURL string) (string, error) {
	m.mu.Lock()
	m.auditCalls++
	m.lastAuditURL = pageURL
	m.mu.Unlock()
	return m.auditReport, m.auditErr
}

type recordingEvents struct {
	mu       sync.Mutex
	phrases  []string
	updates  []string
	appended []models.Message
}

func (r *recordingEvents) Thinking(phrase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phrases = append(r.phrases, phrase)
}

func (r *recordingEvents) StreamingUpdate(markdown string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, markdown)
}

func (r *recordingEvents) MessageAppended(msg models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended = append(r.appended, msg)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSession(up *mockUpstream, ev chat.Events) *chat.Session {
	return chat.NewSession(up, ev, testLogger())
}

func TestNewSessionSeedsGreetingWithDate(t *testing.T) {
	fixed := time.Date(2024, time.November, 5, 9, 0, 0, 0, time.UTC)
	s := chat.NewSession(&mockUpstream{}, chat.NopEvents{}, testLogger(),
		chat.WithClock(func() time.Time { return fixed }))

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleAssistant, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Tuesday, November 5, 2024")
	assert.Equal(t, chat.StateIdle, s.State())
	assert.False(t, s.IsLoading())
}

func TestSubmitStreamingEndToEnd(t *testing.T) {
	up := &mockUpstream{
		chunks: []api.Chunk{
			{Content: "Top "},
			{Content: "trends "},
			{Content: "here"},
			{Sources: []models.Source{{Title: "Guide", URL: "https://x"}}},
		},
	}
	ev := &recordingEvents{}
	s := newSession(up, ev)

	err := s.Submit(context.Background(), "What's trending in Las Vegas SEO in 2024?")
	require.NoError(t, err)

	assert.True(t, up.lastSearch, "year + trending should set the search flag")
	assert.Equal(t, models.DefaultModel, up.lastModel)
	// Greeting + user message travel with the request.
	require.Len(t, up.lastHistory, 2)
	assert.Equal(t, models.RoleUser, up.lastHistory[1].Role)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	final := msgs[2]
	assert.Equal(t, models.RoleAssistant, final.Role)
	assert.Equal(t, "Top trends here\n\n## Sources\n\n1. [Guide](https://x)", final.Content)

	assert.False(t, s.IsLoading())
	assert.False(t, s.IsSearching())
	assert.Empty(t, s.StreamingMessage())
	assert.Equal(t, chat.StateIdle, s.State())

	// One typing-indicator phrase per request.
	require.Len(t, ev.phrases, 1)
	assert.NotEmpty(t, ev.phrases[0])

	// Live updates reflect the growing prefix in arrival order.
	require.Len(t, ev.updates, 3)
	assert.Equal(t, "Top ", ev.updates[0])
	assert.Equal(t, "Top trends here", ev.updates[2])
}

func TestSubmitAppliesListReflowToLiveUpdates(t *testing.T) {
	up := &mockUpstream{
		chunks: []api.Chunk{
			{Content: "1: First\n"},
			{Content: "5) Second"},
		},
	}
	ev := &recordingEvents{}
	s := newSession(up, ev)

	require.NoError(t, s.Submit(context.Background(), "tips please"))

	require.Len(t, ev.updates, 2)
	assert.Equal(t, "1. First\n2. Second", ev.updates[1])
}

func TestSubmitAuditWithoutURLAsksForOne(t *testing.T) {
	up := &mockUpstream{}
	s := newSession(up, chat.NopEvents{})

	require.NoError(t, s.Submit(context.Background(), "audit my website"))

	assert.Zero(t, up.chatCalls, "no chat request should be made")
	assert.Zero(t, up.auditCalls, "no audit request should be made")

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, models.RoleAssistant, msgs[2].Role)
	assert.Contains(t, msgs[2].Content, "URL")
	assert.Equal(t, chat.StateIdle, s.State())
}

func TestSubmitAuditWithURL(t *testing.T) {
	up := &mockUpstream{auditReport: "# Audit report\n\nLooking sharp."}
	s := newSession(up, chat.NopEvents{})

	require.NoError(t, s.Submit(context.Background(), "please audit my site https://example.com"))

	assert.Equal(t, 1, up.auditCalls)
	assert.Zero(t, up.chatCalls)
	assert.Equal(t, "https://example.com", up.lastAuditURL)

	msgs := s.Messages()
	assert.Equal(t, "# Audit report\n\nLooking sharp.", msgs[len(msgs)-1].Content)
}

func TestSubmitAuditFailure(t *testing.T) {
	up := &mockUpstream{auditErr: errors.New("upstream exploded")}
	s := newSession(up, chat.NopEvents{})

	require.NoError(t, s.Submit(context.Background(), "check my page https://example.com"))

	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	assert.Equal(t, models.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "verify the URL")
	assert.False(t, s.IsLoading())
}

func TestSubmitErrorChunkDiscardsPartial(t *testing.T) {
	up := &mockUpstream{
		chunks: []api.Chunk{
			{Content: "partial answer that must not survive"},
			{Err: "model fell over"},
		},
	}
	s := newSession(up, chat.NopEvents{})

	require.NoError(t, s.Submit(context.Background(), "what are the latest serp features"))

	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	assert.NotContains(t, last.Content, "partial answer")
	assert.Contains(t, last.Content, "I apologize")
	// Search was requested, so the tailored wording is used.
	assert.Contains(t, last.Content, "searching")
	assert.Empty(t, s.StreamingMessage())
	assert.False(t, s.IsLoading())
}

func TestSubmitRejectsBlankAndConcurrent(t *testing.T) {
	up := &mockUpstream{blockChat: make(chan struct{})}
	s := newSession(up, chat.NopEvents{})

	assert.ErrorIs(t, s.Submit(context.Background(), "   "), chat.ErrEmptyMessage)

	done := make(chan error, 1)
	go func() {
		done <- s.Submit(context.Background(), "hello, any seo tips")
	}()

	// Wait for the first submission to take the in-flight slot.
	require.Eventually(t, s.IsLoading, time.Second, time.Millisecond)

	assert.ErrorIs(t, s.Submit(context.Background(), "second message"), chat.ErrRequestInFlight)

	close(up.blockChat)
	require.NoError(t, <-done)
	assert.Equal(t, 1, up.chatCalls)
}

func TestSetModel(t *testing.T) {
	s := newSession(&mockUpstream{}, chat.NopEvents{})

	require.NoError(t, s.SetModel(models.ModelGemini))
	assert.Equal(t, models.ModelGemini, s.Model())

	assert.Error(t, s.SetModel(models.Model("clippy")))
	assert.Equal(t, models.ModelGemini, s.Model())
}
