package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vegasseoguru/guru-web-ui/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func collect(seq func(yield func(Chunk) bool)) []Chunk {
	var chunks []Chunk
	seq(func(c Chunk) bool {
		chunks = append(chunks, c)
		return true
	})
	return chunks
}

func TestDecodeStream(t *testing.T) {
	body := "data: {\"content\":\"Top \"}\n\n" +
		"data: {\"content\":\"trends \"}\n\n" +
		"data: {\"content\":\"here\"}\n\n" +
		"data: {\"sources\":[{\"title\":\"Guide\",\"url\":\"https://x\"}]}\n\n" +
		"data: [DONE]\n\n"

	chunks := collect(decodeStream(strings.NewReader(body), testLogger()))

	require.Len(t, chunks, 4)
	assert.Equal(t, "Top ", chunks[0].Content)
	assert.Equal(t, "trends ", chunks[1].Content)
	assert.Equal(t, "here", chunks[2].Content)
	require.Len(t, chunks[3].Sources, 1)
	assert.Equal(t, "Guide", chunks[3].Sources[0].Title)
	assert.Equal(t, "https://x", chunks[3].Sources[0].URL)
}

func TestDecodeStreamArbitraryByteBoundaries(t *testing.T) {
	// One byte per read: every record spans many read boundaries and must still come
	// out as exactly one chunk.
	body := "data: {\"content\":\"hi\"}\n\ndata: [DONE]\n\n"
	r := iotest.OneByteReader(strings.NewReader(body))

	chunks := collect(decodeStream(r, testLogger()))

	require.Len(t, chunks, 1)
	assert.Equal(t, "hi", chunks[0].Content)
}

func TestDecodeStreamSkipsMalformedRecords(t *testing.T) {
	body := "data: {\"content\":\"before\"}\n\n" +
		"data: {not json at all\n\n" +
		"data: {\"content\":\"after\"}\n\n" +
		"data: [DONE]\n\n"

	chunks := collect(decodeStream(strings.NewReader(body), testLogger()))

	require.Len(t, chunks, 2)
	assert.Equal(t, "before", chunks[0].Content)
	assert.Equal(t, "after", chunks[1].Content)
}

func TestDecodeStreamReadFailure(t *testing.T) {
	r := io.MultiReader(
		strings.NewReader("data: {\"content\":\"partial\"}\n\n"),
		iotest.ErrReader(io.ErrUnexpectedEOF),
	)

	chunks := collect(decodeStream(r, testLogger()))

	require.NotEmpty(t, chunks)
	last := chunks[len(chunks)-1]
	assert.NotEmpty(t, last.Err)
}

func TestChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, chatPath, r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek", req.Model)
		assert.True(t, req.UseSearch)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		// Deliberately split one record across two writes.
		_, _ = io.WriteString(w, "data: {\"con")
		flusher.Flush()
		_, _ = io.WriteString(w, "tent\":\"hi\"}\n\n")
		flusher.Flush()
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, testLogger())
	require.NoError(t, err)

	history := []models.Message{
		{Role: models.RoleAssistant, Content: "Hi!"},
		{Role: models.RoleUser, Content: "What's new in 2024?"},
	}

	var chunks []Chunk
	for chunk := range c.ChatStream(context.Background(), history, models.ModelDeepSeek, true) {
		chunks = append(chunks, chunk)
	}

	require.Len(t, chunks, 1)
	assert.Equal(t, "hi", chunks[0].Content)
}

func TestChatStreamNon2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, testLogger())
	require.NoError(t, err)

	var chunks []Chunk
	for chunk := range c.ChatStream(context.Background(), nil, models.DefaultModel, false) {
		chunks = append(chunks, chunk)
	}

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Err, "500")
}

func TestAuditCachesPerURL(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, auditPath, r.URL.Path)
		calls.Add(1)

		var req auditRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com", req.URL)

		_ = json.NewEncoder(w).Encode(auditResponse{Report: "# Audit\n\nAll good."})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, testLogger())
	require.NoError(t, err)

	report, err := c.Audit(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "# Audit\n\nAll good.", report)

	_, err = c.Audit(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAuditFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, testLogger())
	require.NoError(t, err)

	_, err = c.Audit(context.Background(), "https://example.com")
	assert.Error(t, err)
}
