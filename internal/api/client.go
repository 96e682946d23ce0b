// Package api is the client for the guru backend: it opens streaming chat exchanges and
// decodes their chunked responses, and performs request/response audit calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vegasseoguru/guru-web-ui/internal/models"
)

const (
	chatPath  = "/api/chat"
	auditPath = "/api/audit"

	// Audit reports are expensive upstream (the page gets fetched and analyzed), and
	// visitors tend to re-ask about the same URL within a session.
	auditCacheSize = 128
)

// Client talks to the chat and audit endpoints of the guru backend. The base URL is
// injected once at construction and immutable afterwards.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	auditCache *lru.Cache[string, string]
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, logger *slog.Logger) (*Client, error) {
	cache, err := lru.New[string, string](auditCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit cache: %w", err)
	}
	return &Client{
		baseURL:    baseURL,
		client:     &http.Client{},
		logger:     logger,
		auditCache: cache,
	}, nil
}

type chatRequest struct {
	Messages  []chatMessage `json:"messages"`
	Model     string        `json:"model"`
	UseSearch bool          `json:"use_search"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type auditRequest struct {
	URL string `json:"url"`
}

type auditResponse struct {
	Report string `json:"report"`
}

// ChatStream opens a streaming chat exchange carrying the full message history, the
// selected model, and the search flag, and returns a lazy sequence of decoded chunks.
// The sequence never panics: transport failures, including a non-2xx status before
// streaming begins, surface as a single terminal error chunk. The context can be used
// to cancel the ongoing request.
func (c *Client) ChatStream(
	ctx context.Context,
	messages []models.Message,
	model models.Model,
	useSearch bool,
) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		msgs := make([]chatMessage, len(messages))
		for i, msg := range messages {
			msgs[i] = chatMessage{
				Role:    string(msg.Role),
				Content: msg.Content,
			}
		}

		reqBody := chatRequest{
			Messages:  msgs,
			Model:     string(model),
			UseSearch: useSearch,
		}

		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			yield(Chunk{Err: fmt.Sprintf("error marshaling request: %v", err)})
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+chatPath, bytes.NewBuffer(jsonBody))
		if err != nil {
			yield(Chunk{Err: fmt.Sprintf("error creating request: %v", err)})
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")

		resp, err := c.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			yield(Chunk{Err: fmt.Sprintf("error sending request: %v", err)})
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			yield(Chunk{Err: fmt.Sprintf("chat request failed with status %d", resp.StatusCode)})
			return
		}

		for chunk := range decodeStream(resp.Body, c.logger) {
			if !yield(chunk) {
				return
			}
			if chunk.Err != "" {
				return
			}
		}
	}
}

// Audit requests an SEO audit report for the given page URL. Reports are cached per URL
// for the lifetime of the process.
func (c *Client) Audit(ctx context.Context, pageURL string) (string, error) {
	if report, ok := c.auditCache.Get(pageURL); ok {
		c.logger.Debug("Audit cache hit", slog.String("url", pageURL))
		return report, nil
	}

	jsonBody, err := json.Marshal(auditRequest{URL: pageURL})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+auditPath, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("audit request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	var res auditResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	c.auditCache.Add(pageURL, res.Report)
	return res.Report, nil
}
