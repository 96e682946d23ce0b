package api

import "github.com/vegasseoguru/guru-web-ui/internal/models"

// Chunk is one decoded unit of a streamed chat response. A stream may carry any number of
// content chunks and, by convention, at most one sources chunk near the end. A non-empty
// Err is fatal for the request; no further chunks follow it.
type Chunk struct {
	Content string          `json:"content,omitempty"`
	Sources []models.Source `json:"sources,omitempty"`
	Err     string          `json:"error,omitempty"`
}
