package api

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/tmaxmax/go-sse"
)

// doneSentinel is the payload that signals normal end of stream.
const doneSentinel = "[DONE]"

// decodeStream turns a streamed response body into a lazy sequence of chunks. Records
// arrive as `data: <payload>` lines; partial records spanning read boundaries are
// buffered by the SSE reader, so the underlying transport may chunk the bytes
// arbitrarily. Malformed payloads are logged and skipped rather than aborting the
// stream, and a read failure is converted into a single terminal error chunk. The
// sequence is single-pass: one decode per response body.
func decodeStream(body io.Reader, logger *slog.Logger) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		for ev, err := range sse.Read(body, nil) {
			if err != nil {
				yield(Chunk{Err: fmt.Sprintf("error reading stream: %v", err)})
				return
			}

			payload := strings.TrimSpace(ev.Data)
			if payload == doneSentinel {
				return
			}

			var chunk Chunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				logger.Warn("Skipping malformed stream record",
					slog.String("payload", payload),
					slog.String("error", err.Error()))
				continue
			}

			if !yield(chunk) {
				return
			}
		}
	}
}
