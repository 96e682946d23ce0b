package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tmaxmax/go-sse"
	"github.com/vegasseoguru/guru-web-ui/internal/models"
)

// conversationEvents bridges one session's notifications onto the conversation's SSE
// topic and into the store. Assistant-side updates reach the browser; every appended
// message is persisted.
type conversationEvents struct {
	main           *Main
	conversationID string
}

// streamPayload is the JSON shape of status/message events sent to the browser.
type streamPayload struct {
	Phrase string `json:"phrase,omitempty"`
	HTML   string `json:"html,omitempty"`
}

func (e conversationEvents) Thinking(phrase string) {
	e.publish(&sse.Message{Type: statusSSEType}, streamPayload{Phrase: phrase})
}

func (e conversationEvents) StreamingUpdate(markdown string) {
	html, err := e.main.renderer.Render(markdown)
	if err != nil {
		e.main.logger.Error("Failed to render streaming update",
			slog.String(errLoggerKey, err.Error()))
		return
	}
	e.publish(&sse.Message{Type: messageSSEType}, streamPayload{HTML: string(html)})
}

func (e conversationEvents) MessageAppended(msg models.Message) {
	if _, err := e.main.store.AddMessage(context.Background(), e.conversationID, msg); err != nil {
		e.main.logger.Error("Failed to persist message",
			slog.String("conversationID", e.conversationID),
			slog.String(errLoggerKey, err.Error()))
	}

	// The visitor's own message is already on screen; only assistant messages need
	// the final render pushed out.
	if msg.Role != models.RoleAssistant {
		return
	}

	html, err := e.main.renderer.Render(msg.Content)
	if err != nil {
		e.main.logger.Error("Failed to render message",
			slog.String(errLoggerKey, err.Error()))
		return
	}
	e.publish(&sse.Message{Type: doneSSEType}, streamPayload{HTML: string(html)})
}

func (e conversationEvents) publish(msg *sse.Message, payload streamPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		e.main.logger.Error("Failed to marshal SSE payload",
			slog.String(errLoggerKey, err.Error()))
		return
	}

	msg.AppendData(string(data))
	if err := e.main.sseSrv.Publish(msg, conversationTopic(e.conversationID)); err != nil {
		e.main.logger.Error("Failed to publish SSE message",
			slog.String("conversationID", e.conversationID),
			slog.String(errLoggerKey, err.Error()))
	}
}
