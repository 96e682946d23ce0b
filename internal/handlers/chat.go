package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmaxmax/go-sse"
	"github.com/vegasseoguru/guru-web-ui/internal/chat"
	"github.com/vegasseoguru/guru-web-ui/internal/models"
)

// HandleChats processes chat submissions through HTTP POST requests, managing both new
// conversation creation and message handling. It expects a "message" form field, an
// optional "conversation_id" field, and an optional "model" field. If no conversation_id
// is provided it creates a new conversation. The session runs asynchronously; its
// updates reach the browser through the conversation's SSE topic.
//
// For new conversations the complete chatbox template is rendered; for existing ones,
// the visitor's message plus a loading assistant bubble.
func (m *Main) HandleChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	msg := strings.TrimSpace(r.FormValue("message"))
	if msg == "" {
		m.logger.Error("Message is required")
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	conversationID := r.FormValue("conversation_id")
	// Whether this is a new conversation decides the template rendering strategy below.
	isNew := false
	if conversationID == "" {
		var err error
		conversationID, err = m.newConversation(r.Context(), msg)
		if err != nil {
			m.logger.Error("Failed to create conversation", slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		isNew = true
	}

	sess, err := m.sessionFor(r.Context(), conversationID)
	if err != nil {
		m.logger.Error("Failed to get session",
			slog.String("conversationID", conversationID),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if modelID := r.FormValue("model"); modelID != "" {
		if err := sess.SetModel(models.Model(modelID)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if sess.IsLoading() {
		http.Error(w, "A reply is already being generated", http.StatusConflict)
		return
	}

	go func() {
		// The SSE stream for this conversation is closed once the reply settles.
		defer func() {
			e := &sse.Message{Type: closeSSEType}
			e.AppendData("bye")
			_ = m.sseSrv.Publish(e, conversationTopic(conversationID))
		}()

		// Deliberately not the request context: navigating away should not cancel
		// the reply mid-generation.
		if err := sess.Submit(context.Background(), msg); err != nil {
			if errors.Is(err, chat.ErrRequestInFlight) {
				m.logger.Warn("Concurrent submission rejected",
					slog.String("conversationID", conversationID))
				return
			}
			m.logger.Error("Failed to process submission",
				slog.String("conversationID", conversationID),
				slog.String(errLoggerKey, err.Error()))
		}
	}()

	if isNew {
		m.renderNewConversation(w, r, conversationID, sess, msg)
		return
	}

	userView := message{
		ID:             uuid.New().String(),
		Role:           string(models.RoleUser),
		Content:        escapeText(msg),
		Timestamp:      time.Now(),
		StreamingState: "ended",
	}
	if err := m.templates.ExecuteTemplate(w, "user_message", userView); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	aiView := message{
		ID:             uuid.New().String(),
		Role:           string(models.RoleAssistant),
		Timestamp:      time.Now(),
		StreamingState: "loading",
	}
	if err := m.templates.ExecuteTemplate(w, "ai_message", aiView); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (m *Main) newConversation(ctx context.Context, firstMessage string) (string, error) {
	conv := models.Conversation{
		ID:    uuid.New().String(),
		Title: conversationTitle(firstMessage),
	}
	newID, err := m.store.AddConversation(ctx, conv)
	if err != nil {
		return "", err
	}

	divs, err := m.conversationDivs(ctx, newID)
	if err != nil {
		return "", err
	}

	msg := sse.Message{Type: conversationsSSEType}
	msg.AppendData(divs)
	if err := m.sseSrv.Publish(&msg, conversationsSSETopic); err != nil {
		return "", err
	}

	return newID, nil
}

// conversationTitle derives a sidebar label from the first message.
func conversationTitle(firstMessage string) string {
	const maxLen = 48
	title := strings.Join(strings.Fields(firstMessage), " ")
	if runes := []rune(title); len(runes) > maxLen {
		title = strings.TrimSpace(string(runes[:maxLen])) + "…"
	}
	return title
}

func (m *Main) renderNewConversation(w http.ResponseWriter, r *http.Request, conversationID string, sess *chat.Session, userMsg string) {
	views, err := m.messageViews(sess.Messages())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// The session already holds the just-submitted user message (or will momentarily);
	// make sure it is on screen even if the goroutine has not appended it yet.
	if len(views) == 0 || views[len(views)-1].Role != string(models.RoleUser) {
		views = append(views, message{
			ID:             uuid.New().String(),
			Role:           string(models.RoleUser),
			Content:        escapeText(userMsg),
			Timestamp:      time.Now(),
			StreamingState: "ended",
		})
	}
	views = append(views, message{
		ID:             uuid.New().String(),
		Role:           string(models.RoleAssistant),
		Timestamp:      time.Now(),
		StreamingState: "loading",
	})

	data := homePageData{
		CurrentConversationID: conversationID,
		Messages:              views,
		Models:                models.SupportedModels,
		SelectedModel:         sess.Model(),
	}
	if err := m.templates.ExecuteTemplate(w, "chatbox", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (m *Main) conversationDivs(ctx context.Context, activeID string) (string, error) {
	convs, err := m.store.Conversations(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, c := range convs {
		err := m.templates.ExecuteTemplate(&sb, "conversation_link", conversation{
			ID:     c.ID,
			Title:  c.Title,
			Active: c.ID == activeID,
		})
		if err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}
