package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/vegasseoguru/guru-web-ui/internal/models"
)

type conversation struct {
	ID    string
	Title string

	Active bool
}

type message struct {
	ID        string
	Role      string
	Content   template.HTML
	Timestamp time.Time

	StreamingState string
}

type homePageData struct {
	CurrentConversationID string
	Conversations         []conversation
	Messages              []message

	Models        []models.Model
	SelectedModel models.Model
}

// HandleHome serves the landing page with the chat widget mounted. When a conversation is
// selected via the conversation_id query parameter its stored history is rendered;
// otherwise the widget shows a fresh dated greeting.
func (m *Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")

	convs, err := m.store.Conversations(r.Context())
	if err != nil {
		m.logger.Error("Failed to get conversations", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := homePageData{
		CurrentConversationID: conversationID,
		Models:                models.SupportedModels,
		SelectedModel:         models.DefaultModel,
	}
	for _, c := range convs {
		data.Conversations = append(data.Conversations, conversation{
			ID:     c.ID,
			Title:  c.Title,
			Active: c.ID == conversationID,
		})
	}

	if conversationID != "" {
		stored, err := m.store.Messages(r.Context(), conversationID)
		if err != nil {
			m.logger.Error("Failed to get messages",
				slog.String("conversationID", conversationID),
				slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Messages, err = m.messageViews(stored)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	} else {
		greeting := models.Greeting(time.Now())
		views, err := m.messageViews([]models.Message{greeting})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Messages = views
	}

	if err := m.templates.ExecuteTemplate(w, "home.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleSSE streams real-time updates to the browser.
func (m *Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}

// escapeText wraps visitor-authored plain text for safe template interpolation.
func escapeText(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

func (m *Main) messageViews(msgs []models.Message) ([]message, error) {
	views := make([]message, len(msgs))
	for i, msg := range msgs {
		html, err := m.renderer.Render(msg.Content)
		if err != nil {
			m.logger.Error("Failed to render message",
				slog.String("messageID", msg.ID),
				slog.String(errLoggerKey, err.Error()))
			return nil, err
		}
		views[i] = message{
			ID:             msg.ID,
			Role:           string(msg.Role),
			Content:        html,
			Timestamp:      msg.Timestamp,
			StreamingState: "ended",
		}
	}
	return views, nil
}
