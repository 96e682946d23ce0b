package models

import (
	"fmt"
	"time"
)

// Message represents an individual communication entry within a conversation. Ordering is
// append-only and insertion-order significant; once a message is added to a conversation's
// history its content is never mutated.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

// Source is a citation attached to a search-augmented assistant reply. Sources carry no
// identity beyond their position; list order is display order.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Role represents the role of a message participant.
type Role string

const (
	// RoleUser represents a message authored by the visitor.
	RoleUser Role = "user"
	// RoleAssistant represents a message authored by the guru. Error notices and audit
	// reports are also recorded with this role so the conversation never breaks character.
	RoleAssistant Role = "assistant"
)

// Greeting returns the assistant message that seeds every fresh conversation, with the
// given date interpolated.
func Greeting(now time.Time) Message {
	return Message{
		Role: RoleAssistant,
		Content: fmt.Sprintf("Hi! I'm your Las Vegas SEO Guru. Today is %s. "+
			"Ask me anything about optimizing your website for the Las Vegas market!",
			now.Format("Monday, January 2, 2006")),
		Timestamp: now,
	}
}
