// Package session drives the docent chat widget: a two-tier menu flow over
// the question catalog, verified-answer resolution with an external fallback,
// and an append-only in-memory message log. One Session belongs to one open
// widget; nothing here persists across sessions.
package session

import "github.com/google/uuid"

// Role identifies the author of a chat message. It is a closed set; free-form
// role strings are not accepted anywhere in the session core.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a conversation. Messages are never mutated after
// creation; the log only grows. The structural fields tell a consuming view
// how to render the entry: CategoryPrompt marks the category menu,
// QuestionPrompt (a category id) marks the sub-question menu for that
// category, and Suggestions carries a free-text suggestion list.
type Message struct {
	ID             string
	Role           Role
	Text           string
	CategoryPrompt bool
	QuestionPrompt string
	Suggestions    []string
}

func userMessage(text string) Message {
	return Message{ID: uuid.New().String(), Role: RoleUser, Text: text}
}

func assistantMessage(text string) Message {
	return Message{ID: uuid.New().String(), Role: RoleAssistant, Text: text}
}

func categoryPrompt(text string) Message {
	m := assistantMessage(text)
	m.CategoryPrompt = true
	return m
}

func questionPrompt(text, categoryID string) Message {
	m := assistantMessage(text)
	m.QuestionPrompt = categoryID
	return m
}
