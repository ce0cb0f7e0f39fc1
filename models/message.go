package models

import "time"

// Message roles. The history only ever holds user and assistant turns; the
// system prompt is injected at request-assembly time and never stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single conversation turn held in session scope.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
