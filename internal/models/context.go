// internal/models/context.go
package models

import "time"

// MaxRecentTurns bounds the turn history kept per session.
const MaxRecentTurns = 10

// Turn is one utterance in a conversation.
type Turn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationContext is the per-session state merged across turns.
type ConversationContext struct {
	SessionID          string                 `json:"sessionId"`
	Entities           map[string]interface{} `json:"entities"`
	RecentTurns        []Turn                 `json:"recentTurns"`
	LastIntent         string                 `json:"lastIntent,omitempty"`
	IntentConfidence   float64                `json:"intentConfidence"`
	ClarificationRound int                    `json:"clarificationRound"`
	LastInteractionAt  time.Time              `json:"lastInteractionAt"`
}

// NewConversationContext creates the state for a session's first turn.
func NewConversationContext(sessionID string) *ConversationContext {
	return &ConversationContext{
		SessionID:         sessionID,
		Entities:          make(map[string]interface{}),
		LastInteractionAt: time.Now().UTC(),
	}
}

// AppendTurn adds a turn, keeping only the most recent MaxRecentTurns.
func (c *ConversationContext) AppendTurn(turn Turn) {
	c.RecentTurns = append(c.RecentTurns, turn)
	if len(c.RecentTurns) > MaxRecentTurns {
		c.RecentTurns = c.RecentTurns[len(c.RecentTurns)-MaxRecentTurns:]
	}
}

// IsStale reports whether the session exceeded the inactivity window.
func (c *ConversationContext) IsStale(ttl time.Duration, now time.Time) bool {
	return now.Sub(c.LastInteractionAt) > ttl
}

// EntityString returns the string value of an entity field, if present.
func (c *ConversationContext) EntityString(field string) (string, bool) {
	v, ok := c.Entities[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// EntityInt returns the integer value of an entity field, if present.
// JSON round-trips land numbers as float64, so both shapes are accepted.
func (c *ConversationContext) EntityInt(field string) (int, bool) {
	switch v := c.Entities[field].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
