package session

import (
	"time"

	"userdir/internal/pkg/randx"
)

// EventType names a websocket message.
type EventType string

const (
	// TypeInitState is sent once to a freshly registered client.
	TypeInitState EventType = "INIT_STATE"

	// TypeNotification carries a newly shown notification.
	TypeNotification EventType = "NOTIFICATION"

	// TypeUsersChanged tells clients the collection changed and views should refresh.
	TypeUsersChanged EventType = "USERS_CHANGED"

	// TypeDismissNotification is sent by clients to close the current notification.
	TypeDismissNotification EventType = "DISMISS_NOTIFICATION"
)

// Event is the envelope of every websocket message.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh ID and the current time in milliseconds.
func NewEvent(t EventType, payload any) Event {
	return Event{
		ID:        randx.EventID(),
		Type:      t,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
}

// InitStatePayload describes the session as a new client first sees it.
type InitStatePayload struct {
	SessionID    string `json:"sessionId"`
	Loading      bool   `json:"loading"`
	UserCount    int    `json:"userCount"`
	Notification any    `json:"notification"`
	Deletion     any    `json:"deletion"`
}

// UsersChangedPayload carries the collection size after a change.
type UsersChangedPayload struct {
	UserCount int `json:"userCount"`
}
