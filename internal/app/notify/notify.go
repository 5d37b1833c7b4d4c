/*
Package notify implements the single-slot transient notification shown after
directory mutations.

The slot holds at most one Notification. Showing a new one replaces the current
one; it disappears when dismissed or once its time-to-live has elapsed.
*/
package notify

import (
	"sync"
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is one message in the slot.
type Notification struct {
	Seq       uint64    `json:"seq"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	ShownAt   time.Time `json:"shownAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Notifier is the write side used by the store.
type Notifier interface {
	Notify(severity Severity, message string)
}

// Listener is called after a notification is shown, outside the channel lock.
type Listener func(n Notification)

// Channel is a single-slot notification holder.
type Channel struct {
	mu      sync.Mutex
	current *Notification
	seq     uint64

	ttl      time.Duration
	now      func() time.Time
	listener Listener
}

// Option configures a Channel.
type Option func(*Channel)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

// WithListener registers fn to observe every shown notification.
func WithListener(fn Listener) Option {
	return func(c *Channel) { c.listener = fn }
}

// NewChannel returns an empty slot whose notifications live for ttl.
func NewChannel(ttl time.Duration, opts ...Option) *Channel {
	c := &Channel{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify shows a notification, replacing whatever is in the slot.
func (c *Channel) Notify(severity Severity, message string) {
	c.mu.Lock()
	now := c.now()
	c.seq++
	n := Notification{
		Seq:       c.seq,
		Severity:  severity,
		Message:   message,
		ShownAt:   now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.current = &n
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(n)
	}
}

// Current returns the visible notification, or nil when the slot is empty or expired.
func (c *Channel) Current() *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}
	if !c.now().Before(c.current.ExpiresAt) {
		c.current = nil
		return nil
	}

	n := *c.current
	return &n
}

// Dismiss empties the slot. A seq of 0 dismisses whatever is shown; otherwise only
// the notification with that seq is dismissed, so a stale close cannot hide a
// newer message.
func (c *Channel) Dismiss(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return false
	}
	if seq != 0 && c.current.Seq != seq {
		return false
	}
	c.current = nil
	return true
}
