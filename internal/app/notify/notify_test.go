package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestChannel() (*Channel, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewChannel(6*time.Second, WithClock(clock.now)), clock
}

func TestChannel_EmptyByDefault(t *testing.T) {
	c, _ := newTestChannel()

	assert.Nil(t, c.Current())
	assert.False(t, c.Dismiss(0))
}

func TestChannel_NewReplacesCurrent(t *testing.T) {
	c, _ := newTestChannel()

	c.Notify(SeveritySuccess, "User created successfully")
	c.Notify(SeverityError, "Error deleting user")

	n := c.Current()
	require.NotNil(t, n)
	assert.Equal(t, SeverityError, n.Severity)
	assert.Equal(t, "Error deleting user", n.Message)
	assert.Equal(t, uint64(2), n.Seq)
}

func TestChannel_AutoDismissAfterTTL(t *testing.T) {
	c, clock := newTestChannel()
	c.Notify(SeveritySuccess, "ok")

	clock.advance(5999 * time.Millisecond)
	assert.NotNil(t, c.Current())

	clock.advance(time.Millisecond)
	assert.Nil(t, c.Current())
}

func TestChannel_StaleDismissKeepsNewer(t *testing.T) {
	c, _ := newTestChannel()

	c.Notify(SeveritySuccess, "first")
	first := c.Current()
	c.Notify(SeveritySuccess, "second")

	assert.False(t, c.Dismiss(first.Seq))
	require.NotNil(t, c.Current())
	assert.Equal(t, "second", c.Current().Message)

	assert.True(t, c.Dismiss(0))
	assert.Nil(t, c.Current())
}

func TestChannel_ListenerSeesEveryNotification(t *testing.T) {
	var seen []string
	c := NewChannel(time.Second, WithListener(func(n Notification) {
		seen = append(seen, n.Message)
	}))

	c.Notify(SeveritySuccess, "a")
	c.Notify(SeverityError, "b")

	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestChannel_CurrentReturnsCopy(t *testing.T) {
	c, _ := newTestChannel()
	c.Notify(SeveritySuccess, "ok")

	c.Current().Message = "mutated"

	assert.Equal(t, "ok", c.Current().Message)
}
