/*
Package session owns the per-browser application state.

Each browser session gets one State (user store, form controller, notification
slot, search query and delete confirmation) wrapped in a Session that fans
state-change events out to the browser's websocket connections and expires
after a period of inactivity. The Manager creates, finds and evicts sessions.
*/
package session

import (
	"context"
	"errors"
	"sync"

	"userdir/internal/app/form"
	"userdir/internal/app/notify"
	"userdir/internal/app/store"
	"userdir/internal/app/user"
)

// ErrNothingStaged is returned when confirming or cancelling with no staged deletion.
var ErrNothingStaged = errors.New("no deletion is staged")

// State is the application state of one session. Handlers receive it through
// the request context; nothing about it is global.
type State struct {
	Store         *store.Store
	Form          *form.Controller
	Notifications *notify.Channel

	mu       sync.Mutex
	query    string
	deletion Deletion
}

// Query returns the current search query.
func (s *State) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetQuery replaces the search query.
func (s *State) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// Visible returns the store's collection narrowed by the current query.
func (s *State) Visible() []user.User {
	return s.Store.Filtered(s.Query())
}

// Deletion returns the current confirmation value.
func (s *State) Deletion() Deletion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletion
}

// StageDeletion selects id as the deletion target. Nothing is removed until
// ConfirmDeletion. Staging replaces any staged or in-flight target in the dialog.
func (s *State) StageDeletion(id user.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletion = Pending(id)
}

// CancelDeletion drops the staged target.
func (s *State) CancelDeletion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deletion.State != DeletionPending {
		return ErrNothingStaged
	}
	s.deletion = Idle()
	return nil
}

// ConfirmDeletion removes the staged target through the store. The
// confirmation is in flight until the remote API answers; it then returns to
// idle unless something else was staged meanwhile.
func (s *State) ConfirmDeletion(ctx context.Context) (user.ID, error) {
	s.mu.Lock()
	if s.deletion.State != DeletionPending {
		s.mu.Unlock()
		return 0, ErrNothingStaged
	}
	id := s.deletion.Target
	s.deletion = InFlight(id)
	s.mu.Unlock()

	err := s.Store.Remove(ctx, id)

	s.mu.Lock()
	if s.deletion.Is(DeletionInFlight, id) {
		s.deletion = Idle()
	}
	s.mu.Unlock()

	return id, err
}

// EditUser opens the form on the held record id.
func (s *State) EditUser(id user.ID) bool {
	u, ok := s.Store.Get(id)
	if !ok {
		return false
	}
	s.Form.OpenEdit(u)
	return true
}
