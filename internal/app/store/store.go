/*
Package store holds a session's in-memory user collection.

The collection is filled once from the remote directory and then mutated locally:
creates and edits never reach the remote API, removals are forwarded to it. Every
mutation reports its outcome on the notification channel.
*/
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"userdir/internal/app/directory"
	"userdir/internal/app/notify"
	"userdir/internal/app/user"
	"userdir/internal/pkg/errs"
	"userdir/internal/pkg/logx"
)

// Notification messages raised by the store.
const (
	MsgCreated     = "User created successfully"
	MsgUpdated     = "User updated successfully"
	MsgDeleted     = "User deleted successfully"
	MsgFetchFailed = "Error fetching users"
	MsgDeleteError = "Error deleting user"
)

// ChangeFunc is called after the collection changed, outside the store lock.
type ChangeFunc func()

// Store is the in-memory user collection of one session.
type Store struct {
	mu      sync.RWMutex
	users   []user.User
	loadErr error
	lastID  user.ID

	// loads counts fetches in flight. loadGen numbers fetches by start order
	// and appliedGen is the newest one whose outcome was recorded.
	loads      int
	loadGen    uint64
	appliedGen uint64

	remote   directory.Service
	notifier notify.Notifier
	onChange ChangeFunc
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for identifier generation, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithChangeFunc registers fn to run after every change of the collection.
func WithChangeFunc(fn ChangeFunc) Option {
	return func(s *Store) { s.onChange = fn }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns an empty store backed by remote and reporting to notifier.
func New(remote directory.Service, notifier notify.Notifier, opts ...Option) *Store {
	s := &Store{
		users:    []user.User{},
		remote:   remote,
		notifier: notifier,
		now:      time.Now,
		logger:   logx.Component("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the full collection from the remote directory. On success it
// replaces the collection and clears the last load error; on failure the
// collection is kept and an error notification is raised. Loading() is true
// for the duration of the call.
func (s *Store) Load(ctx context.Context) error {
	return s.fetch(ctx, s.setLoading())
}

// LoadAsync marks the store as loading before returning, then runs the fetch in
// a goroutine. The channel receives the Load result and is closed.
func (s *Store) LoadAsync(ctx context.Context) <-chan error {
	gen := s.setLoading()

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.fetch(ctx, gen)
	}()
	return done
}

// setLoading registers a fetch in flight and returns its generation.
func (s *Store) setLoading() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	s.loadGen++
	return s.loadGen
}

// fetch runs the fetch numbered gen. A fetch that finishes after a newer one
// has already been recorded leaves the collection alone.
func (s *Store) fetch(ctx context.Context, gen uint64) error {
	users, err := s.remote.ListUsers(ctx)

	s.mu.Lock()
	s.loads--
	stale := gen < s.appliedGen
	if !stale {
		s.appliedGen = gen
	}

	if err != nil {
		if !stale {
			s.loadErr = err
		}
		s.mu.Unlock()

		s.logger.Error().Err(err).Msg("Loading users failed; keeping previous collection")
		s.notifier.Notify(notify.SeverityError, MsgFetchFailed)
		return fmt.Errorf("%w: %w", errs.NewError(errs.ErrUsersFetchFailed), err)
	}

	if stale {
		s.mu.Unlock()
		s.logger.Debug().Uint64("load_gen", gen).Msg("Discarding result of superseded load")
		return nil
	}

	s.users = dedupe(users)
	s.loadErr = nil
	count := len(s.users)
	s.mu.Unlock()

	s.logger.Info().Int("count", count).Msg("Users loaded")
	s.changed()
	return nil
}

// dedupe keeps the first record for every identifier, so identifiers stay
// unique even when the remote answer repeats one.
func dedupe(users []user.User) []user.User {
	out := make([]user.User, 0, len(users))
	seen := make(map[user.ID]struct{}, len(users))
	for _, u := range users {
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Upsert replaces the record with u.ID in place when that identifier is held,
// otherwise appends u under a fresh identifier. It never calls the remote API.
// The notification says "updated" whenever u arrived with an identifier. The
// returned bool reports whether a record was appended.
func (s *Store) Upsert(u user.User) (user.User, bool) {
	supplied := u.ID != 0

	s.mu.Lock()
	idx := -1
	if supplied {
		idx = s.indexOf(u.ID)
	}

	created := idx < 0
	if created {
		u.ID = s.nextID()
		s.users = append(s.users, u)
	} else {
		s.users[idx] = u
	}
	s.mu.Unlock()

	if supplied {
		s.notifier.Notify(notify.SeveritySuccess, MsgUpdated)
	} else {
		s.notifier.Notify(notify.SeveritySuccess, MsgCreated)
	}

	s.logger.Info().Stringer("user_id", u.ID).Bool("created", created).Msg("User upserted")
	s.changed()
	return u, created
}

// nextID returns an identifier derived from the current time in milliseconds,
// above every identifier issued before and not held by any record. Caller holds mu.
func (s *Store) nextID() user.ID {
	id := user.ID(s.now().UnixMilli())
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for s.indexOf(id) >= 0 {
		id++
	}
	s.lastID = id
	return id
}

// Remove asks the remote directory to delete id. On success the matching record
// is dropped (nothing happens locally when none is held) and a success
// notification is raised; on failure the collection is unchanged and an error
// notification is raised.
func (s *Store) Remove(ctx context.Context, id user.ID) error {
	if err := s.remote.DeleteUser(ctx, id); err != nil {
		s.logger.Error().Err(err).Stringer("user_id", id).Msg("Removing user failed; keeping record")
		s.notifier.Notify(notify.SeverityError, MsgDeleteError)
		return fmt.Errorf("%w: %w", errs.NewError(errs.ErrUserDeleteFailed), err)
	}

	s.mu.Lock()
	removed := false
	if idx := s.indexOf(id); idx >= 0 {
		s.users = slices.Delete(s.users, idx, idx+1)
		removed = true
	}
	s.mu.Unlock()

	s.notifier.Notify(notify.SeveritySuccess, MsgDeleted)

	s.logger.Info().Stringer("user_id", id).Bool("was_held", removed).Msg("User removed")
	if removed {
		s.changed()
	}
	return nil
}

// indexOf returns the position of id or -1. Caller holds mu.
func (s *Store) indexOf(id user.ID) int {
	return slices.IndexFunc(s.users, func(u user.User) bool { return u.ID == id })
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// All returns a copy of the collection in order.
func (s *Store) All() []user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

// Filtered applies the search filter to the current collection. It is
// recomputed on every call.
func (s *Store) Filtered(query string) []user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return user.Filter(s.users, query)
}

// Get returns the record with id.
func (s *Store) Get(id user.ID) (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.users[idx], true
	}
	return user.User{}, false
}

// Len returns the collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Loading reports whether any Load is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads > 0
}

// LoadErr returns the error of the last Load, or nil if it succeeded or none ran.
func (s *Store) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}
