package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir/internal/app/store"
	"userdir/internal/app/user"
)

// --- helpers ---

type fakeRemote struct {
	mu        sync.Mutex
	users     []user.User
	listErr   error
	deleteErr error
	// deleteGate, when set, blocks DeleteUser until closed.
	deleteGate chan struct{}
}

func (f *fakeRemote) ListUsers(ctx context.Context) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]user.User(nil), f.users...), nil
}

func (f *fakeRemote) DeleteUser(ctx context.Context, id user.ID) error {
	if f.deleteGate != nil {
		<-f.deleteGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func newTestManager(t *testing.T, remote *fakeRemote, idle time.Duration) *Manager {
	t.Helper()
	m := NewManager(Config{
		Remote:          remote,
		NotificationTTL: 6 * time.Second,
		IdleTimeout:     idle,
	})
	t.Cleanup(m.Shutdown)
	return m
}

func newLoadedSession(t *testing.T, remote *fakeRemote) *Session {
	t.Helper()
	m := newTestManager(t, remote, time.Minute)
	s, err := m.Create()
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return !s.State.Store.Loading() && s.State.Store.Len() == len(remote.users)
	}, time.Second, 5*time.Millisecond)
	return s
}

func seedRemote() *fakeRemote {
	return &fakeRemote{users: []user.User{
		{ID: 1, Name: "Ann", Email: "a@x.com"},
		{ID: 2, Name: "Bob", Email: "b@y.com"},
	}}
}

// --- manager ---

func TestManager_CreateLoadsAndTracks(t *testing.T) {
	remote := seedRemote()
	m := newTestManager(t, remote, time.Minute)

	s, err := m.Create()
	require.NoError(t, err)

	assert.Same(t, s, m.Get(s.ID))
	assert.Equal(t, 1, m.Count())
	assert.Nil(t, m.Get("missing"))
	require.Eventually(t, func() bool { return s.State.Store.Len() == 2 }, time.Second, 5*time.Millisecond)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	remote := seedRemote()
	m := newTestManager(t, remote, time.Minute)

	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return a.State.Store.Len() == 2 && b.State.Store.Len() == 2
	}, time.Second, 5*time.Millisecond)

	a.State.Store.Upsert(user.User{Name: "Only in A"})
	a.State.SetQuery("ann")

	assert.Equal(t, 3, a.State.Store.Len())
	assert.Equal(t, 2, b.State.Store.Len())
	assert.Equal(t, "", b.State.Query())
	assert.NotEqual(t, a.ID, b.ID)
}

func TestManager_InitialLoadFailureNotifies(t *testing.T) {
	remote := &fakeRemote{listErr: errors.New("down")}
	m := newTestManager(t, remote, time.Minute)

	s, err := m.Create()
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.State.Notifications.Current() != nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, store.MsgFetchFailed, s.State.Notifications.Current().Message)
	assert.Equal(t, 0, s.State.Store.Len())
	assert.False(t, s.State.Store.Loading())
}

func TestManager_IdleSessionsAreEvicted(t *testing.T) {
	m := newTestManager(t, seedRemote(), 30*time.Millisecond)

	s, err := m.Create()
	require.NoError(t, err)

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not expire")
	}
	require.Eventually(t, func() bool { return m.Get(s.ID) == nil }, time.Second, 5*time.Millisecond)
	assert.Error(t, s.Context().Err())
}

func TestManager_TouchKeepsSessionAlive(t *testing.T) {
	m := newTestManager(t, seedRemote(), 80*time.Millisecond)

	s, err := m.Create()
	require.NoError(t, err)

	for range 6 {
		time.Sleep(30 * time.Millisecond)
		s.Touch()
	}

	assert.NotNil(t, m.Get(s.ID))
}

func TestManager_GetForgetsStoppedSessionWithoutCleanup(t *testing.T) {
	// No cleanup loop and an unbuffered channel: the stop message is dropped.
	m := &Manager{
		sessions: make(map[string]*Session),
		cfg:      Config{Remote: seedRemote(), NotificationTTL: time.Second, IdleTimeout: time.Minute},
		cleanup:  make(chan CleanupMsg),
		logger:   zerolog.Nop(),
	}
	t.Cleanup(m.Shutdown)

	s, err := m.Create()
	require.NoError(t, err)
	require.Same(t, s, m.Get(s.ID))

	s.Stop()
	<-s.Done()

	assert.Nil(t, m.Get(s.ID))
	assert.Equal(t, 0, m.Count())
}

func TestManager_ShutdownStopsSessions(t *testing.T) {
	m := NewManager(Config{Remote: seedRemote(), NotificationTTL: time.Second, IdleTimeout: time.Minute})

	s, err := m.Create()
	require.NoError(t, err)

	m.Shutdown()

	select {
	case <-s.Done():
	default:
		t.Fatal("session still running after shutdown")
	}
	_, err = m.Create()
	assert.Error(t, err)
}

// --- state / deletion ---

func TestDeletion_StageThenCancel(t *testing.T) {
	s := newLoadedSession(t, seedRemote())
	st := s.State

	assert.Equal(t, Idle(), st.Deletion())

	st.StageDeletion(2)
	assert.Equal(t, Pending(2), st.Deletion())
	assert.Equal(t, 2, st.Store.Len())

	require.NoError(t, st.CancelDeletion())
	assert.Equal(t, Idle(), st.Deletion())
	assert.Equal(t, 2, st.Store.Len())

	assert.ErrorIs(t, st.CancelDeletion(), ErrNothingStaged)
}

func TestDeletion_ConfirmRemoves(t *testing.T) {
	s := newLoadedSession(t, seedRemote())
	st := s.State

	st.StageDeletion(2)
	id, err := st.ConfirmDeletion(context.Background())

	require.NoError(t, err)
	assert.Equal(t, user.ID(2), id)
	assert.Equal(t, Idle(), st.Deletion())
	_, ok := st.Store.Get(2)
	assert.False(t, ok)
	assert.Equal(t, store.MsgDeleted, st.Notifications.Current().Message)
}

func TestDeletion_ConfirmWithoutStage(t *testing.T) {
	s := newLoadedSession(t, seedRemote())

	_, err := s.State.ConfirmDeletion(context.Background())

	assert.ErrorIs(t, err, ErrNothingStaged)
	assert.Equal(t, 2, s.State.Store.Len())
}

func TestDeletion_FailedRemoveKeepsRecord(t *testing.T) {
	remote := seedRemote()
	s := newLoadedSession(t, remote)
	remote.mu.Lock()
	remote.deleteErr = errors.New("500")
	remote.mu.Unlock()

	s.State.StageDeletion(1)
	_, err := s.State.ConfirmDeletion(context.Background())

	require.Error(t, err)
	assert.Equal(t, 2, s.State.Store.Len())
	assert.Equal(t, Idle(), s.State.Deletion())
	assert.Equal(t, store.MsgDeleteError, s.State.Notifications.Current().Message)
}

func TestDeletion_InFlightUntilRemoteAnswers(t *testing.T) {
	remote := seedRemote()
	s := newLoadedSession(t, remote)
	gate := make(chan struct{})
	remote.deleteGate = gate

	s.State.StageDeletion(1)
	done := make(chan error, 1)
	go func() {
		_, err := s.State.ConfirmDeletion(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return s.State.Deletion() == InFlight(1)
	}, time.Second, 5*time.Millisecond)

	// A new target staged meanwhile survives the first removal finishing.
	s.State.StageDeletion(2)
	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, Pending(2), s.State.Deletion())
	assert.Equal(t, 1, s.State.Store.Len())
}

func TestDeletionString(t *testing.T) {
	assert.Equal(t, "idle", Idle().String())
	assert.Equal(t, "pending(4)", Pending(4).String())
	assert.Equal(t, "in_flight(4)", InFlight(4).String())
}

func TestState_VisibleFollowsQuery(t *testing.T) {
	s := newLoadedSession(t, seedRemote())

	s.State.SetQuery("BOB")
	got := s.State.Visible()

	require.Len(t, got, 1)
	assert.Equal(t, user.ID(2), got[0].ID)
}

func TestState_EditUser(t *testing.T) {
	s := newLoadedSession(t, seedRemote())

	assert.True(t, s.State.EditUser(1))
	assert.True(t, s.State.Form.Snapshot().Editing())
	assert.Equal(t, "Ann", s.State.Form.Snapshot().Draft.Name)

	assert.False(t, s.State.EditUser(99))
}
