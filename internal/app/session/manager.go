package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"userdir/internal/app/directory"
	"userdir/internal/app/form"
	"userdir/internal/app/notify"
	"userdir/internal/app/store"
	"userdir/internal/app/user"
	"userdir/internal/pkg/logx"
	"userdir/internal/pkg/randx"
)

// Config holds what every new session is built from.
type Config struct {
	// Remote is the user-directory API the store loads from and deletes through.
	Remote directory.Service

	// NotificationTTL is how long a notification stays visible.
	NotificationTTL time.Duration

	// Validation switches optional form rules.
	Validation user.ValidationOptions

	// IdleTimeout evicts sessions without requests or websocket clients.
	IdleTimeout time.Duration
}

// Manager creates, tracks and evicts sessions.
type Manager struct {
	sessions map[string]*Session
	cfg      Config

	// mu protects sessions.
	mu sync.RWMutex

	// cleanup receives stopped sessions from their Run loops.
	cleanup chan CleanupMsg

	wg           sync.WaitGroup
	shutdownOnce sync.Once
	logger       zerolog.Logger
}

// NewManager constructs a Manager and starts its cleanup loop.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		cleanup:  make(chan CleanupMsg, 64),
		logger:   logx.Component("session_manager"),
	}

	m.wg.Add(1)
	go m.runCleanupLoop()

	return m
}

func (m *Manager) runCleanupLoop() {
	defer m.wg.Done()

	m.logger.Info().Msg("Cleanup loop started.")

	for msg := range m.cleanup {
		m.deleteSession(msg.SessionID)
	}

	m.logger.Info().Msg("Cleanup loop stopped.")
}

func (m *Manager) deleteSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		m.logger.Info().Str("session_id", id).Msg("Session removed.")
	}
}

// Create builds a new session with its own state, starts its loop and kicks
// off the initial load of the user collection.
func (m *Manager) Create() (*Session, error) {
	id, err := randx.SessionID()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s := newSession(id, m.cfg.IdleTimeout, m.cleanup)

	notifications := notify.NewChannel(m.cfg.NotificationTTL, notify.WithListener(s.publishNotification))
	users := store.New(m.cfg.Remote, notifications,
		store.WithChangeFunc(s.publishUsersChanged),
		store.WithLogger(s.logger.With().Str("component", "store").Logger()),
	)

	s.State = &State{
		Store:         users,
		Form:          form.NewController(users, m.cfg.Validation),
		Notifications: notifications,
	}

	m.mu.Lock()
	if m.sessions == nil {
		m.mu.Unlock()
		s.cancel()
		return nil, fmt.Errorf("create session: manager is shut down")
	}
	m.sessions[id] = s
	m.mu.Unlock()

	go s.Run()
	users.LoadAsync(s.Context())

	m.logger.Info().Str("session_id", id).Msg("New session created.")
	return s, nil
}

// Get returns the live session with id, or nil. A stopped session whose
// cleanup message was dropped is forgotten here instead.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s := m.sessions[id]
	m.mu.RUnlock()

	if s == nil {
		return nil
	}

	select {
	case <-s.Done():
		m.deleteSession(id)
		return nil
	default:
		return s
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Shutdown stops every session and the cleanup loop. Later calls do nothing.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(m.shutdown)
}

func (m *Manager) shutdown() {
	m.logger.Info().Msg("Shutting down session manager...")

	m.mu.Lock()
	stopping := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		s.Stop()
		stopping = append(stopping, s)
	}
	m.sessions = nil
	m.mu.Unlock()

	for _, s := range stopping {
		<-s.Done()
	}

	close(m.cleanup)
	m.wg.Wait()

	m.logger.Info().Msg("Session manager shutdown complete.")
}
