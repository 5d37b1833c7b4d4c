package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"userdir/internal/app/notify"
	"userdir/internal/pkg/logx"
)

const broadcastChannelBuffer = 256

// CleanupMsg asks the Manager to forget a stopped session.
type CleanupMsg struct {
	SessionID string
}

// Session wraps the State of one browser and the websocket clients (tabs)
// watching it. Run must be running for events to reach clients.
type Session struct {
	ID    string
	State *State

	clients map[string]*Client

	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	touch      chan struct{}

	cleanupChan chan<- CleanupMsg
	stopChan    chan struct{}
	stopOnce    sync.Once
	done        chan struct{}

	idleTimeout time.Duration

	// ctx scopes the session's background work (the initial load); it is
	// cancelled when Run exits.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	logger zerolog.Logger
}

func newSession(id string, idleTimeout time.Duration, cleanupChan chan<- CleanupMsg) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		ID:          id,
		clients:     make(map[string]*Client),
		broadcast:   make(chan Event, broadcastChannelBuffer),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		touch:       make(chan struct{}, 1),
		cleanupChan: cleanupChan,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
		idleTimeout: idleTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logx.Logger().With().Str("component", "session").Str("session_id", id).Logger(),
	}
}

// Context is cancelled once the session stops.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stop makes Run return immediately. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info().Msg("Received stop signal. Stopping session.")
		close(s.stopChan)
	})
}

// Touch records activity, restarting the idle countdown.
func (s *Session) Touch() {
	select {
	case s.touch <- struct{}{}:
	default:
	}
}

// ClientCount returns the number of connected websocket clients.
func (s *Session) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Run is the session's event loop: client registration, event fan-out and the
// idle timer. It returns when stopped or when the session stayed idle, with no
// clients connected, for idleTimeout.
func (s *Session) Run() {
	idle := time.NewTimer(s.idleTimeout)

	defer func() {
		idle.Stop()
		s.cancel()

		s.mu.Lock()
		for id, client := range s.clients {
			client.closeSend()
			delete(s.clients, id)
		}
		s.mu.Unlock()

		close(s.done)

		select {
		case s.cleanupChan <- CleanupMsg{SessionID: s.ID}:
		default:
			s.logger.Warn().Msg("Manager cleanup channel full. Skipping cleanup notification.")
		}

		s.logger.Info().Msg("Session loop finished.")
	}()

	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			total := len(s.clients)
			s.mu.Unlock()

			s.logger.Debug().Str("client_id", client.ID).Int("total_clients", total).Msg("Client attached.")
			s.send(client, NewEvent(TypeInitState, s.initState()))

		case client := <-s.unregister:
			s.mu.Lock()
			if current, ok := s.clients[client.ID]; ok && current == client {
				delete(s.clients, client.ID)
				client.closeSend()
			}
			total := len(s.clients)
			s.mu.Unlock()

			s.logger.Debug().Str("client_id", client.ID).Int("total_clients", total).Msg("Client detached.")
			resetTimer(idle, s.idleTimeout)

		case event := <-s.broadcast:
			messageBytes, err := json.Marshal(event)
			if err != nil {
				s.logger.Error().Err(err).Str("event_id", event.ID).Msg("Error marshaling event for broadcast.")
				continue
			}

			s.mu.Lock()
			for id, client := range s.clients {
				if !client.enqueue(messageBytes) {
					s.logger.Warn().Str("client_id", id).Msg("Client send queue full, dropping client.")
					delete(s.clients, id)
					client.closeSend()
				}
			}
			s.mu.Unlock()

		case <-s.touch:
			resetTimer(idle, s.idleTimeout)

		case <-idle.C:
			if s.ClientCount() > 0 {
				idle.Reset(s.idleTimeout)
				continue
			}
			s.logger.Info().Dur("idle_timeout", s.idleTimeout).Msg("Session idle timeout reached.")
			return

		case <-s.stopChan:
			return
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

func (s *Session) initState() InitStatePayload {
	p := InitStatePayload{
		SessionID: s.ID,
		Loading:   s.State.Store.Loading(),
		UserCount: s.State.Store.Len(),
		Deletion:  s.State.Deletion(),
	}
	if n := s.State.Notifications.Current(); n != nil {
		p.Notification = n
	}
	return p
}

// send marshals event for a single client. Called from Run only.
func (s *Session) send(client *Client, event Event) {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error marshaling event for client.")
		return
	}
	if !client.enqueue(messageBytes) {
		s.logger.Warn().Str("client_id", client.ID).Msg("Client send queue full on init.")
	}
}

// Publish queues event for every connected client without blocking.
func (s *Session) Publish(event Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.broadcast <- event:
	case <-s.done:
	default:
		s.logger.Warn().Str("event_type", string(event.Type)).Msg("Broadcast channel full. Event dropped.")
	}
}

// RegisterClient attaches client to the session. It reports false when the
// session has already stopped.
func (s *Session) RegisterClient(client *Client) bool {
	select {
	case s.register <- client:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) unregisterClient(client *Client) {
	select {
	case s.unregister <- client:
	case <-s.done:
	}
}

// publishNotification is the notification channel listener.
func (s *Session) publishNotification(n notify.Notification) {
	s.Publish(NewEvent(TypeNotification, n))
}

// publishUsersChanged is the store change hook.
func (s *Session) publishUsersChanged() {
	s.Publish(NewEvent(TypeUsersChanged, UsersChangedPayload{UserCount: s.State.Store.Len()}))
}
