/*
Package handler provides the HTTP handler for WebSocket connection upgrading.

A websocket connection belongs to the session named by the cookie; it receives
the session's notifications and collection-change events.
*/
package handler

import (
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"userdir/internal/app/session"
	"userdir/internal/pkg/logx"
)

// newUpgrader accepts any origin in development. Otherwise the origin must be
// the serving host itself or one of the allowed origins.
func newUpgrader(deps *AppDeps) websocket.Upgrader {
	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}
			if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}
}

// HandleWebSocket upgrades the connection and attaches it to the request's session.
func HandleWebSocket(upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromRequest(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := session.NewClient(s, conn)

		if !s.RegisterClient(client) {
			logx.Info("WebSocket closed: session already stopped.", "session_id", s.ID)
			_ = conn.Close()
			return
		}

		go client.WritePump()

		logx.Info("WebSocket connection established and client registered", "client_id", client.ID, "session_id", s.ID)

		client.ReadPump()
	}
}
