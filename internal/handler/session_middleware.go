/*
Package handler provides the HTTP handlers and routing setup for the user directory.

This file binds each request to its browser session through the signed session
cookie, creating a session on first contact.
*/
package handler

import (
	"context"
	"net/http"

	"userdir/internal/app/session"
	"userdir/internal/pkg/errs"
	"userdir/internal/pkg/logx"
	"userdir/internal/pkg/randx"
	"userdir/internal/pkg/resp"
	"userdir/internal/pkg/sessiontoken"
)

type sessionCtxKey struct{}

// lookupSession returns the live session named by the request cookie, or nil.
func lookupSession(deps *AppDeps, r *http.Request) *session.Session {
	payload, err := sessiontoken.FromRequest(r, deps.Config.SessionSecret)
	if err != nil || !randx.IsValidSessionID(payload.SessionID) {
		return nil
	}
	return deps.Sessions.Get(payload.SessionID)
}

// issueCookie signs a fresh cookie for s, sliding its expiry with the idle timeout.
func issueCookie(deps *AppDeps, w http.ResponseWriter, s *session.Session) error {
	ttl := deps.Config.SessionIdleTimeout

	token, err := sessiontoken.GenerateToken(s.ID, deps.Config.SessionSecret, ttl)
	if err != nil {
		return err
	}

	sessiontoken.SetCookie(w, token, ttl, !deps.Config.IsDevelopment())
	return nil
}

// WithSession attaches the caller's session to the request context, creating one
// (and setting its cookie) when the cookie is missing, invalid or names an
// evicted session.
func WithSession(deps *AppDeps) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := lookupSession(deps, r)

			if s == nil {
				created, err := deps.Sessions.Create()
				if err != nil {
					logx.FromRequest(r).Error().Err(err).Msg("Failed to create session")
					resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
					return
				}
				s = created
			}

			if err := issueCookie(deps, w, s); err != nil {
				logx.FromRequest(r).Error().Err(err).Msg("Failed to sign session cookie")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
				return
			}

			s.Touch()

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession is WithSession without creation: requests without a live
// session are rejected with ErrSessionInvalid.
func RequireSession(deps *AppDeps) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := lookupSession(deps, r)
			if s == nil {
				logx.FromRequest(r).Warn().Msg("Request rejected: no live session")
				resp.RespondError(w, r, errs.NewError(errs.ErrSessionInvalid))
				return
			}

			s.Touch()

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromRequest returns the session installed by WithSession or RequireSession.
func SessionFromRequest(r *http.Request) *session.Session {
	s, _ := r.Context().Value(sessionCtxKey{}).(*session.Session)
	return s
}

// stateFromRequest is a shorthand for the session's State.
func stateFromRequest(r *http.Request) *session.State {
	return SessionFromRequest(r).State
}
