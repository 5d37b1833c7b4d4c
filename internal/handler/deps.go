package handler

import (
	"userdir/internal/app/session"
	"userdir/internal/configs"
	"userdir/internal/pkg/limiter"
)

// AppDeps holds what the handlers need.
type AppDeps struct {
	Sessions *session.Manager
	Config   *configs.AppConfig

	// MutationLimiter throttles routes that change the collection. The owner
	// stops it on shutdown.
	MutationLimiter *limiter.IPRateLimiter
}
