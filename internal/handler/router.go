/*
Package handler provides the HTTP handlers and routing setup for the user directory.

This file defines the main Router, applying middleware for request IDs, logging,
recovery, CORS, sessions and IP-based rate limiting before delegating to the
page, API and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"userdir/internal/pkg/logx"
	"userdir/internal/pkg/resp"
)

// Router sets up the routing table. Unknown paths redirect to the list.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		logx.Debug("Health check endpoint hit")

		data := map[string]any{
			"status":   "ok",
			"service":  "User Directory",
			"sessions": deps.Sessions.Count(),
		}
		resp.RespondSuccess(w, r, data)
	})

	limited := deps.MutationLimiter.Middleware

	// Pages
	r.Group(func(page chi.Router) {
		page.Use(WithSession(deps))

		page.Get("/", HandleListPage)
		page.Get("/user/{id}", HandleDetailPage)

		page.Post("/form/new", HandleOpenCreateForm)
		page.Post("/users/{id}/edit", HandleOpenEditForm)
		page.With(limited).Post("/form/submit", HandleSubmitForm)
		page.Post("/form/cancel", HandleCancelForm)

		page.Post("/users/{id}/delete", HandleStageDeletion)
		page.With(limited).Post("/delete/confirm", HandleConfirmDeletion)
		page.Post("/delete/cancel", HandleCancelDeletion)

		page.Post("/notification/dismiss", HandleDismissNotification)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(c.Handler)
		api.Use(WithSession(deps))

		api.Get("/state", HandleGetState)

		api.Route("/users", func(users chi.Router) {
			users.Get("/", HandleListUsers)
			users.Get("/{id}", HandleGetUser)

			users.Group(func(mut chi.Router) {
				mut.Use(limited)
				mut.Post("/", HandleCreateUser(deps))
				mut.Put("/{id}", HandleUpdateUser(deps))
				mut.Delete("/{id}", HandleDeleteUser)
				mut.Post("/reload", HandleReloadUsers)
			})
		})

		api.Route("/form", func(f chi.Router) {
			f.Post("/", HandleOpenForm)
			f.Patch("/field", HandleSetFormField)
			f.With(limited).Post("/submit", HandleSubmitFormAPI)
			f.Delete("/", HandleCloseForm)
		})

		api.Route("/deletion", func(d chi.Router) {
			d.Post("/", HandleStageDeletionAPI)
			d.With(limited).Post("/confirm", HandleConfirmDeletionAPI)
			d.Delete("/", HandleCancelDeletionAPI)
		})

		api.Get("/notification", HandleGetNotification)
		api.Delete("/notification", HandleDismissNotificationAPI)
	})

	r.With(RequireSession(deps)).Get("/ws", HandleWebSocket(newUpgrader(deps)))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	return r
}
