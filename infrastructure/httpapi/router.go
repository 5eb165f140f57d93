package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/destinyy00/skillswap/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps carries everything the router mounts. The websocket handler is taken
// as a plain http.Handler so the transport package stays free of routing
// concerns.
type Deps struct {
	Log           *slog.Logger
	Verifier      auth.IdentityVerifier
	Auth          *AuthHandler
	Users         *UserHandler
	Skills        *SkillHandler
	Sessions      *SessionHandler
	Notifications *NotificationHandler
	Stats         *StatsHandler
	WebSocket     http.Handler
}

func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Log))
	r.Use(middleware.Recoverer)

	r.Get("/health", Health)
	r.Get("/stats", deps.Stats.Stats)

	// The websocket handshake does its own token verification; the REST
	// middleware would break the Upgrade flow.
	r.Handle("/ws", deps.WebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Post("/auth/register", deps.Auth.Register)
		r.Post("/auth/login", deps.Auth.Login)

		r.Get("/skills", deps.Skills.List)
		r.Get("/skills/search", deps.Skills.Search)
		r.Get("/users/{userID}", deps.Users.Get)

		// Everything below requires a verified bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(deps.Verifier))

			r.Get("/auth/me", deps.Users.Me)
			r.Get("/users/me", deps.Users.Me)
			r.Put("/users/me", deps.Users.UpdateMe)

			r.Get("/skills/offered", deps.Skills.ListOffered)
			r.Post("/skills", deps.Skills.Create)

			r.Get("/sessions", deps.Sessions.List)
			r.Post("/sessions/request", deps.Sessions.Request)
			r.Patch("/sessions/{sessionID}/status", deps.Sessions.UpdateStatus)

			r.Post("/notifications", deps.Notifications.Send)
		})
	})

	return r
}
