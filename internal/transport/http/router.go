package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/handler"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/monitoring"
	sessionmw "github.com/jesseruhland/SBUnit26TwitterClone/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	HomeHandler    *handler.HomeHandler
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	MessageHandler *handler.MessageHandler
	Session        *sessionmw.SessionMiddleware
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(monitoring.Middleware)
	r.Use(cfg.Session.Load)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public routes
	r.Get("/", cfg.HomeHandler.Home)
	r.Get("/signup", cfg.AuthHandler.ShowSignup)
	r.Post("/signup", cfg.AuthHandler.Signup)
	r.Get("/login", cfg.AuthHandler.ShowLogin)
	r.Post("/login", cfg.AuthHandler.Login)
	r.Get("/logout", cfg.AuthHandler.Logout)
	r.Get("/messages/{id}", cfg.MessageHandler.Show)

	// Member routes - require a logged-in session
	r.Group(func(r chi.Router) {
		r.Use(cfg.Session.RequireUser)

		r.Get("/users", cfg.UserHandler.List)
		r.Get("/users/profile", cfg.UserHandler.ShowProfileForm)
		r.Post("/users/profile", cfg.UserHandler.UpdateProfile)
		r.Post("/users/delete", cfg.UserHandler.Delete)
		r.Get("/users/{id}", cfg.UserHandler.Show)
		r.Get("/users/{id}/following", cfg.UserHandler.Following)
		r.Get("/users/{id}/followers", cfg.UserHandler.Followers)
		r.Get("/users/{id}/likes", cfg.UserHandler.Likes)
		r.Post("/users/follow/{id}", cfg.UserHandler.Follow)
		r.Post("/users/stop-following/{id}", cfg.UserHandler.Unfollow)
		r.Post("/users/add_like/{message_id}", cfg.UserHandler.AddLike)
		r.Post("/users/remove_like/{message_id}", cfg.UserHandler.RemoveLike)

		r.Get("/messages/new", cfg.MessageHandler.ShowNew)
		r.Post("/messages/new", cfg.MessageHandler.Create)
		r.Post("/messages/{id}/delete", cfg.MessageHandler.Delete)
	})

	return r
}
