package handler

import (
	"fmt"
	"net/http"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/httputil"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/monitoring"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/service"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/session"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/transport/http/middleware"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/view"
)

type AuthHandler struct {
	users    *service.UserService
	sessions *session.Manager
	renderer *view.Renderer
}

func NewAuthHandler(users *service.UserService, sessions *session.Manager, renderer *view.Renderer) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, renderer: renderer}
}

// ShowSignup renders the signup form.
func (h *AuthHandler) ShowSignup(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "signup", view.SignupData{
		Page: newPage(w, r, h.sessions),
	})
}

// Signup creates the account and logs the new user in. Taken usernames
// and emails re-render the form with a flash rather than erroring.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req := model.SignupRequest{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		ImageURL: r.FormValue("image_url"),
	}

	user, err := h.users.Signup(r.Context(), req)
	if err != nil {
		var message string
		switch err {
		case model.ErrUsernameTaken:
			message = "Username already taken"
		case model.ErrEmailTaken:
			message = "E-mail already taken"
		case model.ErrMissingField:
			message = "All fields are required"
		default:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		sess := middleware.Sess(r.Context())
		sess.AddFlash(message, session.FlashDanger)
		page := view.Page{Flashes: sess.PopFlashes()}
		h.renderer.Render(w, http.StatusOK, "signup", view.SignupData{
			Page:     page,
			Username: req.Username,
			Email:    req.Email,
			ImageURL: req.ImageURL,
		})
		return
	}

	monitoring.SignupsTotal.Inc()

	sess := middleware.Sess(r.Context())
	sess.UserID = user.ID
	h.sessions.Save(w, sess)
	httputil.Redirect(w, r, "/")
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "login", view.LoginData{
		Page: newPage(w, r, h.sessions),
	})
}

// Login authenticates and starts a session. Success greets the user on
// the homepage; failure re-renders the form without hinting whether the
// username exists.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		if err == model.ErrInvalidCredentials {
			monitoring.LoginsTotal.WithLabelValues("failure").Inc()
			page := view.Page{Flashes: []session.Flash{{Message: "Invalid credentials.", Category: session.FlashDanger}}}
			h.renderer.Render(w, http.StatusOK, "login", view.LoginData{
				Page:     page,
				Username: username,
			})
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	monitoring.LoginsTotal.WithLabelValues("success").Inc()

	sess := middleware.Sess(r.Context())
	sess.UserID = user.ID
	sess.AddFlash(fmt.Sprintf("Hello, %s!", user.Username), session.FlashSuccess)
	h.sessions.Save(w, sess)
	httputil.Redirect(w, r, "/")
}

// Logout ends the session and sends the user back to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.Sess(r.Context())
	sess.UserID = 0
	sess.Flashes = nil
	sess.AddFlash("You have successfully logged out!", session.FlashSuccess)
	h.sessions.Save(w, sess)
	httputil.Redirect(w, r, "/login")
}
