package middleware

import (
	"context"
	"net/http"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/httputil"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/session"
)

type contextKey string

const (
	sessionKey contextKey = "session"
	userKey    contextKey = "current_user"
)

// UserProvider loads the user attached to a session.
type UserProvider interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// SessionMiddleware decodes the session cookie and resolves the current
// user once per request.
type SessionMiddleware struct {
	sessions *session.Manager
	users    UserProvider
}

func NewSessionMiddleware(sessions *session.Manager, users UserProvider) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, users: users}
}

// Load attaches the session, and the current user when the session's
// user id still resolves, to the request context. A stale id (deleted
// account) degrades to an anonymous session.
func (m *SessionMiddleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.sessions.Load(r)

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		if sess.LoggedIn() {
			user, err := m.users.GetByID(ctx, sess.UserID)
			if err == nil {
				ctx = context.WithValue(ctx, userKey, user)
			} else {
				sess.UserID = 0
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects anonymous requests with the unauthorized flash and
// a redirect to the homepage. Mutating routes and member-only pages sit
// behind this.
func (m *SessionMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			sess := Sess(r.Context())
			sess.AddFlash("Access unauthorized.", session.FlashDanger)
			m.sessions.Save(w, sess)
			httputil.Redirect(w, r, "/")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sess returns the request's session. Load always sets one.
func Sess(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(sessionKey).(*session.Session); ok {
		return s
	}
	return &session.Session{}
}

// CurrentUser returns the logged-in user, or nil when anonymous.
func CurrentUser(ctx context.Context) *model.User {
	if u, ok := ctx.Value(userKey).(*model.User); ok {
		return u
	}
	return nil
}
