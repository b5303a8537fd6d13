package session

import (
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// Session holds the per-browser state carried in the signed cookie:
// the logged-in user (if any) and flash messages queued for the next
// rendered page.
type Session struct {
	UserID  int64   `json:"curr_user,omitempty"`
	Flashes []Flash `json:"flashes,omitempty"`
}

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Flash categories, mapped to alert styles in templates.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// LoggedIn reports whether a user is attached to the session.
func (s *Session) LoggedIn() bool {
	return s.UserID != 0
}

// AddFlash queues a message for the next page render.
func (s *Session) AddFlash(message, category string) {
	s.Flashes = append(s.Flashes, Flash{Message: message, Category: category})
}

// PopFlashes returns queued flashes and clears them. The caller must
// save the session afterwards so the flashes don't show twice.
func (s *Session) PopFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// Manager encodes and decodes signed session cookies.
type Manager struct {
	sc *securecookie.SecureCookie
}

// NewManager creates a session manager keyed by the given secret.
// The secret signs cookies so clients can't forge a login.
func NewManager(secret string) *Manager {
	sc := securecookie.New([]byte(secret), nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &Manager{sc: sc}
}

// Load reads the session from the request cookie. A missing, expired, or
// tampered cookie yields an empty session, never an error the caller has
// to handle.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return &Session{}
	}

	var sess Session
	if err := m.sc.Decode(CookieName, cookie.Value, &sess); err != nil {
		return &Session{}
	}
	return &sess
}

// Save writes the session back to the response as a signed cookie.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) error {
	encoded, err := m.sc.Encode(CookieName, sess)
	if err != nil {
		return errors.New("session: encode failed")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Encode returns the signed cookie value for a session. Tests use it to
// forge a logged-in request.
func (m *Manager) Encode(sess *Session) (string, error) {
	return m.sc.Encode(CookieName, sess)
}
