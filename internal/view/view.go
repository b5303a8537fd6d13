package view

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/service"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page carries the fields every template needs: the logged-in user (nil
// when anonymous) and flash messages queued by the previous request.
type Page struct {
	CurrentUser *model.User
	Flashes     []session.Flash
}

// HomeData renders the logged-in home timeline.
type HomeData struct {
	Page
	Messages []model.Message
}

// SignupData re-fills the signup form after a failed submission.
type SignupData struct {
	Page
	Username string
	Email    string
	ImageURL string
}

// LoginData re-fills the login form after a failed submission.
type LoginData struct {
	Page
	Username string
}

// UserListData renders the user directory.
type UserListData struct {
	Page
	Users []model.UserSummary
	Query string
}

// ProfileData renders a user's profile with their messages.
type ProfileData struct {
	Page
	Profile     *service.Profile
	Messages    []model.Message
	IsFollowing bool
}

// FollowListData renders a user's followers or following page.
type FollowListData struct {
	Page
	User  *model.User
	Users []model.UserSummary
}

// LikesData renders the messages a user has liked.
type LikesData struct {
	Page
	Profile  *service.Profile
	Messages []model.Message
}

// EditProfileData renders the profile edit form.
type EditProfileData struct {
	Page
	User *model.User
}

// MessageData renders a single message page or the new-message form.
type MessageData struct {
	Page
	Message *model.Message
}

var pageNames = []string{
	"home",
	"home_anon",
	"signup",
	"login",
	"users_index",
	"users_show",
	"users_following",
	"users_followers",
	"users_likes",
	"users_edit",
	"messages_new",
	"messages_show",
}

// Renderer holds the parsed page templates. Each page is parsed together
// with the base layout so {{template "content"}} resolves per page.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses all embedded templates. Fails at startup, not at
// request time, if a template is broken.
func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templatesFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes the named page. Data must embed Page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data interface{}) {
	t, ok := r.pages[name]
	if !ok {
		logrus.WithField("template", name).Error("view: unknown template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		logrus.WithField("template", name).WithError(err).Error("view: render failed")
	}
}
