package handler

import (
	"net/http"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/httputil"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/session"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/transport/http/middleware"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/view"
)

// newPage builds the template header for the current request and drains
// queued flashes. Draining mutates the session, so it is written back
// whenever flashes were shown.
func newPage(w http.ResponseWriter, r *http.Request, sessions *session.Manager) view.Page {
	sess := middleware.Sess(r.Context())
	flashes := sess.PopFlashes()
	if len(flashes) > 0 {
		sessions.Save(w, sess)
	}
	return view.Page{
		CurrentUser: middleware.CurrentUser(r.Context()),
		Flashes:     flashes,
	}
}

// flashRedirect queues a flash for the next page and redirects.
func flashRedirect(w http.ResponseWriter, r *http.Request, sessions *session.Manager, message, category, url string) {
	sess := middleware.Sess(r.Context())
	sess.AddFlash(message, category)
	sessions.Save(w, sess)
	httputil.Redirect(w, r, url)
}
