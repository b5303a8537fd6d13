package handler

import (
	"net/http"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/service"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/session"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/view"
)

type HomeHandler struct {
	timeline *service.TimelineService
	sessions *session.Manager
	renderer *view.Renderer
}

func NewHomeHandler(timeline *service.TimelineService, sessions *session.Manager, renderer *view.Renderer) *HomeHandler {
	return &HomeHandler{timeline: timeline, sessions: sessions, renderer: renderer}
}

// Home shows the personalized timeline when logged in and the landing
// page otherwise.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	page := newPage(w, r, h.sessions)

	if page.CurrentUser == nil {
		h.renderer.Render(w, http.StatusOK, "home_anon", view.HomeData{Page: page})
		return
	}

	messages, err := h.timeline.GetHomeTimeline(r.Context(), page.CurrentUser.ID)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, "home", view.HomeData{
		Page:     page,
		Messages: messages,
	})
}
