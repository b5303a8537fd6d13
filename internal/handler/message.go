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

type MessageHandler struct {
	messages *service.MessageService
	sessions *session.Manager
	renderer *view.Renderer
}

func NewMessageHandler(messages *service.MessageService, sessions *session.Manager, renderer *view.Renderer) *MessageHandler {
	return &MessageHandler{messages: messages, sessions: sessions, renderer: renderer}
}

// ShowNew renders the new-message form.
func (h *MessageHandler) ShowNew(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "messages_new", view.MessageData{
		Page: newPage(w, r, h.sessions),
	})
}

// Create posts a message for the current user and sends them to their
// profile page.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	text := r.FormValue("text")

	if _, err := h.messages.Create(r.Context(), user.ID, text); err != nil {
		switch err {
		case model.ErrEmptyMessage:
			flashRedirect(w, r, h.sessions, "Message text is required.", session.FlashDanger, "/messages/new")
		case model.ErrMessageTooLong:
			flashRedirect(w, r, h.sessions, "Messages are limited to 140 characters.", session.FlashDanger, "/messages/new")
		default:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	monitoring.MessagesPostedTotal.Inc()
	httputil.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID))
}

// Show renders a single message. Visible without a session.
func (h *MessageHandler) Show(w http.ResponseWriter, r *http.Request) {
	page := newPage(w, r, h.sessions)

	messageID, err := httputil.URLParamID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	msg, err := h.messages.GetByID(r.Context(), messageID)
	if err != nil {
		if err == model.ErrMessageNotFound {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, "messages_show", view.MessageData{
		Page:    page,
		Message: msg,
	})
}

// Delete removes a message. Only the author may do it; anyone else gets
// the unauthorized flash.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	messageID, err := httputil.URLParamID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.messages.Delete(r.Context(), messageID, user.ID); err != nil {
		switch err {
		case model.ErrNotMessageOwner:
			flashRedirect(w, r, h.sessions, "Access unauthorized.", session.FlashDanger, "/")
		case model.ErrMessageNotFound:
			http.NotFound(w, r)
		default:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	httputil.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID))
}
