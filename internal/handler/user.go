package handler

import (
	"context"
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

type UserHandler struct {
	users    *service.UserService
	messages *service.MessageService
	follows  *service.FollowService
	likes    *service.LikeService
	sessions *session.Manager
	renderer *view.Renderer
}

func NewUserHandler(
	users *service.UserService,
	messages *service.MessageService,
	follows *service.FollowService,
	likes *service.LikeService,
	sessions *session.Manager,
	renderer *view.Renderer,
) *UserHandler {
	return &UserHandler{
		users:    users,
		messages: messages,
		follows:  follows,
		likes:    likes,
		sessions: sessions,
		renderer: renderer,
	}
}

// List shows the user directory, optionally filtered by ?q=.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page := newPage(w, r, h.sessions)
	query := r.URL.Query().Get("q")

	users, err := h.users.Search(r.Context(), query)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, "users_index", view.UserListData{
		Page:  page,
		Users: users,
		Query: query,
	})
}

// Show renders a user's profile with their messages.
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	page := newPage(w, r, h.sessions)

	userID, err := httputil.URLParamID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		if err == model.ErrUserNotFound {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var viewerID int64
	if page.CurrentUser != nil {
		viewerID = page.CurrentUser.ID
	}

	messages, err := h.messages.GetByUser(r.Context(), userID, viewerID)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var isFollowing bool
	if viewerID != 0 && viewerID != userID {
		isFollowing, err = h.users.IsFollowing(r.Context(), viewerID, userID)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	h.renderer.Render(w, http.StatusOK, "users_show", view.ProfileData{
		Page:        page,
		Profile:     profile,
		Messages:    messages,
		IsFollowing: isFollowing,
	})
}

// Following lists the users this user follows.
func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.renderFollowList(w, r, "users_following", h.follows.GetFollowing)
}

// Followers lists the users following this user.
func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.renderFollowList(w, r, "users_followers", h.follows.GetFollowers)
}

func (h *UserHandler) renderFollowList(
	w http.ResponseWriter,
	r *http.Request,
	templateName string,
	list func(ctx context.Context, userID, viewerID int64) ([]model.UserSummary, error),
) {
	page := newPage(w, r, h.sessions)

	userID, err := httputil.URLParamID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	owner, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if err == model.ErrUserNotFound {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var viewerID int64
	if page.CurrentUser != nil {
		viewerID = page.CurrentUser.ID
	}

	users, err := list(r.Context(), userID, viewerID)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, templateName, view.FollowListData{
		Page:  page,
		User:  owner,
		Users: users,
	})
}

// Follow creates a follow edge from the current user.
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	followeeID, err := httputil.URLParamID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.follows.Follow(r.Context(), user.ID, followeeID); err != nil {
		switch err {
		case model.ErrCannotFollowSelf:
			flashRedirect(w, r, h.sessions, "You cannot follow yourself.", session.FlashDanger, "/")
		case model.ErrAlreadyFollowing:
			httputil.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID))
		case model.ErrUserNotFound:
			http.NotFound(w, r)
		default:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	httputil.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID))
}

// Unfollow removes a follow edge.
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	followeeID, err := httputil.URLParamID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.follows.Unfollow(r.Context(), user.ID, followeeID); err != nil && err != model.ErrNotFollowing {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	httputil.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID))
}

// Likes shows the messages a user has liked.
func (h *UserHandler) Likes(w http.ResponseWriter, r *http.Request) {
	page := newPage(w, r, h.sessions)

	userID, err := httputil.URLParamID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		if err == model.ErrUserNotFound {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var viewerID int64
	if page.CurrentUser != nil {
		viewerID = page.CurrentUser.ID
	}

	messages, err := h.messages.GetLikedByUser(r.Context(), userID, viewerID)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, "users_likes", view.LikesData{
		Page:     page,
		Profile:  profile,
		Messages: messages,
	})
}

// AddLike likes a message on behalf of the current user.
func (h *UserHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	messageID, err := httputil.URLParamID(r, "message_id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	likesURL := fmt.Sprintf("/users/%d/likes", user.ID)

	if err := h.likes.Like(r.Context(), user.ID, messageID); err != nil {
		switch err {
		case model.ErrCannotLikeOwnMsg:
			flashRedirect(w, r, h.sessions, "You cannot like your own warble!", session.FlashDanger, "/")
		case model.ErrAlreadyLiked:
			httputil.Redirect(w, r, likesURL)
		case model.ErrMessageNotFound:
			http.NotFound(w, r)
		default:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	monitoring.LikesTotal.WithLabelValues("like").Inc()
	httputil.Redirect(w, r, likesURL)
}

// RemoveLike removes the current user's like from a message.
func (h *UserHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	messageID, err := httputil.URLParamID(r, "message_id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	likesURL := fmt.Sprintf("/users/%d/likes", user.ID)

	if err := h.likes.Unlike(r.Context(), user.ID, messageID); err != nil && err != model.ErrNotLiked {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	monitoring.LikesTotal.WithLabelValues("unlike").Inc()
	httputil.Redirect(w, r, likesURL)
}

// ShowProfileForm renders the profile edit form.
func (h *UserHandler) ShowProfileForm(w http.ResponseWriter, r *http.Request) {
	page := newPage(w, r, h.sessions)

	h.renderer.Render(w, http.StatusOK, "users_edit", view.EditProfileData{
		Page: page,
		User: page.CurrentUser,
	})
}

// UpdateProfile applies profile edits after password re-confirmation.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	req := model.ProfileUpdateRequest{
		Username:       r.FormValue("username"),
		Email:          r.FormValue("email"),
		ImageURL:       r.FormValue("image_url"),
		HeaderImageURL: r.FormValue("header_image_url"),
		Bio:            httputil.OptionalFormValue(r, "bio"),
		Location:       httputil.OptionalFormValue(r, "location"),
		Password:       r.FormValue("password"),
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		switch err {
		case model.ErrInvalidCredentials:
			flashRedirect(w, r, h.sessions, "Wrong password, please try again.", session.FlashDanger, "/")
		case model.ErrUsernameTaken:
			flashRedirect(w, r, h.sessions, "Username already taken", session.FlashDanger, "/users/profile")
		case model.ErrEmailTaken:
			flashRedirect(w, r, h.sessions, "E-mail already taken", session.FlashDanger, "/users/profile")
		default:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	httputil.Redirect(w, r, fmt.Sprintf("/users/%d", updated.ID))
}

// Delete removes the current user's account and ends the session.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	if err := h.users.DeleteAccount(r.Context(), user.ID); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sess := middleware.Sess(r.Context())
	sess.UserID = 0
	sess.Flashes = nil
	h.sessions.Save(w, sess)
	httputil.Redirect(w, r, "/signup")
}
