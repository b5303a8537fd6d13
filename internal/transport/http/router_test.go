package http

import (
	"context"
	"io"
	stdhttp "net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/database"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/handler"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/repository"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/service"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/session"
	sessionmw "github.com/jesseruhland/SBUnit26TwitterClone/internal/transport/http/middleware"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/view"
)

// testApp spins up the full application against an in-memory database,
// no Redis. Requests go through the real router, middleware, and
// templates.
type testApp struct {
	server   *httptest.Server
	db       *sqlx.DB
	sessions *session.Manager
	users    *service.UserService
	messages *service.MessageService
	follows  *service.FollowService
	likes    *service.LikeService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	followRepo := repository.NewFollowRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	users := service.NewUserService(userRepo, messageRepo, followRepo, likeRepo, db)
	messages := service.NewMessageService(messageRepo, likeRepo, nil)
	follows := service.NewFollowService(followRepo, userRepo, nil)
	likes := service.NewLikeService(likeRepo, messageRepo, db)
	timeline := service.NewTimelineService(messageRepo, followRepo, likeRepo, nil)

	renderer, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	sessions := session.NewManager("test secret")
	mw := sessionmw.NewSessionMiddleware(sessions, users)

	router := NewRouter(RouterConfig{
		HomeHandler:    handler.NewHomeHandler(timeline, sessions, renderer),
		AuthHandler:    handler.NewAuthHandler(users, sessions, renderer),
		UserHandler:    handler.NewUserHandler(users, messages, follows, likes, sessions, renderer),
		MessageHandler: handler.NewMessageHandler(messages, sessions, renderer),
		Session:        mw,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{
		server:   server,
		db:       db,
		sessions: sessions,
		users:    users,
		messages: messages,
		follows:  follows,
		likes:    likes,
	}
}

func (a *testApp) signup(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := a.users.Signup(context.Background(), model.SignupRequest{
		Username: username,
		Email:    username + "@test.com",
		Password: "password",
	})
	if err != nil {
		t.Fatalf("signup %s: %v", username, err)
	}
	return user
}

func (a *testApp) post(t *testing.T, userID int64, text string) *model.Message {
	t.Helper()
	msg, err := a.messages.Create(context.Background(), userID, text)
	if err != nil {
		t.Fatalf("post message: %v", err)
	}
	return msg
}

// client returns an HTTP client with a cookie jar that follows redirects,
// mirroring a browser.
func (a *testApp) client(t *testing.T) *stdhttp.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("new cookie jar: %v", err)
	}
	return &stdhttp.Client{Jar: jar}
}

// noRedirectClient stops at the first response so tests can assert on
// the redirect itself.
func (a *testApp) noRedirectClient(t *testing.T) *stdhttp.Client {
	t.Helper()
	c := a.client(t)
	c.CheckRedirect = func(req *stdhttp.Request, via []*stdhttp.Request) error {
		return stdhttp.ErrUseLastResponse
	}
	return c
}

// loginAs forges a signed session cookie for the user, the same trick as
// writing the session in a test client transaction.
func (a *testApp) loginAs(t *testing.T, c *stdhttp.Client, userID int64) {
	t.Helper()
	encoded, err := a.sessions.Encode(&session.Session{UserID: userID})
	if err != nil {
		t.Fatalf("encode session: %v", err)
	}
	u, err := url.Parse(a.server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	c.Jar.SetCookies(u, []*stdhttp.Cookie{{Name: session.CookieName, Value: encoded}})
}

func (a *testApp) get(t *testing.T, c *stdhttp.Client, path string) (int, string) {
	t.Helper()
	resp, err := c.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func (a *testApp) postForm(t *testing.T, c *stdhttp.Client, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(a.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func assertContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Errorf("expected body to contain %q", want)
	}
}

func assertNotContains(t *testing.T, body, want string) {
	t.Helper()
	if strings.Contains(body, want) {
		t.Errorf("expected body not to contain %q", want)
	}
}

func TestAnonHomepage(t *testing.T) {
	app := newTestApp(t)

	status, body := app.get(t, app.client(t), "/")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, "<h4>New to Warbler?</h4>")
}

func TestHomepageLoggedIn(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	c := app.client(t)
	app.loginAs(t, c, u.ID)

	status, body := app.get(t, c, "/")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, "@testuser")
}

func TestSignupForm(t *testing.T) {
	app := newTestApp(t)

	status, body := app.get(t, app.client(t), "/signup")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, "Join Warbler today.")
}

func TestSignupSubmission(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.postForm(t, app.noRedirectClient(t), "/signup", url.Values{
		"username": {"testuser2"},
		"email":    {"test2@test.com"},
		"password": {"testuser2"},
	})
	if status != stdhttp.StatusFound {
		t.Fatalf("expected 302, got %d", status)
	}

	user, err := app.users.Authenticate(context.Background(), "testuser2", "testuser2")
	if err != nil {
		t.Fatalf("expected account to exist and authenticate: %v", err)
	}
	if user.Username != "testuser2" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "testuser")

	status, body := app.postForm(t, app.client(t), "/signup", url.Values{
		"username": {"testuser"},
		"email":    {"other@test.com"},
		"password": {"password"},
	})
	if status != stdhttp.StatusOK {
		t.Fatalf("expected form re-render, got %d", status)
	}
	assertContains(t, body, "Username already taken")
}

func TestLoginForm(t *testing.T) {
	app := newTestApp(t)

	status, body := app.get(t, app.client(t), "/login")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, "Welcome back.")
}

func TestLoginSubmission(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "testuser")

	status, body := app.postForm(t, app.client(t), "/login", url.Values{
		"username": {"testuser"},
		"password": {"password"},
	})
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertContains(t, body, "Hello, testuser!")
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "testuser")

	status, body := app.postForm(t, app.client(t), "/login", url.Values{
		"username": {"testuser"},
		"password": {"wrong"},
	})
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, "Invalid credentials.")
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	c := app.client(t)
	app.loginAs(t, c, u.ID)

	status, body := app.get(t, c, "/logout")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertContains(t, body, "You have successfully logged out!")

	// Session is gone: a member page now rejects
	_, body = app.get(t, c, "/users")
	assertContains(t, body, "Access unauthorized.")
}

func TestUsersPage(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	c := app.client(t)
	app.loginAs(t, c, u.ID)

	status, body := app.get(t, c, "/users")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, `<div class="card user-card">`)
}

func TestUsersPageNotLoggedIn(t *testing.T) {
	app := newTestApp(t)

	status, body := app.get(t, app.client(t), "/users")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertContains(t, body, "Access unauthorized.")
}

func TestUserProfile(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	c := app.client(t)
	app.loginAs(t, c, u.ID)

	status, body := app.get(t, c, "/users/"+itoa(u.ID))
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, "@testuser")
	assertContains(t, body, `href="/users/`+itoa(u.ID)+`/likes"`)
}

func TestFollowingLoggedIn(t *testing.T) {
	app := newTestApp(t)
	u1 := app.signup(t, "testuser")
	u2 := app.signup(t, "testuser2")

	c := app.client(t)
	app.loginAs(t, c, u1.ID)

	status, body := app.postForm(t, c, "/users/follow/"+itoa(u2.ID), nil)
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertContains(t, body, "@testuser2")
	assertContains(t, body, "Unfollow")

	following, err := app.users.IsFollowing(context.Background(), u1.ID, u2.ID)
	if err != nil || !following {
		t.Errorf("expected follow edge, got %v %v", following, err)
	}
}

func TestFollowingNotLoggedIn(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	status, body := app.get(t, app.client(t), "/users/"+itoa(u.ID)+"/following")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertContains(t, body, "Access unauthorized.")
}

func TestFollowersLoggedIn(t *testing.T) {
	app := newTestApp(t)
	u1 := app.signup(t, "testuser")
	u2 := app.signup(t, "testuser2")

	if err := app.follows.Follow(context.Background(), u1.ID, u2.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	c := app.client(t)
	app.loginAs(t, c, u1.ID)

	status, body := app.get(t, c, "/users/"+itoa(u2.ID)+"/followers")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, "@testuser")
}

func TestFollowersNotLoggedIn(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	_, body := app.get(t, app.client(t), "/users/"+itoa(u.ID)+"/followers")
	assertContains(t, body, "Access unauthorized.")
}

func TestNewFollowNotLoggedIn(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser2")

	_, body := app.postForm(t, app.client(t), "/users/follow/"+itoa(u.ID), nil)
	assertContains(t, body, "Access unauthorized.")
}

func TestStopFollowing(t *testing.T) {
	app := newTestApp(t)
	u1 := app.signup(t, "testuser")
	u2 := app.signup(t, "testuser2")

	if err := app.follows.Follow(context.Background(), u1.ID, u2.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	c := app.client(t)
	app.loginAs(t, c, u1.ID)

	status, body := app.postForm(t, c, "/users/stop-following/"+itoa(u2.ID), nil)
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertNotContains(t, body, "@testuser2")
	assertNotContains(t, body, "Unfollow")
}

func TestLikesNotLoggedIn(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	_, body := app.get(t, app.client(t), "/users/"+itoa(u.ID)+"/likes")
	assertContains(t, body, "Access unauthorized.")
}

func TestAddLike(t *testing.T) {
	app := newTestApp(t)
	u1 := app.signup(t, "testuser")
	u2 := app.signup(t, "testuser2")
	m := app.post(t, u2.ID, "test text")

	c := app.client(t)
	app.loginAs(t, c, u1.ID)

	status, body := app.postForm(t, c, "/users/add_like/"+itoa(m.ID), nil)
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertContains(t, body, "@testuser2")
	assertContains(t, body, "star")

	got, err := app.messages.GetByID(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if got.LikeCount != 1 {
		t.Errorf("expected like_count 1, got %d", got.LikeCount)
	}
}

func TestRemoveLike(t *testing.T) {
	app := newTestApp(t)
	u1 := app.signup(t, "testuser")
	u2 := app.signup(t, "testuser2")
	m := app.post(t, u2.ID, "test text")

	if err := app.likes.Like(context.Background(), u1.ID, m.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	c := app.client(t)
	app.loginAs(t, c, u1.ID)

	status, body := app.postForm(t, c, "/users/remove_like/"+itoa(m.ID), nil)
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertNotContains(t, body, "@testuser2")
	assertNotContains(t, body, "star")
}

func TestProfileFormLoggedIn(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	c := app.client(t)
	app.loginAs(t, c, u.ID)

	status, body := app.get(t, c, "/users/profile")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, "form")
}

func TestProfileFormNotLoggedIn(t *testing.T) {
	app := newTestApp(t)

	_, body := app.get(t, app.client(t), "/users/profile")
	assertContains(t, body, "Access unauthorized.")
}

func TestProfileUpdate(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	c := app.client(t)
	app.loginAs(t, c, u.ID)

	status, body := app.postForm(t, c, "/users/profile", url.Values{
		"username": {"NewUserName"},
		"password": {"password"},
	})
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertContains(t, body, "@NewUserName")
}

func TestProfileUpdateWrongPassword(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	c := app.client(t)
	app.loginAs(t, c, u.ID)

	_, body := app.postForm(t, c, "/users/profile", url.Values{
		"username": {"NewUserName"},
		"password": {"wrong"},
	})
	assertContains(t, body, "Wrong password, please try again.")

	got, err := app.users.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Username != "testuser" {
		t.Errorf("expected username unchanged, got %s", got.Username)
	}
}

func TestUserDelete(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	c := app.client(t)
	app.loginAs(t, c, u.ID)

	status, body := app.postForm(t, c, "/users/delete", nil)
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertContains(t, body, "Join Warbler today.")

	if _, err := app.users.GetByID(context.Background(), u.ID); err != model.ErrUserNotFound {
		t.Errorf("expected account to be gone, got %v", err)
	}
}

func TestUserDeleteNotLoggedIn(t *testing.T) {
	app := newTestApp(t)

	_, body := app.postForm(t, app.client(t), "/users/delete", nil)
	assertContains(t, body, "Access unauthorized.")
}

func TestMessageEntryForm(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	c := app.client(t)
	app.loginAs(t, c, u.ID)

	status, body := app.get(t, c, "/messages/new")
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, "<form")
}

func TestMessageEntryFormNotLoggedIn(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.get(t, app.noRedirectClient(t), "/messages/new")
	if status != stdhttp.StatusFound {
		t.Fatalf("expected 302, got %d", status)
	}
}

func TestMessageCreate(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	c := app.noRedirectClient(t)
	app.loginAs(t, c, u.ID)

	status, _ := app.postForm(t, c, "/messages/new", url.Values{"text": {"Hello"}})
	if status != stdhttp.StatusFound {
		t.Fatalf("expected 302, got %d", status)
	}

	messages, err := app.messages.GetByUser(context.Background(), u.ID, 0)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "Hello" {
		t.Errorf("unexpected messages: %+v", messages)
	}
}

func TestMessageCreateNotLoggedIn(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")

	status, _ := app.postForm(t, app.noRedirectClient(t), "/messages/new", url.Values{"text": {"Hello"}})
	if status != stdhttp.StatusFound {
		t.Fatalf("expected 302, got %d", status)
	}

	messages, err := app.messages.GetByUser(context.Background(), u.ID, 0)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected no message created, got %d", len(messages))
	}
}

func TestMessageView(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")
	m := app.post(t, u.ID, "test text")

	status, body := app.get(t, app.client(t), "/messages/"+itoa(m.ID))
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	assertContains(t, body, "test text")
}

func TestMessageDelete(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")
	m := app.post(t, u.ID, "test text")

	c := app.noRedirectClient(t)
	app.loginAs(t, c, u.ID)

	status, _ := app.postForm(t, c, "/messages/"+itoa(m.ID)+"/delete", nil)
	if status != stdhttp.StatusFound {
		t.Fatalf("expected 302, got %d", status)
	}

	if _, err := app.messages.GetByID(context.Background(), m.ID); err != model.ErrMessageNotFound {
		t.Errorf("expected message deleted, got %v", err)
	}
}

func TestMessageDeleteNotLoggedIn(t *testing.T) {
	app := newTestApp(t)
	u := app.signup(t, "testuser")
	m := app.post(t, u.ID, "test text")

	_, body := app.postForm(t, app.client(t), "/messages/"+itoa(m.ID)+"/delete", nil)
	assertContains(t, body, "Access unauthorized.")
}

func TestMessageDeleteDifferentUser(t *testing.T) {
	app := newTestApp(t)
	owner := app.signup(t, "testuser")
	intruder := app.signup(t, "intruder")
	m := app.post(t, owner.ID, "test text")

	c := app.client(t)
	app.loginAs(t, c, intruder.ID)

	status, body := app.postForm(t, c, "/messages/"+itoa(m.ID)+"/delete", nil)
	if status != stdhttp.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", status)
	}
	assertContains(t, body, "Access unauthorized.")

	if _, err := app.messages.GetByID(context.Background(), m.ID); err != nil {
		t.Errorf("expected message to survive, got %v", err)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
