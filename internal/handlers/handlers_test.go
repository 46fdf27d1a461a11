package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/beawarely-feed/internal/feed"
	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/anonto42/beawarely-feed/internal/realtime"
	"github.com/anonto42/beawarely-feed/internal/render"
	"github.com/anonto42/beawarely-feed/internal/repositories"
	"github.com/anonto42/beawarely-feed/internal/router"
	"github.com/anonto42/beawarely-feed/internal/session"
	"github.com/anonto42/beawarely-feed/validators"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const jwtSecret = "handler-test-secret"

var t0 = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

type memoryStore struct {
	mu        sync.Mutex
	posts     []models.UserPost
	ideas     []models.ToolIdea
	works     []models.WorkExperience
	profiles  []models.Profile
	createErr error
}

func (m *memoryStore) CreatePost(_ context.Context, post *models.UserPost) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = "p-new"
	post.CreatedAt = t0.Add(time.Hour)
	m.posts = append(m.posts, *post)
	return nil
}

func (m *memoryStore) ListByVisibility(_ context.Context, visibility models.Visibility) ([]models.UserPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UserPost
	for _, p := range m.posts {
		if p.Visibility == visibility {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryStore) ListToolIdeas(context.Context) ([]models.ToolIdea, error) {
	return m.ideas, nil
}

func (m *memoryStore) ListWorkExperiences(context.Context) ([]models.WorkExperience, error) {
	return m.works, nil
}

func (m *memoryStore) GetProfilesByIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range m.profiles {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func newServer(store *memoryStore) *echo.Echo {
	return buildServer(store, nil)
}

// newLiveServer starts a server with live updates enabled. The hub stops when
// the test ends.
func newLiveServer(t *testing.T, store *memoryStore) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := realtime.NewHub(zap.NewNop())
	go hub.Run(ctx)

	srv := httptest.NewServer(buildServer(store, hub))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv
}

func buildServer(store *memoryStore, hub *realtime.Hub) *echo.Echo {
	repos := &repositories.Set{UserPosts: store, ToolIdeas: store, WorkExperiences: store, Profiles: store}
	log := zap.NewNop()
	opts := render.Options{
		PlaceholderAvatar: "https://example.test/p.png",
		ProfilePath:       "/profile.html",
		LoginPath:         "/login",
		Location:          time.UTC,
	}
	if hub != nil {
		opts.LiveURL = router.LiveFeedPath
	}
	renderer := render.New(opts)
	pipeline := feed.NewPipeline(
		feed.NewAggregator(repos, log),
		feed.NewProfileResolver(store, "https://proj.supabase.co", "https://example.test/p.png", log),
		renderer,
		store,
		log,
	)

	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, router.Deps{
		Pipeline: pipeline,
		Gate:     session.NewGate(session.NewSupabaseVerifier(jwtSecret), log),
		Hub:      hub,
		Logger:   log,
	})
	return e
}

func seededStore() *memoryStore {
	return &memoryStore{
		posts: []models.UserPost{
			{ID: "p1", AuthorID: "u1", Content: "public hello", Visibility: models.VisibilityPublic, CreatedAt: t0},
		},
		ideas: []models.ToolIdea{
			{ID: "t1", Author: "u2", Title: "Approved idea", Status: models.StatusApproved, CreatedAt: t0.Add(time.Minute)},
			{ID: "t2", Author: "u2", Title: "Pending idea", Status: "pending", CreatedAt: t0.Add(2 * time.Minute)},
		},
		profiles: []models.Profile{{ID: "u2", DisplayName: "Bea", AvatarURL: "avatars/bea.png"}},
	}
}

func token(t *testing.T, subject string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newServer(&memoryStore{}), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestGetFeed_Anonymous(t *testing.T) {
	rec := do(newServer(seededStore()), httptest.NewRequest(http.MethodGet, "/api/v1/feed?tab=public", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Approved idea")
	assert.NotContains(t, body, "Pending idea")
	assert.NotContains(t, body, "public hello")
	assert.Contains(t, body, "Bea")
	assert.Contains(t, body, "https://proj.supabase.co/storage/v1/object/public/avatars/bea.png")
}

func TestGetFeed_Authenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed?tab=public", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "u1"))
	rec := do(newServer(seededStore()), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "public hello")
	assert.Less(t, strings.Index(rec.Body.String(), "Approved idea"), strings.Index(rec.Body.String(), "public hello"))
}

func TestGetFeed_EmptyState(t *testing.T) {
	rec := do(newServer(&memoryStore{}), httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No posts yet.")
}

func TestBadTokenIsSessionError(t *testing.T) {
	e := newServer(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer forged")
	rec := do(e, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Session check failed")
	assert.NotContains(t, rec.Body.String(), "Approved idea", "must not fall back to the anonymous feed")
	assert.NotContains(t, rec.Body.String(), "feed-login-overlay")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/feed/entries", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer forged")
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec = do(e, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Session check failed. Please log in again."}`, rec.Body.String())
}

func TestGetPage(t *testing.T) {
	e := newServer(seededStore())

	rec := do(e, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div id="feed-login-overlay" class="feed-overlay">`)
	assert.Contains(t, rec.Body.String(), "Approved idea")

	req := httptest.NewRequest(http.MethodGet, "/?tab=friends", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token(t, "u1")})
	rec = do(e, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div id="feed-login-overlay" class="feed-overlay" hidden>`)
	assert.NotContains(t, rec.Body.String(), "public hello")
}

func TestGetEntries(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/entries", nil)
	rec := do(newServer(seededStore()), req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Entries  []models.FeedEntry        `json:"entries"`
			Profiles map[string]models.Profile `json:"profiles"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data.Entries, 1)
	assert.Equal(t, models.KindToolIdea, body.Data.Entries[0].Kind)
	assert.Equal(t, "Bea", body.Data.Profiles["u2"].DisplayName)
}

func TestCreatePost_RequiresLogin(t *testing.T) {
	store := seededStore()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{"content":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := do(newServer(store), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, store.posts, 1)
}

func TestCreatePost_JSON(t *testing.T) {
	store := seededStore()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{"content":"  for friends  ","visibility":"friends"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "u1"))
	rec := do(newServer(store), req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.posts, 2)
	created := store.posts[1]
	assert.Equal(t, "u1", created.AuthorID)
	assert.Equal(t, "for friends", created.Content)
	assert.Equal(t, models.VisibilityFriends, created.Visibility)

	assert.Contains(t, rec.Body.String(), "for friends")
	assert.NotContains(t, rec.Body.String(), "public hello")
}

func TestCreatePost_Form(t *testing.T) {
	store := seededStore()
	form := url.Values{"content": {"from the page"}, "visibility": {"public"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token(t, "u1")})
	rec := do(newServer(store), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?tab=public", rec.Header().Get(echo.HeaderLocation))
	assert.Len(t, store.posts, 2)
}

func TestCreatePost_Validation(t *testing.T) {
	for name, body := range map[string]string{
		"blank":          `{"content":"   "}`,
		"bad visibility": `{"content":"x","visibility":"everyone"}`,
	} {
		t.Run(name, func(t *testing.T) {
			store := seededStore()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "u1"))
			rec := do(newServer(store), req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Len(t, store.posts, 1)
		})
	}
}

func TestCreatePost_WriteErrorShowsBackendMessage(t *testing.T) {
	store := seededStore()
	store.createErr = errors.New("duplicate key value violates unique constraint")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{"content":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "u1"))
	rec := do(newServer(store), req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"message":"duplicate key value violates unique constraint"}`, rec.Body.String())
}

func TestCreatePost_FormWithCharset(t *testing.T) {
	store := seededStore()
	form := url.Values{"content": {"charset form"}, "visibility": {"friends"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm+"; charset=UTF-8")
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token(t, "u1")})
	rec := do(newServer(store), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?tab=friends", rec.Header().Get(echo.HeaderLocation))
}

func formPost(t *testing.T, form url.Values, subject string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if subject != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token(t, subject)})
	}
	return req
}

func TestCreatePost_FormErrorsKeepThePage(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		subject    string
		createErr  error
		wantStatus int
		wantNotice string
		composer   bool
	}{
		{
			name:       "write error",
			form:       url.Values{"content": {"hi"}, "visibility": {"public"}},
			subject:    "u1",
			createErr:  errors.New("new row violates row-level security policy"),
			wantStatus: http.StatusBadGateway,
			wantNotice: "new row violates row-level security policy",
			composer:   true,
		},
		{
			name:       "blank content",
			form:       url.Values{"content": {"   "}, "visibility": {"public"}},
			subject:    "u1",
			wantStatus: http.StatusBadRequest,
			composer:   true,
		},
		{
			name:       "anonymous",
			form:       url.Values{"content": {"hi"}},
			wantStatus: http.StatusUnauthorized,
			wantNotice: "Log in first.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			store.createErr = tt.createErr
			rec := do(newServer(store), formPost(t, tt.form, tt.subject))

			require.Equal(t, tt.wantStatus, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "<!DOCTYPE html>")
			assert.Contains(t, body, `<div id="feed-notice" class="feed-notice" role="alert">`)
			assert.Contains(t, body, tt.wantNotice)
			assert.Contains(t, body, "Approved idea", "feed must still be shown")
			if tt.composer {
				assert.Contains(t, body, `<form id="feed-postbox" class="feed-postbox" method="post" action="/api/v1/posts">`)
			} else {
				assert.Contains(t, body, `<div id="feed-login-overlay" class="feed-overlay">`)
			}
			assert.Len(t, store.posts, 1)
		})
	}
}

func TestCreatePost_FormWithBadSessionShowsSessionError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader("content=hi"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "forged"})
	rec := do(newServer(seededStore()), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="feed-session-error"`)
	assert.NotContains(t, rec.Body.String(), "Approved idea")
}

func liveURL(srv *httptest.Server, tab string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + router.LiveFeedPath + "?tab=" + tab
}

func friendsStore() *memoryStore {
	store := seededStore()
	store.posts = append(store.posts, models.UserPost{
		ID: "p2", AuthorID: "u1", Content: "friends only", Visibility: models.VisibilityFriends, CreatedAt: t0,
	})
	return store
}

func TestLiveFeed_RejectsForeignOrigin(t *testing.T) {
	srv := newLiveServer(t, friendsStore())

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	header.Set("Cookie", session.CookieName+"="+token(t, "u1"))
	conn, resp, err := websocket.DefaultDialer.Dial(liveURL(srv, "friends"), header)
	if conn != nil {
		conn.Close()
	}
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLiveFeed_SameOriginStreamsLoadingThenFeed(t *testing.T) {
	srv := newLiveServer(t, friendsStore())

	header := http.Header{}
	header.Set("Origin", srv.URL)
	header.Set("Cookie", session.CookieName+"="+token(t, "u1"))
	conn, _, err := websocket.DefaultDialer.Dial(liveURL(srv, "friends"), header)
	require.NoError(t, err)
	defer conn.Close()

	read := func() realtime.Message {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg realtime.Message
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}
	assert.Contains(t, read().HTML, "Loading...")
	feedFrame := read()
	assert.Equal(t, realtime.TypeFeed, feedFrame.Type)
	assert.Contains(t, feedFrame.HTML, "friends only")
}

func TestGetPage_SubscribesToLiveFeed(t *testing.T) {
	srv := newLiveServer(t, seededStore())

	resp, err := http.Get(srv.URL + "/?tab=friends")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf strings.Builder
	_, err = io.Copy(&buf, resp.Body)
	require.NoError(t, err)
	body := buf.String()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<script>")
	assert.Contains(t, body, "new WebSocket(")
	assert.True(t, strings.Contains(body, "feed/live") || strings.Contains(body, `feed\/live`))
	assert.Contains(t, body, `var tab = "friends";`)
	assert.Contains(t, body, "Loading...")
	assert.Contains(t, body, `type: "tab"`)
}

func TestGetPage_NoLiveScriptWhenDisabled(t *testing.T) {
	rec := do(newServer(seededStore()), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")
}
