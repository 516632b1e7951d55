package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/database"
	"github.com/emilythestrangee/forum/backend/internal/forum"
	"github.com/emilythestrangee/forum/backend/internal/identity"
	"github.com/emilythestrangee/forum/backend/internal/middleware"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var dbSeq atomic.Int64

type testEnv struct {
	router *gin.Engine
	svc    *forum.Service
	broker *identity.Broker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbSvc, err := database.New(config.Database{
		Driver:   "sqlite",
		Path:     fmt.Sprintf("file:handlers_%d?mode=memory&cache=shared", dbSeq.Add(1)),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbSvc.Close() })

	svc := forum.New(dbSvc.GetDB())
	tokens := identity.NewTokens("test-secret", time.Hour)
	broker := identity.NewBroker()
	t.Cleanup(broker.Close)
	h := NewHandler(dbSvc.GetDB(), svc, tokens, broker)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)
	api.GET("/threads", h.Thread.GetThreads)
	api.GET("/threads/:id", middleware.OptionalAuth(tokens), h.Thread.GetThread)
	api.GET("/threads/:id/replies", h.Reply.GetReplies)

	protected := api.Group("", middleware.AuthMiddleware(tokens))
	protected.POST("/logout", h.Auth.Logout)
	protected.GET("/me", h.Auth.GetMe)
	protected.POST("/threads", h.Thread.CreateThread)
	protected.POST("/threads/:id/vote", h.Thread.VoteThread)
	protected.POST("/threads/:id/replies", h.Reply.CreateReply)

	return &testEnv{router: r, svc: svc, broker: broker}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) register(t *testing.T, name string) models.AuthResponse {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/register", "", gin.H{
		"username": name,
		"email":    name + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (e *testEnv) postThread(t *testing.T, token, category string) models.Thread {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/threads", token, gin.H{
		"title":    "A thread",
		"category": category,
		"content":  "Body",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var th models.Thread
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &th))
	return th
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	events, unsubscribe := env.broker.Subscribe(8)
	defer unsubscribe()

	reg := env.register(t, "alice")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice", reg.User.DisplayName)
	assert.Contains(t, reg.User.PhotoURL, "ui-avatars.com")

	w := env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "alice@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[models.AuthResponse](t, w)

	w = env.do(t, http.MethodGet, "/api/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.Identity](t, w)
	assert.Equal(t, reg.User, me)

	w = env.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/logout", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var kinds []identity.EventKind
	for len(kinds) < 3 {
		select {
		case e := <-events:
			assert.Equal(t, reg.User.ID, e.UserID)
			kinds = append(kinds, e.Kind)
		case <-time.After(time.Second):
			t.Fatalf("missing events, got %v", kinds)
		}
	}
	assert.Equal(t, []identity.EventKind{identity.Registered, identity.SignedIn, identity.SignedOut}, kinds)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/register", "", gin.H{"username": "bob", "email": "nope", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestThreadLifecycle(t *testing.T) {
	env := newTestEnv(t)
	author := env.register(t, "author")
	voter := env.register(t, "voter")
	th := env.postThread(t, author.Token, "General")
	assert.Equal(t, "general", th.Category)
	assert.Equal(t, "author", th.AuthorName)

	path := fmt.Sprintf("/api/threads/%d", th.ID)

	w := env.do(t, http.MethodPost, path+"/vote", voter.Token, gin.H{"direction": "up"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	voted := decode[ThreadView](t, w)
	assert.Equal(t, 1, voted.Thread.Upvotes)
	require.NotNil(t, voted.MyVote)
	assert.Equal(t, models.DirectionUp, *voted.MyVote)

	w = env.do(t, http.MethodPost, path+"/replies", voter.Token, gin.H{"content": "first"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reply := decode[models.Reply](t, w)
	assert.Equal(t, th.ID, reply.ThreadID)

	w = env.do(t, http.MethodGet, path, voter.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[ThreadView](t, w)
	assert.Equal(t, 1, view.Thread.ReplyCount)
	require.NotNil(t, view.MyVote)
	assert.Equal(t, models.DirectionUp, *view.MyVote)

	w = env.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	anon := decode[ThreadView](t, w)
	assert.Nil(t, anon.MyVote)
	assert.Equal(t, 1, anon.Thread.ViewCount)

	w = env.do(t, http.MethodGet, path+"/replies", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	replies := decode[[]models.Reply](t, w)
	require.Len(t, replies, 1)
	assert.Equal(t, "first", replies[0].Content)

	w = env.do(t, http.MethodPost, path+"/vote", voter.Token, gin.H{"direction": "up"})
	require.Equal(t, http.StatusOK, w.Code)
	retracted := decode[ThreadView](t, w)
	assert.Equal(t, 0, retracted.Thread.Upvotes)
	assert.Nil(t, retracted.MyVote)
}

func TestListThreads(t *testing.T) {
	env := newTestEnv(t)
	author := env.register(t, "author")
	env.postThread(t, author.Token, "go")
	env.postThread(t, author.Token, "rust")

	w := env.do(t, http.MethodGet, "/api/threads?category=go", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	threads := decode[[]models.Thread](t, w)
	require.Len(t, threads, 1)
	assert.Equal(t, "go", threads[0].Category)

	w = env.do(t, http.MethodGet, "/api/threads?sort=popular", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Thread](t, w), 2)

	w = env.do(t, http.MethodGet, "/api/threads?sort=hot", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorResponses(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "user")
	th := env.postThread(t, user.Token, "general")
	path := fmt.Sprintf("/api/threads/%d", th.ID)

	w := env.do(t, http.MethodPost, path+"/vote", "", gin.H{"direction": "up"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, path+"/vote", user.Token, gin.H{"direction": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/threads/999/vote", user.Token, gin.H{"direction": "up"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/threads/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/threads/999/replies", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, path+"/replies", user.Token, gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]string](t, w)
	assert.NotEmpty(t, body["error"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(fmt.Errorf("%w: title", forum.ErrValidation)))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(forum.ErrUnauthorized))
	assert.Equal(t, http.StatusNotFound, StatusFor(fmt.Errorf("%w: thread 1", forum.ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(fmt.Errorf("%w: boom", forum.ErrTransactionFailed)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("other")))
}
