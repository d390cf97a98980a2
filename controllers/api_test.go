package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifecheck/lifecheck/controllers"
	"github.com/lifecheck/lifecheck/middleware"
	"github.com/lifecheck/lifecheck/services"
	"github.com/lifecheck/lifecheck/stores"
	"github.com/lifecheck/lifecheck/utils"
)

// newTestAPI wires the handlers against the in-memory store, with the
// list cache disabled so no redis instance is needed.
func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := stores.NewMemoryStore()
	tokens := utils.NewTokenService("api-test-secret", time.Hour)
	directory := services.NewUserDirectory(mem)
	engine := services.NewCheckInEngine(mem, mem, time.UTC)

	authCtrl := controllers.NewAuthController(mem, directory, tokens)
	checkinCtrl := controllers.NewCheckInController(engine, 0)

	r := gin.New()
	r.Use(middleware.Authenticate(tokens, directory))

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.GET("/me", middleware.RequireAuth(), authCtrl.Me)
	}

	checkins := r.Group("/api/checkins", middleware.RequireAuth())
	{
		checkins.POST("", checkinCtrl.Create)
		checkins.GET("/today", checkinCtrl.Today)
		checkins.GET("/my", checkinCtrl.My)
		checkins.GET("/:id", checkinCtrl.Get)
		checkins.DELETE("/:id", checkinCtrl.Delete)
	}
	return r
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func registerAndLogin(t *testing.T, r *gin.Engine, username, email, password string) string {
	t.Helper()

	w, _ := doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestRegisterLoginCheckInFlow(t *testing.T) {
	r := newTestAPI(t)
	token := registerAndLogin(t, r, "alice", "alice@example.com", "hunter22")

	// nothing recorded yet
	w, env := doJSON(r, http.MethodGet, "/api/checkins/today", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"checked_in":false`)

	// first check-in of the day starts a streak of 1
	w, env = doJSON(r, http.MethodPost, "/api/checkins", token, gin.H{
		"note": "morning run", "location": "park",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		StreakDays int `json:"streak_days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 1, created.StreakDays)

	w, env = doJSON(r, http.MethodGet, "/api/checkins/today", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"checked_in":true`)

	// same day again must be refused
	w, env = doJSON(r, http.MethodPost, "/api/checkins", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40030, env.Code)

	// the refused attempt left no second record behind
	w, env = doJSON(r, http.MethodGet, "/api/checkins/my", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestRegisterValidation(t *testing.T) {
	r := newTestAPI(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"empty username", gin.H{"username": "  ", "email": "a@x.com", "password": "secret1"}},
		{"bad email", gin.H{"username": "bob", "email": "not-an-email", "password": "secret1"}},
		{"short password", gin.H{"username": "bob", "email": "b@x.com", "password": "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(r, http.MethodPost, "/api/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterConflicts(t *testing.T) {
	r := newTestAPI(t)
	registerAndLogin(t, r, "carol", "carol@example.com", "secret1")

	w, env := doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "carol", "email": "other@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40901, env.Code)

	w, env = doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "carol2", "email": "carol@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40902, env.Code)
}

func TestLoginFailures(t *testing.T) {
	r := newTestAPI(t)
	registerAndLogin(t, r, "dave", "dave@example.com", "secret1")

	// wrong password and unknown user answer identically
	w, env := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "dave", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40106, env.Code)

	w, env = doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "nobody", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40106, env.Code)
}

func TestMeReturnsProfileAndStreak(t *testing.T) {
	r := newTestAPI(t)
	token := registerAndLogin(t, r, "erin", "erin@example.com", "secret1")

	w, _ := doJSON(r, http.MethodPost, "/api/checkins", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(r, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"username":"erin"`)
	assert.Contains(t, string(env.Data), `"streak_days":1`)
}

func TestCheckInEndpointsRequireAuth(t *testing.T) {
	r := newTestAPI(t)

	for _, req := range []struct{ method, path string }{
		{http.MethodPost, "/api/checkins"},
		{http.MethodGet, "/api/checkins/today"},
		{http.MethodGet, "/api/checkins/my"},
		{http.MethodGet, "/api/checkins/1"},
		{http.MethodDelete, "/api/checkins/1"},
	} {
		w, env := doJSON(r, req.method, req.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", req.method, req.path)
		assert.Equal(t, 40101, env.Code)
	}
}

func TestCheckInDetailOwnership(t *testing.T) {
	r := newTestAPI(t)
	aliceToken := registerAndLogin(t, r, "alice", "alice@example.com", "secret1")
	bobToken := registerAndLogin(t, r, "bob", "bob@example.com", "secret1")

	w, env := doJSON(r, http.MethodPost, "/api/checkins", aliceToken, gin.H{"note": "gym"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Checkin struct {
			ID uint `json:"id"`
		} `json:"checkin"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotZero(t, created.Checkin.ID)

	path := "/api/checkins/" + strconv.FormatUint(uint64(created.Checkin.ID), 10)

	w, _ = doJSON(r, http.MethodGet, path, aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// another user's record reads as absent, not forbidden
	w, env = doJSON(r, http.MethodGet, path, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40420, env.Code)

	w, _ = doJSON(r, http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(r, http.MethodDelete, path, aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCheckInRejectsUnknownStatus(t *testing.T) {
	r := newTestAPI(t)
	token := registerAndLogin(t, r, "frank", "frank@example.com", "secret1")

	w, _ := doJSON(r, http.MethodPost, "/api/checkins", token, gin.H{"status": "BOGUS"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckInSanitizesNote(t *testing.T) {
	r := newTestAPI(t)
	token := registerAndLogin(t, r, "grace", "grace@example.com", "secret1")

	w, env := doJSON(r, http.MethodPost, "/api/checkins", token, gin.H{
		"note": `<script>alert(1)</script>walk`,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, string(env.Data), "<script>")
	assert.Contains(t, string(env.Data), "walk")
}
