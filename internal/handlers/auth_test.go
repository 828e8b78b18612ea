package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/forum/internal/constants"
	"github.com/yukikurage/forum/internal/dto"
	"github.com/yukikurage/forum/internal/middleware"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/oauth"
)

type fakeProvider struct {
	profile *oauth.Profile
}

func (p fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (p fakeProvider) Exchange(_ context.Context, code string) (*oauth.Profile, error) {
	if code != "good-code" {
		return nil, errors.New("bad code")
	}
	return p.profile, nil
}

func newAuthRouter(env handlerTestEnv, provider oauth.Provider) *gin.Engine {
	handler := NewAuthHandler(env.authService, provider)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store), middleware.LoadUser(env.authService))
	r.GET("/auth/login", handler.LoginForm)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/signup", handler.Signup)
	r.GET("/auth/google", handler.GoogleLogin)
	r.GET("/auth/google/callback", handler.GoogleCallback)
	r.GET("/auth/logout", handler.Logout)
	r.GET("/auth/me", handler.GetCurrentUser)
	return r
}

func postForm(r http.Handler, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", gin.MIMEPOSTForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_LoginForm(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := get(newAuthRouter(env, nil), "/auth/login?error=invalid_credentials")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, ViewLogin, body["view"])
	assert.Equal(t, false, body["google"])
	assert.Equal(t, "invalid_credentials", body["error"])
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupHandlerTestEnv(t)
	user := env.createUser(t, "existing")
	r := newAuthRouter(env, nil)

	w := postForm(r, "/auth/login", url.Values{"uname": {"existing"}, "password": {"supersecret"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/posts", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")

	w = get(r, "/auth/me", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.ID, response.ID)
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.createUser(t, "existing")
	r := newAuthRouter(env, nil)

	w := postForm(r, "/auth/login", url.Values{"uname": {"existing"}, "password": {"nope"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/auth/login?error=invalid_credentials", w.Header().Get("Location"))

	w = get(r, "/auth/me", w.Result().Cookies()...)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_LoginJSON(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.createUser(t, "existing")
	r := newAuthRouter(env, nil)

	login := func(password string) *httptest.ResponseRecorder {
		body, err := json.Marshal(map[string]string{"uname": "existing", "password": password})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := login("supersecret")
	require.Equal(t, http.StatusOK, w.Code)
	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing", response.Username)

	w = login("wrong")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_CREDENTIALS", decodeBody(t, w)["code"])
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := newAuthRouter(env, nil)

	w := postForm(r, "/auth/signup", url.Values{"uname": {"newuser"}, "password": {"supersecret"}, "name": {"New User"}})

	require.Equal(t, http.StatusCreated, w.Code)
	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "newuser", response.Username)
	require.Equal(t, "New User", response.DisplayName)

	// signing up logs the user in
	w = get(r, "/auth/me", w.Result().Cookies()...)
	require.Equal(t, http.StatusOK, w.Code)

	w = postForm(r, "/auth/signup", url.Values{"uname": {"newuser"}, "password": {"anothersecret"}})
	require.Equal(t, http.StatusConflict, w.Code)

	w = postForm(r, "/auth/signup", url.Values{"uname": {"x"}, "password": {"short"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := fieldErrors(t, w)
	assert.Contains(t, errs, "uname")
	assert.Contains(t, errs, "password")
}

func TestAuthHandler_SignupMultibytePassword(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := newAuthRouter(env, nil)

	w := postForm(r, "/auth/signup", url.Values{"uname": {"newuser"}, "password": {strings.Repeat("é", 40)}})

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, map[string]string{"password": "Password must be at most 72 bytes"}, fieldErrors(t, w))
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.createUser(t, "existing")
	r := newAuthRouter(env, nil)

	w := postForm(r, "/auth/login", url.Values{"uname": {"existing"}, "password": {"supersecret"}})
	loggedIn := w.Result().Cookies()

	w = get(r, "/auth/logout", loggedIn...)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))

	w = get(r, "/auth/me", w.Result().Cookies()...)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_StaleSessionIsAnonymous(t *testing.T) {
	env := setupHandlerTestEnv(t)
	user := env.createUser(t, "ghost")
	r := newAuthRouter(env, nil)

	w := postForm(r, "/auth/login", url.Values{"uname": {"ghost"}, "password": {"supersecret"}})
	cookies := w.Result().Cookies()
	require.NoError(t, env.db.Delete(&models.User{}, user.ID).Error)

	w = get(r, "/auth/me", cookies...)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_GoogleNotConfigured(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := newAuthRouter(env, nil)

	require.Equal(t, http.StatusNotFound, get(r, "/auth/google").Code)
	require.Equal(t, http.StatusNotFound, get(r, "/auth/google/callback?code=x&state=y").Code)
}

func TestAuthHandler_GoogleFlow(t *testing.T) {
	env := setupHandlerTestEnv(t)
	provider := fakeProvider{profile: &oauth.Profile{ID: "10769150350006150715113082367", Email: "ada@example.com", Name: "Ada"}}
	r := newAuthRouter(env, provider)

	w := get(r, "/auth/google")
	require.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	stateCookies := w.Result().Cookies()

	login := func() []*http.Cookie {
		w := get(r, "/auth/google/callback?code=good-code&state="+url.QueryEscape(state), stateCookies...)
		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/posts", w.Header().Get("Location"))
		return w.Result().Cookies()
	}

	cookies := login()
	w = get(r, "/auth/me", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	var first dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, "Ada", first.DisplayName)

	// a second login with the same identity reuses the account
	cookies = login()
	w = get(r, "/auth/me", cookies...)
	var second dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthHandler_GoogleCallbackRejected(t *testing.T) {
	env := setupHandlerTestEnv(t)
	provider := fakeProvider{profile: &oauth.Profile{ID: "1"}}
	r := newAuthRouter(env, provider)

	w := get(r, "/auth/google")
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	stateCookies := w.Result().Cookies()

	escaped := url.QueryEscape(state)
	cases := []struct {
		target  string
		cookies []*http.Cookie
	}{
		{"/auth/google/callback?code=good-code&state=forged", stateCookies},
		{"/auth/google/callback?code=good-code&state=" + escaped, nil},
		{"/auth/google/callback?code=bad-code&state=" + escaped, stateCookies},
		{"/auth/google/callback?error=access_denied&state=" + escaped, stateCookies},
	}
	for _, tc := range cases {
		w := get(r, tc.target, tc.cookies...)
		assert.Equal(t, http.StatusFound, w.Code, tc.target)
		assert.Equal(t, "/auth/login?error=oauth_failed", w.Header().Get("Location"), tc.target)
	}

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
