package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/forum/internal/constants"
	"github.com/yukikurage/forum/internal/dto"
	apierrors "github.com/yukikurage/forum/internal/errors"
	"github.com/yukikurage/forum/internal/middleware"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/oauth"
	"github.com/yukikurage/forum/internal/services"
	"github.com/yukikurage/forum/internal/utils"
)

// Login failure reasons passed back to the login page.
const (
	loginErrorCredentials = "invalid_credentials"
	loginErrorOAuth       = "oauth_failed"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	provider    oauth.Provider
}

// NewAuthHandler creates a new AuthHandler. provider may be nil when
// external login is not configured.
func NewAuthHandler(authService *services.AuthService, provider oauth.Provider) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		provider:    provider,
	}
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	render(c, ViewLogin, gin.H{
		"google": h.provider != nil,
		"error":  c.Query("error"),
	})
}

// Login checks a username/password pair and starts a session.
// Form posts are redirected; JSON clients get the user or a 401.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `form:"uname" json:"uname"`
		Password string `form:"password" json:"password"`
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	wantsJSON := c.ContentType() == gin.MIMEJSON

	user, ok, err := h.authService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		if wantsJSON {
			apierrors.Unauthorized(c, apierrors.ErrCodeInvalidCredentials, "Invalid username or password")
			return
		}
		seeOther(c, middleware.LoginPath+"?error="+loginErrorCredentials)
		return
	}

	if err := startSession(c, user); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	if wantsJSON {
		c.JSON(http.StatusOK, dto.ToUserDTO(*user))
		return
	}
	seeOther(c, "/posts")
}

// Signup registers a new password user and logs them in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var input services.SignupInput
	if err := c.ShouldBind(&input); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := startSession(c, user); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// GoogleLogin sends the browser to the provider's consent page.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.provider == nil {
		apierrors.NotFound(c, "Google login is not configured")
		return
	}

	state, err := utils.GenerateState()
	if err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyState, state)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// GoogleCallback finishes the provider flow and logs the user in,
// creating the account on first login.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.provider == nil {
		apierrors.NotFound(c, "Google login is not configured")
		return
	}

	ctx := c.Request.Context()
	session := sessions.Default(c)
	expected, _ := session.Get(constants.SessionKeyState).(string)
	session.Delete(constants.SessionKeyState)

	failed := func(reason string, err error) {
		slog.WarnContext(ctx, "google login failed", "reason", reason, "error", err)
		if err := session.Save(); err != nil {
			slog.WarnContext(ctx, "failed to save session", "error", err)
		}
		c.Redirect(http.StatusFound, middleware.LoginPath+"?error="+loginErrorOAuth)
	}

	if providerErr := c.Query("error"); providerErr != "" {
		failed("provider denied", nil)
		return
	}
	if expected == "" || c.Query("state") != expected {
		failed("state mismatch", nil)
		return
	}

	profile, err := h.provider.Exchange(ctx, c.Query("code"))
	if err != nil {
		failed("exchange", err)
		return
	}

	user, err := h.authService.LoginWithExternalProfile(ctx, *profile)
	if err != nil {
		failed("resolve user", err)
		return
	}

	if err := startSession(c, user); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.Redirect(http.StatusFound, "/posts")
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, apierrors.ErrCodeUnauthorized, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// startSession stores only the user id; the user is reloaded per request.
func startSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.ContextKeyUserID, user.ID)
	return session.Save()
}
