package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/forum/internal/constants"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/services"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/auth/login"

// UserLoader resolves a session's user id to a user record.
type UserLoader interface {
	GetUser(ctx context.Context, id uint64) (*models.User, error)
}

// LoadUser re-reads the session user on every request. A session naming a
// user that no longer exists is cleared and the request continues anonymously.
func LoadUser(loader UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := sessionUserID(session.Get(constants.ContextKeyUserID))
		if !ok {
			c.Next()
			return
		}

		user, err := loader.GetUser(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Set(constants.ContextKeyUserID, user.ID)
			c.Set(constants.ContextKeyUser, user)
		case errors.Is(err, services.ErrUserNotFound):
			session.Clear()
			if err := session.Save(); err != nil {
				slog.WarnContext(c.Request.Context(), "failed to clear stale session", "error", err)
			}
		default:
			slog.ErrorContext(c.Request.Context(), "failed to load session user", "user_id", userID, "error", err)
		}

		c.Next()
	}
}

// RequireAuth redirects anonymous requests to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user loaded for this request, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return sessionUserID(userID)
}

func sessionUserID(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
