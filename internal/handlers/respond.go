package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/forum/internal/dto"
	apierrors "github.com/yukikurage/forum/internal/errors"
	"github.com/yukikurage/forum/internal/middleware"
	"github.com/yukikurage/forum/internal/services"
	"github.com/yukikurage/forum/internal/validation"
)

// View names returned in the "view" field of rendered pages.
const (
	ViewPosts         = "posts"
	ViewCreatePost    = "createPosts"
	ViewPost          = "individualPost"
	ViewEditPost      = "editPost"
	ViewDeleteConfirm = "deleteConfirm"
	ViewSubs          = "subs"
	ViewSub           = "sub"
	ViewLogin         = "login"
)

// render writes a page as JSON: the view name plus its data.
func render(c *gin.Context, view string, data gin.H) {
	body := gin.H{"view": view}
	for k, v := range data {
		body[k] = v
	}
	if user, ok := middleware.CurrentUser(c); ok {
		body["user"] = dto.ToUserDTO(*user)
	}
	c.JSON(http.StatusOK, body)
}

// seeOther redirects a form submission so the browser follows with a GET.
func seeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		apierrors.BadRequestWithDetails(c, "Validation failed", verrs)
	case errors.Is(err, services.ErrUnauthenticated):
		c.Redirect(http.StatusFound, middleware.LoginPath)
	case errors.Is(err, services.ErrNotPostCreator):
		apierrors.Forbidden(c, "Only the post creator can do that")
	case errors.Is(err, services.ErrPostNotFound):
		apierrors.NotFound(c, "Post not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString(middleware.ContextKeyRequestID),
			"error", err,
		)
		apierrors.InternalError(c, "")
	}
}
