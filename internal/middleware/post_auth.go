package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/forum/internal/constants"
	apierrors "github.com/yukikurage/forum/internal/errors"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/services"
	"github.com/yukikurage/forum/internal/validation"
)

// ParsePostID reads the :postid path parameter, which must be an integer >= 1.
func ParsePostID(c *gin.Context) (uint64, error) {
	postID, err := strconv.ParseUint(c.Param("postid"), 10, 64)
	if err != nil || postID == 0 {
		return 0, validation.Field("postid", "Invalid post ID")
	}
	return postID, nil
}

// RequirePostID rejects requests whose :postid is not a positive integer.
func RequirePostID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := ParsePostID(c); err != nil {
			apierrors.BadRequestWithDetails(c, "Validation failed", err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePostOwner loads the :postid post and lets only its creator through.
// Must run after RequireAuth.
func RequirePostOwner(postService *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := ParsePostID(c)
		if err != nil {
			apierrors.BadRequestWithDetails(c, "Validation failed", err)
			c.Abort()
			return
		}

		user, _ := CurrentUser(c)
		post, err := postService.AuthorizeOwner(c.Request.Context(), user, postID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnauthenticated):
				c.Redirect(http.StatusFound, LoginPath)
			case errors.Is(err, services.ErrPostNotFound):
				apierrors.NotFound(c, "Post not found")
			case errors.Is(err, services.ErrNotPostCreator):
				apierrors.Forbidden(c, "Only the post creator can do that")
			default:
				slog.ErrorContext(c.Request.Context(), "failed to authorize post owner", "post_id", postID, "error", err)
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyPost, post)
		c.Next()
	}
}

// OwnedPost returns the post loaded by RequirePostOwner.
func OwnedPost(c *gin.Context) (*models.Post, bool) {
	value, exists := c.Get(constants.ContextKeyPost)
	if !exists {
		return nil, false
	}
	post, ok := value.(*models.Post)
	return post, ok
}
