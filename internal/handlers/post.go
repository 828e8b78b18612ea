package handlers

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/forum/internal/constants"
	"github.com/yukikurage/forum/internal/dto"
	apierrors "github.com/yukikurage/forum/internal/errors"
	"github.com/yukikurage/forum/internal/middleware"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/services"
	"github.com/yukikurage/forum/internal/utils"
)

// PostHandler serves the /posts pages.
type PostHandler struct {
	postService    *services.PostService
	commentService *services.CommentService
	voteService    *services.VoteService
}

func NewPostHandler(postService *services.PostService, commentService *services.CommentService, voteService *services.VoteService) *PostHandler {
	return &PostHandler{
		postService:    postService,
		commentService: commentService,
		voteService:    voteService,
	}
}

func postPath(id uint64) string {
	return fmt.Sprintf("/posts/show/%d", id)
}

// ListPosts renders the latest posts with their vote standing
func (h *PostHandler) ListPosts(c *gin.Context) {
	params := utils.GetPaginationParams(c, constants.DefaultPageSize)
	viewer, _ := middleware.CurrentUser(c)

	summaries, err := h.postService.ListPosts(c.Request.Context(), services.ListPostsInput{
		Limit:  params.Limit,
		Offset: params.Offset,
		Viewer: viewer,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	render(c, ViewPosts, gin.H{
		"posts":      dto.ToPostListItems(summaries),
		"pagination": params.Response(len(summaries)),
	})
}

// CreateForm renders an empty post form
func (h *PostHandler) CreateForm(c *gin.Context) {
	render(c, ViewCreatePost, gin.H{
		"form": services.PostInput{Subgroup: constants.DefaultSubgroup},
	})
}

// CreatePost stores a post and redirects to it
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input services.PostInput
	if err := c.ShouldBind(&input); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, _ := middleware.CurrentUser(c)
	post, err := h.postService.CreatePost(c.Request.Context(), user, input)
	if err != nil {
		respondError(c, err)
		return
	}

	seeOther(c, postPath(post.ID))
}

// ShowPost renders one post with its comments and votes
func (h *PostHandler) ShowPost(c *gin.Context) {
	postID, err := middleware.ParsePostID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	viewer, _ := middleware.CurrentUser(c)
	detail, err := h.postService.GetPost(c.Request.Context(), postID, viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	render(c, ViewPost, gin.H{
		"post": dto.ToPostDetailDTO(*detail),
	})
}

// EditForm renders the edit form filled with the current values.
// The post is loaded by RequirePostOwner.
func (h *PostHandler) EditForm(c *gin.Context) {
	post, ok := middleware.OwnedPost(c)
	if !ok {
		apierrors.InternalError(c, "Post not found in context")
		return
	}

	render(c, ViewEditPost, gin.H{
		"postid": post.ID,
		"form":   formValues(post),
	})
}

// EditPost applies an edit and redirects to the post
func (h *PostHandler) EditPost(c *gin.Context) {
	post, ok := middleware.OwnedPost(c)
	if !ok {
		apierrors.InternalError(c, "Post not found in context")
		return
	}

	var input services.PostInput
	if err := c.ShouldBind(&input); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, _ := middleware.CurrentUser(c)
	if _, err := h.postService.EditPost(c.Request.Context(), user, post.ID, input); err != nil {
		respondError(c, err)
		return
	}

	seeOther(c, postPath(post.ID))
}

// DeleteConfirm asks the creator to confirm deletion
func (h *PostHandler) DeleteConfirm(c *gin.Context) {
	post, ok := middleware.OwnedPost(c)
	if !ok {
		apierrors.InternalError(c, "Post not found in context")
		return
	}

	render(c, ViewDeleteConfirm, gin.H{
		"postid": post.ID,
		"form":   formValues(post),
	})
}

// DeletePost removes the post with its comments and votes
func (h *PostHandler) DeletePost(c *gin.Context) {
	post, ok := middleware.OwnedPost(c)
	if !ok {
		apierrors.InternalError(c, "Post not found in context")
		return
	}

	user, _ := middleware.CurrentUser(c)
	if err := h.postService.DeletePost(c.Request.Context(), user, post.ID); err != nil {
		respondError(c, err)
		return
	}

	seeOther(c, "/posts")
}

// CreateComment adds a comment and redirects to the post
func (h *PostHandler) CreateComment(c *gin.Context) {
	postID, err := middleware.ParsePostID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input services.CommentInput
	if err := c.ShouldBind(&input); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, _ := middleware.CurrentUser(c)
	if _, err := h.commentService.AddComment(c.Request.Context(), user, postID, input); err != nil {
		respondError(c, err)
		return
	}

	seeOther(c, postPath(postID))
}

// Vote sets, flips or clears the caller's vote, then sends them back
// where they came from
func (h *PostHandler) Vote(c *gin.Context) {
	postID, err := middleware.ParsePostID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	value, err := services.ParseVoteValue(c.PostForm("setvoteto"))
	if err != nil {
		respondError(c, err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	if err := h.voteService.CastVote(c.Request.Context(), user, postID, value); err != nil {
		respondError(c, err)
		return
	}

	seeOther(c, backTo(c, postPath(postID)))
}

func formValues(post *models.Post) services.PostInput {
	return services.PostInput{
		Title:       post.Title,
		Link:        post.Link,
		Description: post.Description,
		Subgroup:    post.Subgroup,
	}
}

// backTo returns the referring page when it is on this site, else fallback.
func backTo(c *gin.Context, fallback string) string {
	referer := c.Request.Referer()
	if referer == "" {
		return fallback
	}

	u, err := url.Parse(referer)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) {
		return fallback
	}
	return u.RequestURI()
}
