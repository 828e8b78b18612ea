package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/forum/internal/constants"
	"github.com/yukikurage/forum/internal/dto"
	"github.com/yukikurage/forum/internal/middleware"
	"github.com/yukikurage/forum/internal/services"
	"github.com/yukikurage/forum/internal/utils"
)

// SubgroupHandler serves the /subs pages.
type SubgroupHandler struct {
	postService *services.PostService
}

func NewSubgroupHandler(postService *services.PostService) *SubgroupHandler {
	return &SubgroupHandler{
		postService: postService,
	}
}

// ListSubgroups renders every subgroup that has posts
func (h *SubgroupHandler) ListSubgroups(c *gin.Context) {
	subs, err := h.postService.ListSubgroups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	render(c, ViewSubs, gin.H{"subs": subs})
}

// ShowSubgroup renders the latest posts of one subgroup. An unknown
// subgroup renders an empty list.
func (h *SubgroupHandler) ShowSubgroup(c *gin.Context) {
	subname := strings.ToLower(strings.TrimSpace(c.Param("subname")))
	params := utils.GetPaginationParams(c, constants.SubgroupPageSize)
	viewer, _ := middleware.CurrentUser(c)

	summaries, err := h.postService.ListPosts(c.Request.Context(), services.ListPostsInput{
		Subgroup: subname,
		Limit:    params.Limit,
		Offset:   params.Offset,
		Viewer:   viewer,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	render(c, ViewSub, gin.H{
		"subname":    subname,
		"posts":      dto.ToPostListItems(summaries),
		"pagination": params.Response(len(summaries)),
	})
}
