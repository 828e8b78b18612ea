package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/forum/internal/constants"
)

// PaginationParams is a validated page request. Page is 1-based.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse is the page metadata rendered next to a listing
type PaginationResponse struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// GetPaginationParams reads ?page= and ?limit=. Unparsable or out-of-range
// values fall back to the first page and defaultLimit.
func GetPaginationParams(c *gin.Context, defaultLimit int) PaginationParams {
	page := queryInt(c, "page", constants.MinPageSize)
	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}

	limit := queryInt(c, "limit", defaultLimit)
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = defaultLimit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

// Response describes the page that was served; a full page may have a
// successor.
func (p PaginationParams) Response(returned int) PaginationResponse {
	return PaginationResponse{
		Page:    p.Page,
		Limit:   p.Limit,
		HasMore: returned >= p.Limit,
	}
}
