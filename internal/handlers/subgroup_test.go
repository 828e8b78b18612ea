package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/forum/internal/constants"
)

func TestSubgroupHandler_ListSubgroups(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createPost(t, alice, "Ramen", "food")
	env.createPost(t, alice, "Generics", "coding")
	env.createPost(t, alice, "Sushi", "food")
	handler := NewSubgroupHandler(env.postService)

	c, w := newContext(http.MethodGet, "/subs/list", nil, nil)
	handler.ListSubgroups(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, ViewSubs, body["view"])
	assert.Equal(t, []any{"coding", "food"}, body["subs"])
}

func TestSubgroupHandler_ShowSubgroup(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice")
	theo := env.createUser(t, "theo")
	ramen := env.createPost(t, alice, "Ramen", "food")
	env.createPost(t, alice, "Generics", "coding")
	require.NoError(t, env.voteService.CastVote(context.Background(), theo, ramen.ID, 1))
	handler := NewSubgroupHandler(env.postService)

	c, w := newContext(http.MethodGet, "/subs/show/Food", nil, theo)
	c.Params = gin.Params{{Key: "subname", Value: "Food"}}
	handler.ShowSubgroup(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, ViewSub, body["view"])
	assert.Equal(t, "food", body["subname"])
	assert.Equal(t, float64(constants.SubgroupPageSize), body["pagination"].(map[string]any)["limit"])

	posts := body["posts"].([]any)
	require.Len(t, posts, 1)
	post := posts[0].(map[string]any)
	assert.Equal(t, "Ramen", post["title"])
	assert.Equal(t, float64(1), post["vote_total"])
	assert.Equal(t, float64(1), post["user_vote"])
}

func TestSubgroupHandler_ShowEmptySubgroup(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewSubgroupHandler(env.postService)

	c, w := newContext(http.MethodGet, "/subs/show/nothing", nil, nil)
	c.Params = gin.Params{{Key: "subname", Value: "nothing"}}
	handler.ShowSubgroup(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decodeBody(t, w)["posts"])
}
