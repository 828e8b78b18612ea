package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/forum/internal/constants"
	"github.com/yukikurage/forum/internal/database"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/repository"
	"github.com/yukikurage/forum/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type handlerTestEnv struct {
	db             *gorm.DB
	authService    *services.AuthService
	postService    *services.PostService
	commentService *services.CommentService
	voteService    *services.VoteService
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, database.Migrate(db))

	voteRepo := repository.NewVoteRepository(db)
	return handlerTestEnv{
		db:             db,
		authService:    services.NewAuthService(repository.NewUserRepository(db), services.AuthOptions{LegacyPlaintextPasswords: true}),
		postService:    services.NewPostService(repository.NewPostRepository(db), voteRepo, nil),
		commentService: services.NewCommentService(repository.NewCommentRepository(db), nil),
		voteService:    services.NewVoteService(voteRepo, nil),
	}
}

func (env handlerTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := env.authService.Signup(context.Background(), services.SignupInput{
		Username: username,
		Password: "supersecret",
	})
	require.NoError(t, err)
	return user
}

func (env handlerTestEnv) createPost(t *testing.T, creator *models.User, title, subgroup string) *models.Post {
	t.Helper()
	post, err := env.postService.CreatePost(context.Background(), creator, services.PostInput{
		Title:       title,
		Description: "A description that is long enough",
		Subgroup:    subgroup,
	})
	require.NoError(t, err)
	return post
}

// newContext builds a test context as the auth middleware would leave it.
// user may be nil for anonymous requests.
func newContext(method, target string, form url.Values, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", gin.MIMEPOSTForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
	}
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// fieldErrors extracts the details list of a 400 response.
func fieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	body := decodeBody(t, w)
	require.Equal(t, "INVALID_INPUT", body["code"])

	details, ok := body["details"].([]any)
	require.True(t, ok, "expected details list, got %v", body["details"])

	out := make(map[string]string, len(details))
	for _, d := range details {
		fe := d.(map[string]any)
		out[fe["field"].(string)] = fe["message"].(string)
	}
	return out
}
