package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/forum/internal/config"
	"github.com/yukikurage/forum/internal/constants"
	"github.com/yukikurage/forum/internal/events"
	"github.com/yukikurage/forum/internal/handlers"
	"github.com/yukikurage/forum/internal/middleware"
	"github.com/yukikurage/forum/internal/oauth"
	"github.com/yukikurage/forum/internal/repository"
	"github.com/yukikurage/forum/internal/services"
	"gorm.io/gorm"
)

// Options holds the collaborators that differ between deployments and tests.
// Nil fields fall back to what cfg describes.
type Options struct {
	Store     sessions.Store
	Publisher events.Publisher
	Provider  oauth.Provider
	Logger    *slog.Logger
}

// NewSessionStore returns a redis-backed store when REDIS_HOST is set and a
// signed cookie store otherwise.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			redisAddr,
			"", // username (empty for default user)
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(cfg *config.Config, db *gorm.DB, opts Options) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	if opts.Provider == nil && cfg.GoogleEnabled() {
		opts.Provider = oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	}
	if opts.Store == nil {
		store, err := NewSessionStore(cfg)
		if err != nil {
			return nil, err
		}
		opts.Store = store
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, services.AuthOptions{
		LegacyPlaintextPasswords: cfg.LegacyPlaintextPasswords,
	})
	postService := services.NewPostService(postRepo, voteRepo, opts.Publisher)
	commentService := services.NewCommentService(commentRepo, opts.Publisher)
	voteService := services.NewVoteService(voteRepo, opts.Publisher)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, opts.Provider)
	postHandler := handlers.NewPostHandler(postService, commentService, voteService)
	subgroupHandler := handlers.NewSubgroupHandler(postService)

	// Separate budgets so signups cannot lock a client out of login.
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst)
	signupLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(opts.Logger),
		sessions.Sessions(constants.SessionCookieName, opts.Store),
		middleware.LoadUser(authService),
	)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Forum is running",
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/posts")
	})

	// Auth routes (public)
	auth := r.Group("/auth")
	{
		auth.GET("/login", authHandler.LoginForm)
		auth.POST("/login", loginLimiter.Middleware(), authHandler.Login)
		auth.POST("/signup", signupLimiter.Middleware(), authHandler.Signup)
		auth.GET("/google", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
		auth.GET("/logout", authHandler.Logout)
		auth.GET("/me", authHandler.GetCurrentUser)
	}

	// Post routes
	posts := r.Group("/posts")
	{
		owner := middleware.RequirePostOwner(postService)

		posts.GET("", postHandler.ListPosts)
		posts.GET("/show/:postid", middleware.RequirePostID(), postHandler.ShowPost)
		posts.GET("/create", middleware.RequireAuth(), postHandler.CreateForm)
		posts.POST("/create", middleware.RequireAuth(), postHandler.CreatePost)
		posts.GET("/edit/:postid", middleware.RequireAuth(), owner, postHandler.EditForm)
		posts.POST("/edit/:postid", middleware.RequireAuth(), owner, postHandler.EditPost)
		posts.GET("/deleteconfirm/:postid", middleware.RequireAuth(), owner, postHandler.DeleteConfirm)
		posts.POST("/delete/:postid", middleware.RequireAuth(), owner, postHandler.DeletePost)
		posts.POST("/comment-create/:postid", middleware.RequireAuth(), middleware.RequirePostID(), postHandler.CreateComment)
		posts.POST("/vote/:postid", middleware.RequireAuth(), middleware.RequirePostID(), postHandler.Vote)
	}

	// Subgroup routes
	subs := r.Group("/subs")
	{
		subs.GET("/list", subgroupHandler.ListSubgroups)
		subs.GET("/show/:subname", subgroupHandler.ShowSubgroup)
	}

	return r, nil
}
