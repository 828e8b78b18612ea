package constants

// Session and context keys
const (
	SessionCookieName = "forum_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "user"
	ContextKeyPost    = "post"
	SessionKeyState   = "oauth_state"
)

// Listing limits
const (
	MinPageSize      = 1
	DefaultPageSize  = 20
	SubgroupPageSize = 50
	MaxPageSize      = 100
	DefaultSubgroup  = "general"
)

// Content bounds, counted in characters after trimming
const (
	MinTitleLength       = 3
	MaxTitleLength       = 200
	MinDescriptionLength = 10
	MaxDescriptionLength = 5000
	MinSubgroupLength    = 2
	MaxSubgroupLength    = 50
	MinCommentLength     = 1
	MaxCommentLength     = 1000
	MinUsernameLength    = 3
	MaxUsernameLength    = 50
	MinPasswordLength    = 8
	MaxPasswordLength    = 72
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72
