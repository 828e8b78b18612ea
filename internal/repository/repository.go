package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/forum/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrConstraintViolation is returned when a write breaks a unique or foreign key constraint.
	ErrConstraintViolation = errors.New("repository: constraint violation")
)

// translate maps GORM errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	default:
		return err
	}
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByExternalID finds a user by external identity provider id
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)

	// FindOrCreateByExternalID returns the user bound to user.ExternalID, creating it if absent
	FindOrCreateByExternalID(ctx context.Context, user *models.User) (*models.User, bool, error)
}

// PostFilter holds filtering options for listing posts
type PostFilter struct {
	Subgroup string
	Limit    int
	Offset   int
}

// PostChanges holds the editable fields of a post
type PostChanges struct {
	Title       string
	Link        string
	Description string
	Subgroup    string
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	// Create inserts a post; the creator must exist
	Create(ctx context.Context, post *models.Post) error

	// FindByID finds a post with creator, votes and comments loaded
	FindByID(ctx context.Context, id uint64) (*models.Post, error)

	// FindHeader finds a post without relations
	FindHeader(ctx context.Context, id uint64) (*models.Post, error)

	// List retrieves posts newest first
	List(ctx context.Context, filter PostFilter) ([]models.Post, error)

	// Update overwrites the editable fields of a post
	Update(ctx context.Context, id uint64, changes PostChanges) (*models.Post, error)

	// Delete removes a post with its comments and votes
	Delete(ctx context.Context, id uint64) error

	// ListSubgroups lists the distinct subgroups that have posts
	ListSubgroups(ctx context.Context) ([]string, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create inserts a comment; post and creator must exist
	Create(ctx context.Context, comment *models.Comment) error
}

// VoteRepository defines the interface for vote data access
type VoteRepository interface {
	// Upsert sets a user's vote on a post; value 0 removes it
	Upsert(ctx context.Context, userID, postID uint64, value int) error

	// Find finds a user's vote on a post
	Find(ctx context.Context, userID, postID uint64) (*models.Vote, error)

	// Total sums the vote values of a post
	Total(ctx context.Context, postID uint64) (int, error)

	// Totals sums vote values for several posts at once
	Totals(ctx context.Context, postIDs []uint64) (map[uint64]int, error)

	// UserValues returns a user's vote value per post, omitting posts without a vote
	UserValues(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]int, error)
}

// Counts holds row counts per table
type Counts struct {
	Users    int64 `json:"users" yaml:"users"`
	Posts    int64 `json:"posts" yaml:"posts"`
	Comments int64 `json:"comments" yaml:"comments"`
	Votes    int64 `json:"votes" yaml:"votes"`
}

// StatsRepository reports store-wide counts
type StatsRepository interface {
	Counts(ctx context.Context) (Counts, error)
}
