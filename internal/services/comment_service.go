package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/forum/internal/constants"
	"github.com/yukikurage/forum/internal/events"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/repository"
	"github.com/yukikurage/forum/internal/validation"
)

// CommentService handles comment business logic
type CommentService struct {
	commentRepo repository.CommentRepository
	publisher   events.Publisher
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository, publisher events.Publisher) *CommentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CommentService{
		commentRepo: commentRepo,
		publisher:   publisher,
	}
}

// CommentInput carries the body of a new comment
type CommentInput struct {
	Description string `form:"description" json:"description" validate:"required,min=1,max=1000"`
}

var commentMessages = validation.Messages{
	"description.required": "Comment cannot be empty",
	"description":          fmt.Sprintf("Comment must be between %d and %d characters", constants.MinCommentLength, constants.MaxCommentLength),
}

// AddComment stores a comment by actor on the given post
func (s *CommentService) AddComment(ctx context.Context, actor *models.User, postID uint64, input CommentInput) (*models.Comment, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	input.Description = strings.TrimSpace(input.Description)
	if err := validation.Struct(input, commentMessages); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:      postID,
		CreatorID:   actor.ID,
		Description: input.Description,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	publish(ctx, s.publisher, events.Event{Type: events.CommentCreated, ActorID: actor.ID, PostID: postID, CommentID: comment.ID})
	return comment, nil
}
