package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yukikurage/forum/internal/events"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/repository"
	"github.com/yukikurage/forum/internal/validation"
)

// VoteService handles vote business logic
type VoteService struct {
	voteRepo  repository.VoteRepository
	publisher events.Publisher
}

// NewVoteService creates a new VoteService
func NewVoteService(voteRepo repository.VoteRepository, publisher events.Publisher) *VoteService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &VoteService{
		voteRepo:  voteRepo,
		publisher: publisher,
	}
}

// ParseVoteValue reads the submitted setvoteto value
func ParseVoteValue(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, validation.Field("setvoteto", "Vote value must be an integer")
	}
	return value, nil
}

// CastVote sets actor's vote on a post to +1 or -1, or removes it with 0
func (s *VoteService) CastVote(ctx context.Context, actor *models.User, postID uint64, value int) error {
	if actor == nil {
		return ErrUnauthenticated
	}

	switch value {
	case models.VoteUp, models.VoteClear, models.VoteDown:
	default:
		return validation.Field("setvoteto", "Vote must be -1 (downvote), 0 (remove vote), or 1 (upvote)")
	}

	if err := s.voteRepo.Upsert(ctx, actor.ID, postID, value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to record vote: %w", err)
	}

	publish(ctx, s.publisher, events.Event{Type: events.VoteCast, ActorID: actor.ID, PostID: postID, Value: value})
	return nil
}
