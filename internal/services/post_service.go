package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/forum/internal/constants"
	"github.com/yukikurage/forum/internal/events"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/repository"
	"github.com/yukikurage/forum/internal/validation"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostCreator  = errors.New("only the post creator can perform this action")
)

// PostService handles post business logic
type PostService struct {
	postRepo  repository.PostRepository
	voteRepo  repository.VoteRepository
	publisher events.Publisher
}

// NewPostService creates a new PostService
func NewPostService(postRepo repository.PostRepository, voteRepo repository.VoteRepository, publisher events.Publisher) *PostService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PostService{
		postRepo:  postRepo,
		voteRepo:  voteRepo,
		publisher: publisher,
	}
}

// PostInput carries the user-editable fields of a post
type PostInput struct {
	Title       string `form:"title" json:"title" validate:"required,min=3,max=200"`
	Link        string `form:"link" json:"link" validate:"omitempty,max=2048,httpurl"`
	Description string `form:"description" json:"description" validate:"required,min=10,max=5000"`
	Subgroup    string `form:"subgroup" json:"subgroup" validate:"required,min=2,max=50,slug"`
}

var postMessages = validation.Messages{
	"title.required":       "Title is required",
	"title":                fmt.Sprintf("Title must be between %d and %d characters", constants.MinTitleLength, constants.MaxTitleLength),
	"description.required": "Description is required",
	"description":          fmt.Sprintf("Description must be between %d and %d characters", constants.MinDescriptionLength, constants.MaxDescriptionLength),
	"link":                 "Link must be a valid URL with http:// or https://",
	"subgroup.required":    "Subgroup is required",
	"subgroup.slug":        "Subgroup can only contain letters, numbers, underscores, and hyphens",
	"subgroup":             fmt.Sprintf("Subgroup must be between %d and %d characters", constants.MinSubgroupLength, constants.MaxSubgroupLength),
}

// normalize trims every field, fills the default subgroup and lowercases it
func (in PostInput) normalize() PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Link = strings.TrimSpace(in.Link)
	in.Description = strings.TrimSpace(in.Description)
	in.Subgroup = strings.ToLower(strings.TrimSpace(in.Subgroup))
	if in.Subgroup == "" {
		in.Subgroup = constants.DefaultSubgroup
	}
	return in
}

// Validate normalizes the input and checks it against the content rules
func (in PostInput) Validate() (PostInput, error) {
	in = in.normalize()
	if err := validation.Struct(in, postMessages); err != nil {
		return in, err
	}
	return in, nil
}

// ListPostsInput represents filters for listing posts
type ListPostsInput struct {
	Subgroup string
	Limit    int
	Offset   int
	Viewer   *models.User
}

// PostSummary is a listed post with its vote standing
type PostSummary struct {
	models.Post
	VoteTotal int
	UserVote  int
}

// PostDetail is a fully loaded post with its vote standing
type PostDetail struct {
	Post      *models.Post
	VoteTotal int
	UserVote  int
}

// ListPosts returns posts newest first, each with its vote total and the
// viewer's own vote (0 for anonymous viewers or no vote)
func (s *PostService) ListPosts(ctx context.Context, input ListPostsInput) ([]PostSummary, error) {
	if input.Limit <= 0 {
		input.Limit = constants.DefaultPageSize
	}

	posts, err := s.postRepo.List(ctx, repository.PostFilter{
		Subgroup: strings.ToLower(strings.TrimSpace(input.Subgroup)),
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	ids := make([]uint64, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}

	totals, err := s.voteRepo.Totals(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to sum votes: %w", err)
	}

	userVotes := map[uint64]int{}
	if input.Viewer != nil {
		userVotes, err = s.voteRepo.UserValues(ctx, input.Viewer.ID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load viewer votes: %w", err)
		}
	}

	summaries := make([]PostSummary, len(posts))
	for i, post := range posts {
		summaries[i] = PostSummary{
			Post:      post,
			VoteTotal: totals[post.ID],
			UserVote:  userVotes[post.ID],
		}
	}
	return summaries, nil
}

// GetPost returns a post with creator, comments and votes
func (s *PostService) GetPost(ctx context.Context, postID uint64, viewer *models.User) (*PostDetail, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	detail := &PostDetail{Post: post}
	detail.VoteTotal, err = s.voteRepo.Total(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum votes: %w", err)
	}

	if viewer != nil {
		vote, err := s.voteRepo.Find(ctx, viewer.ID, postID)
		switch {
		case err == nil:
			detail.UserVote = vote.Value
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("failed to load viewer vote: %w", err)
		}
	}
	return detail, nil
}

// CreatePost validates the input and stores a new post owned by actor
func (s *PostService) CreatePost(ctx context.Context, actor *models.User, input PostInput) (*models.Post, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	input, err := input.Validate()
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       input.Title,
		Link:        input.Link,
		Description: input.Description,
		Subgroup:    input.Subgroup,
		CreatorID:   actor.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.Creator = *actor

	s.publish(ctx, events.Event{Type: events.PostCreated, ActorID: actor.ID, PostID: post.ID, Subgroup: post.Subgroup})
	return post, nil
}

// AuthorizeOwner loads a post and checks that actor created it
func (s *PostService) AuthorizeOwner(ctx context.Context, actor *models.User, postID uint64) (*models.Post, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	post, err := s.postRepo.FindHeader(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	if post.CreatorID != actor.ID {
		return nil, ErrNotPostCreator
	}
	return post, nil
}

// EditPost overwrites title, link, description and subgroup
func (s *PostService) EditPost(ctx context.Context, actor *models.User, postID uint64, input PostInput) (*models.Post, error) {
	if _, err := s.AuthorizeOwner(ctx, actor, postID); err != nil {
		return nil, err
	}

	input, err := input.Validate()
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.Update(ctx, postID, repository.PostChanges{
		Title:       input.Title,
		Link:        input.Link,
		Description: input.Description,
		Subgroup:    input.Subgroup,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.publish(ctx, events.Event{Type: events.PostUpdated, ActorID: actor.ID, PostID: post.ID, Subgroup: post.Subgroup})
	return post, nil
}

// DeletePost removes a post with its comments and votes
func (s *PostService) DeletePost(ctx context.Context, actor *models.User, postID uint64) error {
	post, err := s.AuthorizeOwner(ctx, actor, postID)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.publish(ctx, events.Event{Type: events.PostDeleted, ActorID: actor.ID, PostID: postID, Subgroup: post.Subgroup})
	return nil
}

// ListSubgroups lists every subgroup that has at least one post
func (s *PostService) ListSubgroups(ctx context.Context) ([]string, error) {
	subgroups, err := s.postRepo.ListSubgroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subgroups: %w", err)
	}
	return subgroups, nil
}

func (s *PostService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.publisher, event)
}

// publish reports delivery failures without failing the operation that
// already committed
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", event.Type, "post_id", event.PostID, "error", err)
	}
}
