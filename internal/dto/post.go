package dto

import (
	"time"

	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID          uint64    `json:"id"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Creator     *UserDTO  `json:"creator,omitempty"`
}

// VoteDTO represents a single vote in API responses
type VoteDTO struct {
	UserID uint64 `json:"user_id"`
	Value  int    `json:"value"`
}

// PostListItemDTO represents a post in list responses (no comments)
type PostListItemDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Subgroup    string    `json:"subgroup"`
	Timestamp   time.Time `json:"timestamp"`
	Creator     *UserDTO  `json:"creator,omitempty"`
	VoteTotal   int       `json:"vote_total"`
	UserVote    int       `json:"user_vote"`
}

// PostDetailDTO represents a post with its comments and votes
type PostDetailDTO struct {
	PostListItemDTO
	Comments []CommentDTO `json:"comments"`
	Votes    []VoteDTO    `json:"votes"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
	}
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	dto := CommentDTO{
		ID:          comment.ID,
		Description: comment.Description,
		Timestamp:   comment.Timestamp,
	}

	// Include creator if preloaded
	if comment.Creator.ID != 0 {
		creator := ToUserDTO(comment.Creator)
		dto.Creator = &creator
	}

	return dto
}

func toPostListItemDTO(post models.Post, voteTotal, userVote int) PostListItemDTO {
	dto := PostListItemDTO{
		ID:          post.ID,
		Title:       post.Title,
		Link:        post.Link,
		Description: post.Description,
		Subgroup:    post.Subgroup,
		Timestamp:   post.Timestamp,
		VoteTotal:   voteTotal,
		UserVote:    userVote,
	}

	if post.Creator.ID != 0 {
		creator := ToUserDTO(post.Creator)
		dto.Creator = &creator
	}

	return dto
}

// ToPostListItemDTO converts a decorated post summary to PostListItemDTO
func ToPostListItemDTO(summary services.PostSummary) PostListItemDTO {
	return toPostListItemDTO(summary.Post, summary.VoteTotal, summary.UserVote)
}

// ToPostDetailDTO converts a decorated post detail to PostDetailDTO
func ToPostDetailDTO(detail services.PostDetail) PostDetailDTO {
	dto := PostDetailDTO{
		PostListItemDTO: toPostListItemDTO(*detail.Post, detail.VoteTotal, detail.UserVote),
		Comments:        make([]CommentDTO, len(detail.Post.Comments)),
		Votes:           make([]VoteDTO, len(detail.Post.Votes)),
	}

	for i, comment := range detail.Post.Comments {
		dto.Comments[i] = ToCommentDTO(comment)
	}
	for i, vote := range detail.Post.Votes {
		dto.Votes[i] = VoteDTO{UserID: vote.UserID, Value: vote.Value}
	}

	return dto
}

// ToPostListItems converts a page of summaries to list items
func ToPostListItems(summaries []services.PostSummary) []PostListItemDTO {
	items := make([]PostListItemDTO, len(summaries))
	for i, summary := range summaries {
		items[i] = ToPostListItemDTO(summary)
	}
	return items
}
