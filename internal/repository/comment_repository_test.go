package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/forum/internal/models"
)

func TestCommentRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)
	alice := createTestUser(t, db, "alice")
	theo := createTestUser(t, db, "theo")
	post := createTestPost(t, db, alice.ID, "coding", time.Now())

	first := &models.Comment{PostID: post.ID, CreatorID: theo.ID, Description: "first"}
	second := &models.Comment{PostID: post.ID, CreatorID: alice.ID, Description: "second"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, "theo", first.Creator.Username)
	assert.False(t, first.Timestamp.IsZero())

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCommentRepository_Create_MissingReferences(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)
	alice := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "coding", time.Now())

	err := repo.Create(ctx, &models.Comment{PostID: 999, CreatorID: alice.ID, Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Create(ctx, &models.Comment{PostID: post.ID, CreatorID: 999, Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}
