package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/forum/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByExternalID finds a user by external identity provider id
func (r *GormUserRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// maxUsernameAttempts bounds the suffixed usernames tried when the preferred
// one already belongs to another account.
const maxUsernameAttempts = 5

// FindOrCreateByExternalID returns the existing user for the external id, or
// inserts the given one. The unique index on external_id settles concurrent
// first logins: the loser of the insert race re-reads the winner's row.
// When the username is held by another account the insert is retried as
// "<username>_2", "<username>_3" and so on.
// The boolean reports whether a row was created.
func (r *GormUserRepository) FindOrCreateByExternalID(ctx context.Context, user *models.User) (*models.User, bool, error) {
	if user.ExternalID == nil || *user.ExternalID == "" {
		return nil, false, errors.New("repository: external id is required")
	}

	existing, err := r.FindByExternalID(ctx, *user.ExternalID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	base := user.Username
	for attempt := 1; ; attempt++ {
		err := r.Create(ctx, user)
		if err == nil {
			return user, true, nil
		}
		if !errors.Is(err, ErrConstraintViolation) {
			return nil, false, err
		}

		existing, findErr := r.FindByExternalID(ctx, *user.ExternalID)
		if findErr == nil {
			return existing, false, nil
		}
		if !errors.Is(findErr, ErrNotFound) {
			return nil, false, findErr
		}

		if attempt == maxUsernameAttempts {
			return nil, false, fmt.Errorf("repository: no free username for %q: %w", base, err)
		}
		slog.WarnContext(ctx, "username taken, retrying external user with suffix",
			"username", user.Username, "external_id", *user.ExternalID)
		user.ID = 0
		user.Username = fmt.Sprintf("%s_%d", base, attempt+1)
	}
}
