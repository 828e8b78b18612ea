package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/forum/internal/constants"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/oauth"
	"github.com/yukikurage/forum/internal/repository"
	"github.com/yukikurage/forum/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrInvalidProfile       = errors.New("external profile has no id")
)

// ExternalUsernamePrefix starts the username of every account created by
// external login. Signup rejects it.
const ExternalUsernamePrefix = "google_"

// AuthOptions tunes credential checks.
type AuthOptions struct {
	// LegacyPlaintextPasswords accepts stored credentials that are not bcrypt
	// hashes by exact comparison.
	LegacyPlaintextPasswords bool
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	opts     AuthOptions
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, opts AuthOptions) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		opts:     opts,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string `form:"uname" json:"uname" validate:"required,min=3,max=50,slug"`
	Password string `form:"password" json:"password" validate:"required,min=8,max=72"`
	Name     string `form:"name" json:"name" validate:"max=255"`
}

var signupMessages = validation.Messages{
	"uname.required":    "Username is required",
	"uname.slug":        "Username can only contain letters, numbers, hyphens, and underscores",
	"uname":             fmt.Sprintf("Username must be between %d and %d characters", constants.MinUsernameLength, constants.MaxUsernameLength),
	"password.required": "Password is required",
	"password":          fmt.Sprintf("Password must be between %d and %d characters", constants.MinPasswordLength, constants.MaxPasswordLength),
	"name":              "Name must be at most 255 characters",
}

// Signup creates a new password user.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input, signupMessages); err != nil {
		return nil, err
	}
	if strings.HasPrefix(strings.ToLower(input.Username), ExternalUsernamePrefix) {
		return nil, validation.Field("uname", "Usernames starting with "+ExternalUsernamePrefix+" are reserved")
	}
	if len(input.Password) > constants.MaxPasswordBytes {
		return nil, validation.Field("password", fmt.Sprintf("Password must be at most %d bytes", constants.MaxPasswordBytes))
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Password: hashedPassword,
		Name:     input.Name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConstraintViolation) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks a username/password pair. An unknown username or a
// wrong password yields (nil, false, nil); only store failures are errors.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, bool, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.passwordMatches(user.Password, password) {
		return nil, false, nil
	}

	return user, true, nil
}

func (s *AuthService) passwordMatches(stored, supplied string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	if !s.opts.LegacyPlaintextPasswords || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// HashPassword bcrypt-hashes a password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToHashPassword, err)
	}
	return string(hashed), nil
}

// LoginWithExternalProfile returns the user bound to the provider identity,
// creating one on first login.
func (s *AuthService) LoginWithExternalProfile(ctx context.Context, profile oauth.Profile) (*models.User, error) {
	if profile.ID == "" {
		return nil, ErrInvalidProfile
	}

	externalID := profile.ID
	user, _, err := s.userRepo.FindOrCreateByExternalID(ctx, &models.User{
		Username:   ExternalUsernamePrefix + externalID,
		ExternalID: &externalID,
		Email:      profile.Email,
		Name:       profile.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve external user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
