package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/oauth"
	"github.com/yukikurage/forum/internal/repository"
	"github.com/yukikurage/forum/internal/validation"
)

func TestAuthService_SignupHashesPassword(t *testing.T) {
	env := setupServiceTestEnv(t)

	user, err := env.auth.Signup(env.ctx, SignupInput{Username: "  alice ", Password: "supersecret", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "supersecret", user.Password)
	assert.True(t, isBcryptHash(user.Password))
}

func TestAuthService_SignupValidation(t *testing.T) {
	env := setupServiceTestEnv(t)

	_, err := env.auth.Signup(env.ctx, SignupInput{Username: "a b", Password: "short"})

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	assert.Equal(t, "uname", verrs[0].Field)
	assert.Equal(t, "password", verrs[1].Field)
}

func TestAuthService_SignupPasswordBytes(t *testing.T) {
	env := setupServiceTestEnv(t)

	// 40 runes, 80 bytes
	_, err := env.auth.Signup(env.ctx, SignupInput{Username: "alice", Password: strings.Repeat("é", 40)})

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs), "got %v", err)
	assert.Equal(t, validation.Errors{{Field: "password", Message: "Password must be at most 72 bytes"}}, verrs)

	_, err = env.auth.Signup(env.ctx, SignupInput{Username: "alice", Password: strings.Repeat("é", 36)})
	assert.NoError(t, err)
}

func TestAuthService_SignupDuplicate(t *testing.T) {
	env := setupServiceTestEnv(t)
	env.signup(t, "alice")

	_, err := env.auth.Signup(env.ctx, SignupInput{Username: "alice", Password: "anothersecret"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_SignupReservedPrefix(t *testing.T) {
	env := setupServiceTestEnv(t)

	_, err := env.auth.Signup(env.ctx, SignupInput{Username: "Google_1234", Password: "supersecret"})

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, validation.Errors{{Field: "uname", Message: "Usernames starting with google_ are reserved"}}, verrs)
}

func TestAuthService_Authenticate(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.signup(t, "alice")

	user, ok, err := env.auth.Authenticate(env.ctx, "alice", "supersecret")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, alice.ID, user.ID)

	user, ok, err = env.auth.Authenticate(env.ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, user)

	user, ok, err = env.auth.Authenticate(env.ctx, "ghost", "supersecret")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestAuthService_LegacyPlaintextPasswords(t *testing.T) {
	env := setupServiceTestEnv(t)
	require.NoError(t, env.db.Create(&models.User{Username: "theo", Password: "123"}).Error)

	user, ok, err := env.auth.Authenticate(env.ctx, "theo", "123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "theo", user.Username)

	// the stored credential is left as it was
	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	assert.Equal(t, "123", stored.Password)

	strict := NewAuthService(repository.NewUserRepository(env.db), AuthOptions{})
	_, ok, err = strict.Authenticate(env.ctx, "theo", "123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_ExternalUserWithoutPassword(t *testing.T) {
	env := setupServiceTestEnv(t)
	user, err := env.auth.LoginWithExternalProfile(env.ctx, oauth.Profile{ID: "g-1"})
	require.NoError(t, err)

	_, ok, err := env.auth.Authenticate(env.ctx, user.Username, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_LoginWithExternalProfile(t *testing.T) {
	env := setupServiceTestEnv(t)
	profile := oauth.Profile{ID: "1234", Email: "ada@example.com", Name: "Ada"}

	first, err := env.auth.LoginWithExternalProfile(env.ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, "google_1234", first.Username)
	assert.Equal(t, "Ada", first.DisplayName())

	second, err := env.auth.LoginWithExternalProfile(env.ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = env.auth.LoginWithExternalProfile(env.ctx, oauth.Profile{})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestAuthService_GetUser(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.signup(t, "alice")

	user, err := env.auth.GetUser(env.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = env.auth.GetUser(env.ctx, alice.ID+1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
