package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

type fakeEmailService struct {
	sent []string
	err  error
}

func (s *fakeEmailService) SendWelcomeEmail(email, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, email)
	return nil
}

func validUserInput() UserInput {
	return UserInput{
		Name:     "New Worker",
		Email:    "worker@example.com",
		Password: "long enough secret",
		Role:     models.RoleUser,
	}
}

func TestCreateUser(t *testing.T) {
	repo := newFakeUserRepo()
	emails := &fakeEmailService{}
	svc := NewUserService(repo, NewAuthService(), emails)
	ctx := context.Background()

	user, err := svc.Create(ctx, manager, validUserInput())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "long enough secret", user.PasswordHash)
	assert.Equal(t, []string{"worker@example.com"}, emails.sent)
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, NewAuthService(), nil)

	input := validUserInput()
	input.Email = "  Worker@Example.COM "
	user, err := svc.Create(context.Background(), manager, input)
	require.NoError(t, err)
	assert.Equal(t, "worker@example.com", user.Email)
}

func TestCreateUserRequiresManager(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), NewAuthService(), nil)
	_, err := svc.Create(context.Background(), regular, validUserInput())
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), NewAuthService(), nil)

	_, err := svc.Create(context.Background(), manager, UserInput{
		Email:    "not-an-email",
		Password: "short",
		Role:     models.UserRole(9),
	})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "The name field is required.")
	assert.Contains(t, verrs, "The email must be a valid email address.")
	assert.Contains(t, verrs, "The password must be at least 8 characters.")
	assert.Contains(t, verrs, "The selected role is invalid.")
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, NewAuthService(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, manager, validUserInput())
	require.NoError(t, err)

	_, err = svc.Create(ctx, manager, validUserInput())
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "The email has already been taken", err.Error())
}

func TestCreateUserSurvivesEmailFailure(t *testing.T) {
	repo := newFakeUserRepo()
	emails := &fakeEmailService{err: assert.AnError}
	svc := NewUserService(repo, NewAuthService(), emails)

	user, err := svc.Create(context.Background(), manager, validUserInput())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestListUsersRequiresManager(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seed(models.User{Name: "A", Email: "a@example.com", Role: models.RoleUser})
	svc := NewUserService(repo, NewAuthService(), nil)
	ctx := context.Background()

	_, err := svc.List(ctx, regular, 10, 0)
	require.ErrorIs(t, err, ErrNotAuthorized)

	users, err := svc.List(ctx, manager, 0, -5)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRefreshTokenRotation(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, NewAuthService(), nil)
	ctx := context.Background()

	u := repo.seed(models.User{Name: "Worker", Email: "worker@example.com", Role: models.RoleUser})
	exp := time.Now().Add(time.Hour)

	require.NoError(t, svc.StoreRefresh(ctx, u.ID, "token-one", exp))

	got, err := svc.GetByRefreshToken(ctx, "token-one")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	rotated, err := svc.RotateRefresh(ctx, "token-one", "token-two", exp)
	require.NoError(t, err)
	require.NotNil(t, rotated)

	// the old token is gone after rotation
	gone, err := svc.RotateRefresh(ctx, "token-one", "token-three", exp)
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, svc.RevokeRefresh(ctx, u.ID))
	revoked, err := svc.RotateRefresh(ctx, "token-two", "token-four", exp)
	require.NoError(t, err)
	assert.Nil(t, revoked)
}

func TestAuthServicePasswords(t *testing.T) {
	auth := NewAuthService()

	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)
	require.NoError(t, auth.CheckPassword(hash, "correct horse battery"))
	require.Error(t, auth.CheckPassword(hash, "wrong password"))
}
