package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// UserInput carries the fields for creating an account. Role is fixed at
// creation and never changes afterwards.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

type UserService interface {
	Create(ctx context.Context, actor models.Actor, input UserInput) (*models.User, error)
	List(ctx context.Context, actor models.Actor, limit, offset int) ([]models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)

	StoreRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
	RevokeRefresh(ctx context.Context, userID int64) error
}

type userService struct {
	repo         repositories.UserRepository
	authService  AuthService
	emailService EmailService
}

func NewUserService(repo repositories.UserRepository, authService AuthService, emailService EmailService) UserService {
	return &userService{
		repo:         repo,
		authService:  authService,
		emailService: emailService,
	}
}

func (s *userService) Create(ctx context.Context, actor models.Actor, input UserInput) (*models.User, error) {
	if !actor.IsManager() {
		return nil, errKind(ErrNotAuthorized, "You are not authorized to perform this action")
	}
	if verrs := validateUserInput(input); len(verrs) > 0 {
		return nil, verrs
	}

	hash, err := s.authService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Role:         input.Role,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, errKind(ErrConflict, "The email has already been taken")
		}
		return nil, err
	}

	if s.emailService != nil {
		// warn but do not fail creation
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
			log.Printf("[user][create] warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, actor models.Actor, limit, offset int) ([]models.User, error) {
	if !actor.IsManager() {
		return nil, errKind(ErrNotAuthorized, "You are not authorized to perform this action")
	}
	if limit < 1 {
		limit = defaultPerPage
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) StoreRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(ctx, userID, token, expiresAt)
}

func (s *userService) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	return s.repo.RotateRefresh(ctx, oldToken, newToken, expiresAt)
}

func (s *userService) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return s.repo.FindByRefreshToken(ctx, token)
}

func (s *userService) RevokeRefresh(ctx context.Context, userID int64) error {
	return s.repo.RevokeRefresh(ctx, userID)
}

func validateUserInput(input UserInput) ValidationErrors {
	var verrs ValidationErrors
	if strings.TrimSpace(input.Name) == "" {
		verrs = append(verrs, "The name field is required.")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		verrs = append(verrs, "The email must be a valid email address.")
	}
	if utf8.RuneCountInString(input.Password) < 8 {
		verrs = append(verrs, "The password must be at least 8 characters.")
	}
	if !input.Role.Valid() {
		verrs = append(verrs, "The selected role is invalid.")
	}
	return verrs
}
