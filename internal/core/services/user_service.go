package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"credit-app/internal/adapters/persistence/models"
	"credit-app/internal/adapters/persistence/repositories"
	"credit-app/internal/config"
	"credit-app/internal/core/domain"
	"credit-app/internal/pkg/pagination"
	"credit-app/internal/pkg/password"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, cfg *config.Config) *UserService {
	return &UserService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// CreateUserInput represents a new account
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser validates input, hashes the password and stores the user.
// An empty role means USER.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return nil, fmt.Errorf("%w: name must be between 2 and 100 characters", domain.ErrInvalidInput)
	}

	email := NormalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is not valid", domain.ErrInvalidInput)
	}

	if !password.ValidatePassword(input.Password) {
		return nil, fmt.Errorf("%w: password must be between %d and %d characters",
			domain.ErrInvalidInput, password.MinLength, password.MaxLength)
	}

	role := domain.RoleUser
	if strings.TrimSpace(input.Role) != "" {
		r, ok := domain.ParseRole(input.Role)
		if !ok {
			return nil, fmt.Errorf("%w: role must be USER, VERIFIER or ADMIN", domain.ErrInvalidInput)
		}
		role = r
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	hashed, err := password.HashWithCost(input.Password, s.cfg.Security.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     string(role),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup; the unique index decides
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}

	return user, nil
}

// FindByEmail gets a user by email
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUser gets a user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, params pagination.Params) (*pagination.Page[*models.UserResponse], error) {
	params = params.Normalize()

	users, total, err := s.userRepo.List(ctx, params.Offset(), params.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]*models.UserResponse, len(users))
	for i, user := range users {
		items[i] = user.ToResponse()
	}

	return pagination.NewPage(items, params, total), nil
}

// SetRole changes another user's role
func (s *UserService) SetRole(ctx context.Context, actor domain.Identity, id uint, role string) (*models.UserResponse, error) {
	if actor.UserID == id {
		return nil, domain.ErrCannotChangeOwnRole
	}

	newRole, ok := domain.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("%w: role must be USER, VERIFIER or ADMIN", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	oldRole := user.Role
	user.Role = string(newRole)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Info().
		Uint("user_id", id).
		Str("from", oldRole).
		Str("to", user.Role).
		Uint("by", actor.UserID).
		Msg("user role changed")

	return user.ToResponse(), nil
}

// DeleteUser deletes a user along with its loans
func (s *UserService) DeleteUser(ctx context.Context, actor domain.Identity, id uint) error {
	if actor.UserID == id {
		return domain.ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	log.Info().Uint("user_id", id).Uint("by", actor.UserID).Msg("user deleted")
	return nil
}
