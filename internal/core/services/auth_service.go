package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"credit-app/internal/adapters/persistence/models"
	"credit-app/internal/adapters/persistence/repositories"
	"credit-app/internal/config"
	"credit-app/internal/core/domain"
	"credit-app/internal/pkg/jwt"
	"credit-app/internal/pkg/metrics"
	"credit-app/internal/pkg/password"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	users    *UserService
	userRepo repositories.UserRepository
	revoker  SessionRevoker
	cfg      *config.Config
}

// NewAuthService creates a new auth service.
// revoker may be nil, in which case logout only clears the client cookie.
func NewAuthService(
	users *UserService,
	userRepo repositories.UserRepository,
	revoker SessionRevoker,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:    users,
		userRepo: userRepo,
		revoker:  revoker,
		cfg:      cfg,
	}
}

// SignupInput represents registration input
type SignupInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=USER VERIFIER ADMIN user verifier admin"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed session token and the user it belongs to
type Session struct {
	User      *models.UserResponse
	Token     string
	ExpiresAt time.Time
}

// Signup registers a new user and opens a session for it
func (s *AuthService) Signup(ctx context.Context, input *SignupInput) (*Session, error) {
	if r, ok := domain.ParseRole(input.Role); ok && r.IsStaff() && !s.cfg.Security.AllowPrivilegedSignup {
		return nil, fmt.Errorf("%w: %s accounts cannot be created through signup", domain.ErrForbidden, r)
	}

	user, err := s.users.CreateUser(ctx, &CreateUserInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordSignup()
	log.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user signed up")

	return s.issue(user)
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordLogin(false)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		metrics.RecordLogin(false)
		return nil, domain.ErrInvalidCredentials
	}

	metrics.RecordLogin(true)
	log.Info().Uint("user_id", user.ID).Msg("user logged in")

	return s.issue(user)
}

// Logout revokes token until its own expiry. Missing, invalid or expired
// tokens need no revocation and are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" || s.revoker == nil {
		return nil
	}

	claims, err := jwt.ValidateSessionToken(token, s.cfg.JWT.Secret)
	if err != nil {
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.TokenID(), claims.UserID, claims.Expiry()); err != nil {
		return err
	}

	log.Info().Uint("user_id", claims.UserID).Msg("user logged out")
	return nil
}

// Authenticate verifies a session token and returns the identity it carries
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	claims, err := jwt.ValidateSessionToken(token, s.cfg.JWT.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, domain.ErrTokenExpired
		}
		return domain.Identity{}, domain.ErrTokenInvalid
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return domain.Identity{}, domain.ErrTokenInvalid
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID())
		if err != nil {
			return domain.Identity{}, err
		}
		if revoked {
			return domain.Identity{}, domain.ErrTokenRevoked
		}
	}

	return domain.Identity{UserID: claims.UserID, Role: role, Name: claims.Name}, nil
}

// Me returns the user behind identity
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*models.UserResponse, error) {
	return s.users.GetUser(ctx, identity.UserID)
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, claims, err := jwt.GenerateSessionToken(
		user.ID,
		user.Name,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.SessionTTL(),
	)
	if err != nil {
		return nil, err
	}

	return &Session{
		User:      user.ToResponse(),
		Token:     token,
		ExpiresAt: claims.Expiry(),
	}, nil
}
