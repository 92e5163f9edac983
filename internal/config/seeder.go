package config

import (
	"context"
	"fmt"
	"strings"

	"credit-app/internal/adapters/persistence/models"
	"credit-app/internal/adapters/persistence/repositories"
	"credit-app/internal/core/domain"
	"credit-app/internal/pkg/password"

	"github.com/rs/zerolog/log"
)

// Seeder creates the staff accounts named in the configuration
type Seeder struct {
	users repositories.UserRepository
	seed  SeedConfig
	cost  int
}

// NewSeeder creates a new seeder instance
func NewSeeder(users repositories.UserRepository, cfg *Config) *Seeder {
	return &Seeder{users: users, seed: cfg.Seed, cost: cfg.Security.BcryptCost}
}

// Run executes all seeders. Failures are logged and never stop startup.
func (s *Seeder) Run(ctx context.Context) {
	log.Info().Msg("running database seeders")

	accounts := []struct {
		name, email, password string
		role                  domain.Role
	}{
		{s.seed.AdminName, s.seed.AdminEmail, s.seed.AdminPassword, domain.RoleAdmin},
		{s.seed.VerifierName, s.seed.VerifierEmail, s.seed.VerifierPassword, domain.RoleVerifier},
	}

	for _, a := range accounts {
		if err := s.seedAccount(ctx, a.name, a.email, a.password, a.role); err != nil {
			log.Warn().Err(err).Str("role", string(a.role)).Msg("seed account skipped")
		}
	}
}

func (s *Seeder) seedAccount(ctx context.Context, name, email, plain string, role domain.Role) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if !password.ValidatePassword(plain) {
		return fmt.Errorf("password for %s must be %d-%d characters", email, password.MinLength, password.MaxLength)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashed, err := password.HashWithCost(plain, s.cost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     string(role),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	log.Info().Uint("user_id", user.ID).Str("email", email).Str("role", user.Role).Msg("seed account created")
	return nil
}
