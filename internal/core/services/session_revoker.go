package services

import (
	"context"
	"time"

	"credit-app/internal/adapters/persistence/models"
	"credit-app/internal/adapters/persistence/repositories"
)

// repositoryRevoker stores revocations in the revoked_sessions table.
// It is used when no redis server is configured.
type repositoryRevoker struct {
	repo repositories.RevokedSessionRepository
}

// NewRepositoryRevoker creates a database-backed SessionRevoker
func NewRepositoryRevoker(repo repositories.RevokedSessionRepository) SessionRevoker {
	return &repositoryRevoker{repo: repo}
}

func (r *repositoryRevoker) Revoke(ctx context.Context, tokenID string, userID uint, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}
	return r.repo.Create(ctx, &models.RevokedSession{
		TokenID:   tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	})
}

func (r *repositoryRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return r.repo.ExistsByTokenID(ctx, tokenID)
}
