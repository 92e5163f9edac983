package repositories

import (
	"context"
	"time"

	"credit-app/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// revokedSessionRepository implements RevokedSessionRepository interface
type revokedSessionRepository struct {
	db *gorm.DB
}

// NewRevokedSessionRepository creates a new revoked session repository
func NewRevokedSessionRepository(db *gorm.DB) RevokedSessionRepository {
	return &revokedSessionRepository{db: db}
}

// Create records a revoked token; revoking the same token twice is a no-op
func (r *revokedSessionRepository) Create(ctx context.Context, session *models.RevokedSession) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(session).Error
}

// ExistsByTokenID checks if a still-relevant revocation exists for the token
func (r *revokedSessionRepository) ExistsByTokenID(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RevokedSession{}).
		Where("token_id = ?", tokenID).
		Where("expires_at > ?", time.Now()).
		Count(&count).Error
	return count > 0, err
}

// DeleteExpired deletes revocations whose token has expired (cleanup job)
func (r *revokedSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.RevokedSession{})
	return res.RowsAffected, res.Error
}
