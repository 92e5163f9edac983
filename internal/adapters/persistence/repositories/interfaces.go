package repositories

import (
	"context"
	"errors"
	"time"

	"credit-app/internal/adapters/persistence/models"
)

// ErrStaleRecord is returned by conditional updates that matched no row
var ErrStaleRecord = errors.New("record changed since it was read")

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// Delete removes the user together with its loans and their history
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}

// LoanFilter narrows loan listings; zero values match everything
type LoanFilter struct {
	UserID *uint
	Status string
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	// Create inserts the loan and its first history entry
	Create(ctx context.Context, loan *models.Loan, entry *models.LoanTransition) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.Loan, int64, error)
	// UpdateStatus writes loan's status and actor columns only if the stored row
	// still has fromStatus and fromVersion, bumps the version and appends entry.
	// It returns ErrStaleRecord when no row matched.
	UpdateStatus(ctx context.Context, loan *models.Loan, fromStatus string, fromVersion int, entry *models.LoanTransition) error
	Delete(ctx context.Context, id uint) error
	Summarize(ctx context.Context, filter LoanFilter) (*models.LoanSummary, error)
}

// LoanTransitionRepository defines loan history repository interface
type LoanTransitionRepository interface {
	Create(ctx context.Context, entry *models.LoanTransition) error
	GetByLoanID(ctx context.Context, loanID uint) ([]*models.LoanTransition, error)
}

// RevokedSessionRepository defines revoked session repository interface
type RevokedSessionRepository interface {
	Create(ctx context.Context, session *models.RevokedSession) error
	ExistsByTokenID(ctx context.Context, tokenID string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
