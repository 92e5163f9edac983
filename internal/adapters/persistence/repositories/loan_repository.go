package repositories

import (
	"context"

	"credit-app/internal/adapters/persistence/models"
	"credit-app/internal/core/domain"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (f LoanFilter) apply(q *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

// Create creates a new loan and records its first history entry
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan, entry *models.LoanTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(loan).Error; err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		entry.LoanID = loan.ID
		return tx.Create(entry).Error
	})
}

// GetByID gets a loan by ID
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List lists loans matching filter, newest first
func (r *loanRepository) List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	if err := filter.apply(r.db.WithContext(ctx).Model(&models.Loan{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := filter.apply(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error
	if err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

// UpdateStatus applies a status transition guarded by the previous status and version
func (r *loanRepository) UpdateStatus(ctx context.Context, loan *models.Loan, fromStatus string, fromVersion int, entry *models.LoanTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND status = ? AND version = ?", loan.ID, fromStatus, fromVersion).
			Updates(map[string]any{
				"status":           loan.Status,
				"version":          fromVersion + 1,
				"verified_by_id":   loan.VerifiedByID,
				"approved_by_id":   loan.ApprovedByID,
				"rejected_by_id":   loan.RejectedByID,
				"rejected_by_role": loan.RejectedByRole,
				"rejection_reason": loan.RejectionReason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleRecord
		}
		loan.Version = fromVersion + 1

		if entry == nil {
			return nil
		}
		entry.LoanID = loan.ID
		return tx.Create(entry).Error
	})
}

// Delete hard deletes a loan and its history
func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_id = ?", id).Delete(&models.LoanTransition{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Loan{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Summarize counts loans per status and sums their amounts
func (r *loanRepository) Summarize(ctx context.Context, filter LoanFilter) (*models.LoanSummary, error) {
	var rows []struct {
		Status string
		Count  int64
		Amount float64
	}
	err := filter.apply(r.db.WithContext(ctx).Model(&models.Loan{})).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &models.LoanSummary{Counts: make(map[string]int64, len(domain.AllLoanStatuses))}
	for _, st := range domain.AllLoanStatuses {
		summary.Counts[string(st)] = 0
	}
	for _, row := range rows {
		summary.Counts[row.Status] = row.Count
		summary.Total += row.Count
		summary.TotalAmount += row.Amount
		if row.Status == string(domain.LoanStatusApproved) {
			summary.ApprovedAmount = row.Amount
		}
	}
	return summary, nil
}

// loanTransitionRepository implements LoanTransitionRepository interface
type loanTransitionRepository struct {
	db *gorm.DB
}

// NewLoanTransitionRepository creates a new loan history repository
func NewLoanTransitionRepository(db *gorm.DB) LoanTransitionRepository {
	return &loanTransitionRepository{db: db}
}

// Create appends a history entry
func (r *loanTransitionRepository) Create(ctx context.Context, entry *models.LoanTransition) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetByLoanID gets the history of a loan in the order it happened
func (r *loanTransitionRepository) GetByLoanID(ctx context.Context, loanID uint) ([]*models.LoanTransition, error) {
	var entries []*models.LoanTransition
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}
