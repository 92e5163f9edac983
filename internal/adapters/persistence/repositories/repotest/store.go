// Package repotest provides in-memory repositories with the same observable
// behaviour as the gorm ones, for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"credit-app/internal/adapters/persistence/models"
	"credit-app/internal/adapters/persistence/repositories"
	"credit-app/internal/core/domain"

	"gorm.io/gorm"
)

// Store holds every table in memory. The zero value is not usable; call NewStore.
type Store struct {
	mu sync.Mutex

	users       map[uint]*models.User
	loans       map[uint]*models.Loan
	transitions []*models.LoanTransition
	revoked     map[string]*models.RevokedSession

	nextUserID       uint
	nextLoanID       uint
	nextTransitionID uint
	nextRevokedID    uint

	failErr error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:   make(map[uint]*models.User),
		loans:   make(map[uint]*models.Loan),
		revoked: make(map[string]*models.RevokedSession),
	}
}

// FailWith makes every subsequent call return err; nil restores normal behaviour
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *Store) Users() repositories.UserRepository                 { return userRepo{s} }
func (s *Store) Loans() repositories.LoanRepository                 { return loanRepo{s} }
func (s *Store) Transitions() repositories.LoanTransitionRepository { return transitionRepo{s} }
func (s *Store) RevokedSessions() repositories.RevokedSessionRepository {
	return revokedRepo{s}
}

// LoanCount returns the number of stored loans
func (s *Store) LoanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loans)
}

// UserCount returns the number of stored users
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) lock() error {
	s.mu.Lock()
	if s.failErr != nil {
		err := s.failErr
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) appendTransition(entry *models.LoanTransition) {
	s.nextTransitionID++
	entry.ID = s.nextTransitionID
	entry.CreatedAt = time.Now()
	cp := *entry
	s.transitions = append(s.transitions, &cp)
}

// ============================================================
// Users
// ============================================================

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *models.User) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r userRepo) Update(_ context.Context, user *models.User) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.UpdatedAt = time.Now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r userRepo) Delete(_ context.Context, id uint) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.users, id)
	for loanID, l := range r.s.loans {
		if l.UserID == id {
			r.s.deleteLoanLocked(loanID)
		}
	}
	return nil
}

func (r userRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	if err := r.s.lock(); err != nil {
		return nil, 0, err
	}
	defer r.s.mu.Unlock()

	all := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (r userRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if err := r.s.lock(); err != nil {
		return false, err
	}
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r userRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	counts := make(map[string]int64)
	for _, u := range r.s.users {
		counts[u.Role]++
	}
	return counts, nil
}

// ============================================================
// Loans
// ============================================================

type loanRepo struct{ s *Store }

func matches(f repositories.LoanFilter, l *models.Loan) bool {
	if f.UserID != nil && l.UserID != *f.UserID {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	return true
}

func (r loanRepo) Create(_ context.Context, loan *models.Loan, entry *models.LoanTransition) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[loan.UserID]; !ok {
		return gorm.ErrForeignKeyViolated
	}

	r.s.nextLoanID++
	loan.ID = r.s.nextLoanID
	if loan.Version == 0 {
		loan.Version = 1
	}
	loan.CreatedAt = time.Now()
	loan.UpdatedAt = loan.CreatedAt
	cp := *loan
	r.s.loans[loan.ID] = &cp

	if entry != nil {
		entry.LoanID = loan.ID
		r.s.appendTransition(entry)
	}
	return nil
}

func (r loanRepo) GetByID(_ context.Context, id uint) (*models.Loan, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	l, ok := r.s.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r loanRepo) List(_ context.Context, filter repositories.LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
	if err := r.s.lock(); err != nil {
		return nil, 0, err
	}
	defer r.s.mu.Unlock()

	var all []*models.Loan
	for _, l := range r.s.loans {
		if matches(filter, l) {
			cp := *l
			all = append(all, &cp)
		}
	}
	// newest first, like ORDER BY created_at DESC, id DESC
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (r loanRepo) UpdateStatus(_ context.Context, loan *models.Loan, fromStatus string, fromVersion int, entry *models.LoanTransition) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	stored, ok := r.s.loans[loan.ID]
	if !ok || stored.Status != fromStatus || stored.Version != fromVersion {
		return repositories.ErrStaleRecord
	}

	stored.Status = loan.Status
	stored.Version = fromVersion + 1
	stored.VerifiedByID = loan.VerifiedByID
	stored.ApprovedByID = loan.ApprovedByID
	stored.RejectedByID = loan.RejectedByID
	stored.RejectedByRole = loan.RejectedByRole
	stored.RejectionReason = loan.RejectionReason
	stored.UpdatedAt = time.Now()
	loan.Version = stored.Version

	if entry != nil {
		entry.LoanID = loan.ID
		r.s.appendTransition(entry)
	}
	return nil
}

func (r loanRepo) Delete(_ context.Context, id uint) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.loans[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.deleteLoanLocked(id)
	return nil
}

func (s *Store) deleteLoanLocked(id uint) {
	delete(s.loans, id)
	kept := s.transitions[:0]
	for _, t := range s.transitions {
		if t.LoanID != id {
			kept = append(kept, t)
		}
	}
	s.transitions = kept
}

func (r loanRepo) Summarize(_ context.Context, filter repositories.LoanFilter) (*models.LoanSummary, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	summary := &models.LoanSummary{Counts: make(map[string]int64)}
	for _, st := range domain.AllLoanStatuses {
		summary.Counts[string(st)] = 0
	}
	for _, l := range r.s.loans {
		if !matches(filter, l) {
			continue
		}
		summary.Counts[l.Status]++
		summary.Total++
		summary.TotalAmount += l.Amount
		if l.Status == string(domain.LoanStatusApproved) {
			summary.ApprovedAmount += l.Amount
		}
	}
	return summary, nil
}

// ============================================================
// Loan history
// ============================================================

type transitionRepo struct{ s *Store }

func (r transitionRepo) Create(_ context.Context, entry *models.LoanTransition) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	r.s.appendTransition(entry)
	return nil
}

func (r transitionRepo) GetByLoanID(_ context.Context, loanID uint) ([]*models.LoanTransition, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	var out []*models.LoanTransition
	for _, t := range r.s.transitions {
		if t.LoanID == loanID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ============================================================
// Revoked sessions
// ============================================================

type revokedRepo struct{ s *Store }

func (r revokedRepo) Create(_ context.Context, session *models.RevokedSession) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.revoked[session.TokenID]; ok {
		return nil
	}
	r.s.nextRevokedID++
	session.ID = r.s.nextRevokedID
	session.CreatedAt = time.Now()
	cp := *session
	r.s.revoked[session.TokenID] = &cp
	return nil
}

func (r revokedRepo) ExistsByTokenID(_ context.Context, tokenID string) (bool, error) {
	if err := r.s.lock(); err != nil {
		return false, err
	}
	defer r.s.mu.Unlock()

	rs, ok := r.s.revoked[tokenID]
	return ok && !rs.IsExpired(), nil
}

func (r revokedRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if err := r.s.lock(); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()

	var n int64
	for id, rs := range r.s.revoked {
		if rs.ExpiresAt.Before(now) {
			delete(r.s.revoked, id)
			n++
		}
	}
	return n, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
