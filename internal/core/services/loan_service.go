package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"credit-app/internal/adapters/persistence/models"
	"credit-app/internal/adapters/persistence/repositories"
	"credit-app/internal/core/domain"
	"credit-app/internal/pkg/metrics"
	"credit-app/internal/pkg/pagination"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	// MaxLoanAmount is the largest amount a single application may request
	MaxLoanAmount = 100_000_000

	// MaxReasonLength bounds the free-text reason and rejection reason
	MaxReasonLength = 1000

	// MaxTenureMonths bounds the optional tenure
	MaxTenureMonths = 480
)

// LoanService handles the loan lifecycle
type LoanService struct {
	loanRepo    repositories.LoanRepository
	historyRepo repositories.LoanTransitionRepository
	userRepo    repositories.UserRepository
	notifier    *NotificationService
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	historyRepo repositories.LoanTransitionRepository,
	userRepo repositories.UserRepository,
	notifier *NotificationService,
) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// ApplyLoanInput represents a loan application
type ApplyLoanInput struct {
	Amount            float64 `json:"amount" validate:"required,gt=0,lte=100000000"`
	Reason            string  `json:"reason" validate:"required,max=1000"`
	CustomerName      string  `json:"customerName" validate:"omitempty,max=100"`
	TenureMonths      *int    `json:"loanTenure" validate:"omitempty,min=1,max=480"`
	EmploymentStatus  string  `json:"employmentStatus" validate:"omitempty,max=30"`
	EmploymentAddress string  `json:"employmentAddress" validate:"omitempty,max=255"`
}

// UpdateStatusInput represents a verifier or admin decision
type UpdateStatusInput struct {
	Status          string `json:"status" validate:"required"`
	RejectionReason string `json:"rejectionReason" validate:"max=1000"`
	// Version is the loan version the client last saw; optional
	Version *int `json:"version"`
}

// ListLoansInput represents list loans input
type ListLoansInput struct {
	Status string
	pagination.Params
}

// Apply submits a new loan for actor. The loan always starts PENDING and belongs to actor.
func (s *LoanService) Apply(ctx context.Context, actor domain.Identity, input *ApplyLoanInput, ipAddress string) (*models.Loan, error) {
	if actor.Role != domain.RoleUser {
		return nil, domain.ErrForbidden
	}

	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive number", domain.ErrInvalidInput)
	}
	if input.Amount > MaxLoanAmount {
		return nil, fmt.Errorf("%w: amount must not exceed %d", domain.ErrInvalidInput, MaxLoanAmount)
	}

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, fmt.Errorf("%w: reason must be at most %d characters", domain.ErrInvalidInput, MaxReasonLength)
	}

	if input.TenureMonths != nil && (*input.TenureMonths < 1 || *input.TenureMonths > MaxTenureMonths) {
		return nil, fmt.Errorf("%w: loan tenure must be between 1 and %d months", domain.ErrInvalidInput, MaxTenureMonths)
	}

	// a session can outlive its account
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	customerName := strings.TrimSpace(input.CustomerName)
	if customerName == "" {
		customerName = user.Name
	}

	loan := &models.Loan{
		UserID:            actor.UserID,
		CustomerName:      customerName,
		Amount:            input.Amount,
		Reason:            reason,
		TenureMonths:      input.TenureMonths,
		EmploymentStatus:  strings.TrimSpace(input.EmploymentStatus),
		EmploymentAddress: strings.TrimSpace(input.EmploymentAddress),
		Status:            string(domain.LoanStatusPending),
		Version:           1,
	}

	entry := &models.LoanTransition{
		ToStatus:  loan.Status,
		ActorID:   actor.UserID,
		ActorRole: string(actor.Role),
		IPAddress: ipAddress,
	}

	if err := s.loanRepo.Create(ctx, loan, entry); err != nil {
		// the account was deleted between the lookup and the insert
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	metrics.RecordLoanApplication()
	log.Info().
		Uint("loan_id", loan.ID).
		Uint("user_id", actor.UserID).
		Float64("amount", loan.Amount).
		Msg("loan submitted")

	s.publish(ctx, loan, "", actor, "")
	return loan, nil
}

// ListOwn lists the loans submitted by actor
func (s *LoanService) ListOwn(ctx context.Context, actor domain.Identity, params pagination.Params) (*pagination.Page[*models.Loan], error) {
	params = params.Normalize()
	userID := actor.UserID

	loans, total, err := s.loanRepo.List(ctx, repositories.LoanFilter{UserID: &userID}, params.Offset(), params.Limit)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(loans, params, total), nil
}

// ListAll lists loans of every user, optionally narrowed to one status
func (s *LoanService) ListAll(ctx context.Context, actor domain.Identity, input *ListLoansInput) (*pagination.Page[*models.Loan], error) {
	if !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}

	filter := repositories.LoanFilter{}
	if strings.TrimSpace(input.Status) != "" {
		st, ok := domain.ParseLoanStatus(input.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, input.Status)
		}
		filter.Status = string(st)
	}

	params := input.Params.Normalize()
	loans, total, err := s.loanRepo.List(ctx, filter, params.Offset(), params.Limit)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(loans, params, total), nil
}

// Get returns a loan visible to actor: its owner or any staff member
func (s *LoanService) Get(ctx context.Context, actor domain.Identity, id uint) (*models.Loan, error) {
	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && !loan.IsOwnedBy(actor.UserID) {
		return nil, domain.ErrForbidden
	}
	return loan, nil
}

// History returns the status history of a loan visible to actor
func (s *LoanService) History(ctx context.Context, actor domain.Identity, id uint) ([]*models.LoanTransition, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.GetByLoanID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.LoanTransition{}
	}
	return entries, nil
}

// SetVerifierStatus moves a PENDING loan to VERIFIED or REJECTED
func (s *LoanService) SetVerifierStatus(ctx context.Context, actor domain.Identity, id uint, input *UpdateStatusInput, ipAddress string) (*models.Loan, error) {
	return s.transition(ctx, actor, domain.RoleVerifier, id, input, ipAddress)
}

// SetAdminStatus moves a VERIFIED loan to APPROVED or REJECTED
func (s *LoanService) SetAdminStatus(ctx context.Context, actor domain.Identity, id uint, input *UpdateStatusInput, ipAddress string) (*models.Loan, error) {
	return s.transition(ctx, actor, domain.RoleAdmin, id, input, ipAddress)
}

// transitionError explains why role cannot move a loan from one status to another
func transitionError(role domain.Role, from, target domain.LoanStatus) error {
	allowed := domain.TargetStatuses(role)
	if !slices.Contains(allowed, target) {
		names := make([]string, len(allowed))
		for i, st := range allowed {
			names[i] = string(st)
		}
		return fmt.Errorf("%w: %s may only set %s", domain.ErrInvalidTransition, role, strings.Join(names, " or "))
	}
	if from.IsFinal() {
		return fmt.Errorf("%w: loan is already %s", domain.ErrInvalidTransition, from)
	}
	return fmt.Errorf("%w: %s cannot move a %s loan to %s", domain.ErrInvalidTransition, role, from, target)
}

// transition applies a decision taken by actor acting as role
func (s *LoanService) transition(ctx context.Context, actor domain.Identity, role domain.Role, id uint, input *UpdateStatusInput, ipAddress string) (*models.Loan, error) {
	if actor.Role != role {
		return nil, domain.ErrForbidden
	}

	target, ok := domain.ParseLoanStatus(input.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, input.Status)
	}

	reason := strings.TrimSpace(input.RejectionReason)
	if target == domain.LoanStatusRejected && reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, fmt.Errorf("%w: rejection reason must be at most %d characters", domain.ErrInvalidInput, MaxReasonLength)
	}

	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Version != nil && *input.Version != loan.Version {
		return nil, domain.ErrConcurrentUpdate
	}

	from := loan.LoanStatus()
	if !domain.CanTransition(role, from, target) {
		return nil, transitionError(role, from, target)
	}

	actorID := actor.UserID
	loan.Status = string(target)
	switch target {
	case domain.LoanStatusVerified:
		loan.VerifiedByID = &actorID
	case domain.LoanStatusApproved:
		loan.ApprovedByID = &actorID
	case domain.LoanStatusRejected:
		rejectedByRole := string(role)
		loan.RejectedByID = &actorID
		loan.RejectedByRole = &rejectedByRole
		loan.RejectionReason = &reason
	}

	fromStatus := string(from)
	entry := &models.LoanTransition{
		FromStatus: &fromStatus,
		ToStatus:   loan.Status,
		ActorID:    actorID,
		ActorRole:  string(role),
		Reason:     reason,
		IPAddress:  ipAddress,
	}

	if err := s.loanRepo.UpdateStatus(ctx, loan, fromStatus, loan.Version, entry); err != nil {
		if errors.Is(err, repositories.ErrStaleRecord) {
			return nil, domain.ErrConcurrentUpdate
		}
		return nil, err
	}
	loan.UpdatedAt = time.Now()

	metrics.RecordLoanTransition(fromStatus, loan.Status)
	log.Info().
		Uint("loan_id", loan.ID).
		Str("from", fromStatus).
		Str("to", loan.Status).
		Uint("actor_id", actorID).
		Str("actor_role", string(role)).
		Msg("loan status changed")

	s.publish(ctx, loan, from, actor, reason)
	return loan, nil
}

// Delete removes a loan. Owners may delete their own loans, admins any loan.
func (s *LoanService) Delete(ctx context.Context, actor domain.Identity, id uint) error {
	loan, err := s.getLoan(ctx, id)
	if err != nil {
		return err
	}

	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleUser:
		if !loan.IsOwnedBy(actor.UserID) {
			return domain.ErrForbidden
		}
	default:
		return domain.ErrForbidden
	}

	if err := s.loanRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrLoanNotFound
		}
		return err
	}

	log.Info().Uint("loan_id", id).Uint("by", actor.UserID).Msg("loan deleted")
	return nil
}

func (s *LoanService) getLoan(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) publish(ctx context.Context, loan *models.Loan, from domain.LoanStatus, actor domain.Identity, reason string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ctx, domain.LoanEvent{
		LoanID:     loan.ID,
		UserID:     loan.UserID,
		Amount:     loan.Amount,
		From:       from,
		To:         loan.LoanStatus(),
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Reason:     reason,
		OccurredAt: time.Now(),
	})
}
