package services

import (
	"context"

	"credit-app/internal/adapters/persistence/models"
	"credit-app/internal/adapters/persistence/repositories"
	"credit-app/internal/core/domain"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	loanRepo repositories.LoanRepository
	userRepo repositories.UserRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(loanRepo repositories.LoanRepository, userRepo repositories.UserRepository) *DashboardService {
	return &DashboardService{loanRepo: loanRepo, userRepo: userRepo}
}

// DashboardData represents the dashboard of one role
type DashboardData struct {
	Role  string              `json:"role"`
	Loans *models.LoanSummary `json:"loans"`

	// AwaitingDecision counts loans in the status this role acts on
	AwaitingDecision int64 `json:"awaitingDecision"`

	// Admin only
	Users map[string]int64 `json:"users,omitempty"`
}

// GetDashboard returns the dashboard for actor's role.
// Users see their own loans; verifiers and admins see every loan.
func (s *DashboardService) GetDashboard(ctx context.Context, actor domain.Identity) (*DashboardData, error) {
	filter := repositories.LoanFilter{}
	if !actor.Role.IsStaff() {
		userID := actor.UserID
		filter.UserID = &userID
	}

	summary, err := s.loanRepo.Summarize(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{Role: string(actor.Role), Loans: summary}

	if from, ok := domain.SourceStatus(actor.Role); ok {
		data.AwaitingDecision = summary.Counts[string(from)]
	}

	switch actor.Role {
	case domain.RoleVerifier:
		// verifiers triage; approved totals are an admin concern
		summary.ApprovedAmount = 0
	case domain.RoleAdmin:
		users, err := s.userRepo.CountByRole(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range domain.AllRoles {
			if _, ok := users[string(r)]; !ok {
				users[string(r)] = 0
			}
		}
		data.Users = users
	}

	return data, nil
}
