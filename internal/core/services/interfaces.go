package services

import (
	"context"
	"time"

	"credit-app/internal/core/domain"
)

// Note: AuthService implementation is in auth_service.go
// Note: LoanService implementation is in loan_service.go

// SessionRevoker keeps track of session tokens invalidated before their expiry
type SessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, userID uint, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Notifier receives loan events after they are committed
type Notifier interface {
	Notify(ctx context.Context, event domain.LoanEvent) error
}
