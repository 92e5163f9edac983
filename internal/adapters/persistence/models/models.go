package models

import (
	"time"

	"credit-app/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Users & sessions
// ============================================================

// User represents users table
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:20;not null;default:'USER';index" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Identity returns the session identity of the user
func (u *User) Identity() domain.Identity {
	return domain.Identity{UserID: u.ID, Role: domain.Role(u.Role), Name: u.Name}
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RevokedSession represents revoked_sessions table.
// A row lives until the revoked token would have expired anyway.
type RevokedSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenID   string    `gorm:"size:64;not null;uniqueIndex" json:"tokenId"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (RevokedSession) TableName() string {
	return "revoked_sessions"
}

func (rs *RevokedSession) IsExpired() bool {
	return time.Now().After(rs.ExpiresAt)
}

// ============================================================
// Loans
// ============================================================

// Loan represents loans table
type Loan struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	UserID            uint    `gorm:"not null;index" json:"userId"`
	CustomerName      string  `gorm:"size:100;not null" json:"customerName"`
	Amount            float64 `gorm:"type:decimal(15,2);not null" json:"amount"`
	Reason            string  `gorm:"type:text;not null" json:"reason"`
	TenureMonths      *int    `json:"loanTenure,omitempty"`
	EmploymentStatus  string  `gorm:"size:30" json:"employmentStatus,omitempty"`
	EmploymentAddress string  `gorm:"size:255" json:"employmentAddress,omitempty"`
	Status            string  `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Version           int     `gorm:"not null;default:1" json:"version"`

	VerifiedByID    *uint   `json:"verifiedById,omitempty"`
	ApprovedByID    *uint   `json:"approvedById,omitempty"`
	RejectedByID    *uint   `json:"rejectedById,omitempty"`
	RejectedByRole  *string `gorm:"size:20" json:"rejectedByRole,omitempty"`
	RejectionReason *string `gorm:"type:text" json:"rejectionReason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Loan) TableName() string {
	return "loans"
}

// LoanStatus returns the typed status
func (l *Loan) LoanStatus() domain.LoanStatus {
	return domain.LoanStatus(l.Status)
}

// IsOwnedBy reports whether userID submitted the loan
func (l *Loan) IsOwnedBy(userID uint) bool {
	return l.UserID == userID
}

// LoanTransition represents loan_transitions table (status history)
type LoanTransition struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LoanID     uint      `gorm:"not null;index" json:"loanId"`
	FromStatus *string   `gorm:"size:20" json:"fromStatus"`
	ToStatus   string    `gorm:"size:20;not null" json:"toStatus"`
	ActorID    uint      `gorm:"not null" json:"actorId"`
	ActorRole  string    `gorm:"size:20;not null" json:"actorRole"`
	Reason     string    `gorm:"type:text" json:"reason,omitempty"`
	IPAddress  string    `gorm:"size:45" json:"ipAddress,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Loan *Loan `gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE" json:"-"`
}

func (LoanTransition) TableName() string {
	return "loan_transitions"
}

// LoanSummary aggregates loans per status; it is not a table
type LoanSummary struct {
	Counts         map[string]int64 `json:"counts"`
	Total          int64            `json:"total"`
	TotalAmount    float64          `json:"totalAmount"`
	ApprovedAmount float64          `json:"approvedAmount"`
}

// AutoMigrate creates or updates every table owned by the service
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RevokedSession{},
		&Loan{},
		&LoanTransition{},
	)
}
