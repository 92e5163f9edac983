package domain

import "strings"

// Role represents user role in the system
type Role string

const (
	RoleUser     Role = "USER"
	RoleVerifier Role = "VERIFIER"
	RoleAdmin    Role = "ADMIN"
)

// AllRoles lists every role a user can hold
var AllRoles = []Role{RoleUser, RoleVerifier, RoleAdmin}

// ParseRole normalizes and validates a role name
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// IsStaff reports whether the role reviews other users' loans
func (r Role) IsStaff() bool {
	return r == RoleVerifier || r == RoleAdmin
}

// LoanStatus is the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "PENDING"
	LoanStatusVerified LoanStatus = "VERIFIED"
	LoanStatusApproved LoanStatus = "APPROVED"
	LoanStatusRejected LoanStatus = "REJECTED"
)

// AllLoanStatuses lists every loan status in lifecycle order
var AllLoanStatuses = []LoanStatus{
	LoanStatusPending,
	LoanStatusVerified,
	LoanStatusApproved,
	LoanStatusRejected,
}

// ParseLoanStatus normalizes and validates a loan status
func ParseLoanStatus(s string) (LoanStatus, bool) {
	st := LoanStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllLoanStatuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// IsFinal reports whether no further transition is possible
func (s LoanStatus) IsFinal() bool {
	return s == LoanStatusApproved || s == LoanStatusRejected
}

// loanTransitions maps who may move a loan from which state to which states.
var loanTransitions = map[Role]map[LoanStatus][]LoanStatus{
	RoleVerifier: {
		LoanStatusPending: {LoanStatusVerified, LoanStatusRejected},
	},
	RoleAdmin: {
		LoanStatusVerified: {LoanStatusApproved, LoanStatusRejected},
	},
}

// CanTransition reports whether role may move a loan from one status to another
func CanTransition(role Role, from, to LoanStatus) bool {
	for _, next := range loanTransitions[role][from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourceStatus returns the only status from which role may act on a loan
func SourceStatus(role Role) (LoanStatus, bool) {
	for from := range loanTransitions[role] {
		return from, true
	}
	return "", false
}

// TargetStatuses returns the statuses role may move a loan to
func TargetStatuses(role Role) []LoanStatus {
	var out []LoanStatus
	for _, next := range loanTransitions[role] {
		out = append(out, next...)
	}
	return out
}

// Identity is the {id, role} pair carried by a session token
type Identity struct {
	UserID uint
	Role   Role
	Name   string
}
