package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		role     Role
		from, to LoanStatus
		want     bool
	}{
		{RoleVerifier, LoanStatusPending, LoanStatusVerified, true},
		{RoleVerifier, LoanStatusPending, LoanStatusRejected, true},
		{RoleVerifier, LoanStatusPending, LoanStatusApproved, false},
		{RoleVerifier, LoanStatusVerified, LoanStatusApproved, false},
		{RoleVerifier, LoanStatusVerified, LoanStatusRejected, false},
		{RoleAdmin, LoanStatusVerified, LoanStatusApproved, true},
		{RoleAdmin, LoanStatusVerified, LoanStatusRejected, true},
		{RoleAdmin, LoanStatusPending, LoanStatusVerified, false},
		{RoleAdmin, LoanStatusPending, LoanStatusApproved, false},
		{RoleAdmin, LoanStatusApproved, LoanStatusRejected, false},
		{RoleUser, LoanStatusPending, LoanStatusVerified, false},
		{RoleUser, LoanStatusPending, LoanStatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"_"+string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.role, tt.from, tt.to))
		})
	}
}

func TestSourceStatus(t *testing.T) {
	from, ok := SourceStatus(RoleVerifier)
	assert.True(t, ok)
	assert.Equal(t, LoanStatusPending, from)

	from, ok = SourceStatus(RoleAdmin)
	assert.True(t, ok)
	assert.Equal(t, LoanStatusVerified, from)

	_, ok = SourceStatus(RoleUser)
	assert.False(t, ok)
}

func TestTargetStatuses(t *testing.T) {
	assert.ElementsMatch(t, []LoanStatus{LoanStatusVerified, LoanStatusRejected}, TargetStatuses(RoleVerifier))
	assert.ElementsMatch(t, []LoanStatus{LoanStatusApproved, LoanStatusRejected}, TargetStatuses(RoleAdmin))
	assert.Empty(t, TargetStatuses(RoleUser))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" verifier ")
	assert.True(t, ok)
	assert.Equal(t, RoleVerifier, r)

	_, ok = ParseRole("OFFICER")
	assert.False(t, ok)
}

func TestParseLoanStatus(t *testing.T) {
	s, ok := ParseLoanStatus("approved")
	assert.True(t, ok)
	assert.Equal(t, LoanStatusApproved, s)
	assert.True(t, s.IsFinal())

	_, ok = ParseLoanStatus("DONE")
	assert.False(t, ok)
}
