package handlers

import (
	"testing"

	"credit-app/internal/core/domain"
	"credit-app/internal/core/services"

	"github.com/stretchr/testify/assert"
)

func TestValidateStruct(t *testing.T) {
	err := validateStruct(&services.SignupInput{Name: "A", Email: "not-an-email", Password: "pw123456"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "name must be at least 2")
	assert.ErrorContains(t, err, "email must be a valid email")

	err = validateStruct(&services.ApplyLoanInput{Amount: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "amount")
	assert.ErrorContains(t, err, "reason is required")

	assert.NoError(t, validateStruct(&services.ApplyLoanInput{Amount: 10, Reason: "rent"}))
	assert.NoError(t, validateStruct(&SetRoleRequest{Role: "admin"}))
	assert.Error(t, validateStruct(&SetRoleRequest{Role: "root"}))
}
