package handlers

import (
	"context"

	"credit-app/internal/adapters/persistence/models"
	"credit-app/internal/core/domain"
	"credit-app/internal/core/services"
	"credit-app/internal/pkg/pagination"
	"credit-app/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan application endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// Apply handles a new loan application (User only)
// @Summary Apply for a loan
// @Description Submit a loan application. It starts PENDING and belongs to the caller.
// @Tags Loans
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body services.ApplyLoanInput true "Loan application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loan/apply [post]
func (h *LoanHandler) Apply(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to apply for loan")
	}

	var req services.ApplyLoanInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err, "Failed to apply for loan")
	}

	loan, err := h.loanService.Apply(c.UserContext(), identity, &req, c.IP())
	if err != nil {
		return response.FromError(c, err, "Failed to apply for loan")
	}

	return response.Created(c, "Loan application submitted", fiber.Map{
		"loan": loan,
	})
}

// ListOwn handles listing the caller's loans (User only)
// @Summary My loans
// @Description List the caller's own loans, newest first
// @Tags Loans
// @Produce json
// @Security CookieAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /loan [get]
func (h *LoanHandler) ListOwn(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to list loans")
	}

	result, err := h.loanService.ListOwn(c.UserContext(), identity, pagination.GetParams(c))
	if err != nil {
		return response.FromError(c, err, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", result)
}

// ListAll handles listing every loan (Verifier and Admin)
// @Summary All loans
// @Description List every loan, optionally filtered by status
// @Tags Loans
// @Produce json
// @Security CookieAuth
// @Param status query string false "PENDING, VERIFIED, APPROVED or REJECTED"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loan/verify [get]
// @Router /loan/admin [get]
func (h *LoanHandler) ListAll(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to list loans")
	}

	input := &services.ListLoansInput{
		Status: c.Query("status"),
		Params: pagination.GetParams(c),
	}

	result, err := h.loanService.ListAll(c.UserContext(), identity, input)
	if err != nil {
		return response.FromError(c, err, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", result)
}

// Get handles getting one loan
// @Summary Get loan
// @Description Get a loan. Users may only read their own loans.
// @Tags Loans
// @Produce json
// @Security CookieAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loan/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to get loan")
	}

	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err, "Failed to get loan")
	}

	loan, err := h.loanService.Get(c.UserContext(), identity, id)
	if err != nil {
		return response.FromError(c, err, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", fiber.Map{
		"loan": loan,
	})
}

// History handles listing the status changes of one loan
// @Summary Loan history
// @Description List every status change of a loan, oldest first
// @Tags Loans
// @Produce json
// @Security CookieAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loan/{id}/history [get]
func (h *LoanHandler) History(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to get loan history")
	}

	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err, "Failed to get loan history")
	}

	history, err := h.loanService.History(c.UserContext(), identity, id)
	if err != nil {
		return response.FromError(c, err, "Failed to get loan history")
	}

	return response.Success(c, "Loan history retrieved successfully", fiber.Map{
		"history": history,
	})
}

// SetVerifierStatus handles the verifier decision on a pending loan (Verifier only)
// @Summary Verify or reject a loan
// @Description Move a PENDING loan to VERIFIED or REJECTED. Rejection requires a reason.
// @Tags Loans
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path int true "Loan ID"
// @Param body body services.UpdateStatusInput true "Decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loan/verify/{id} [put]
func (h *LoanHandler) SetVerifierStatus(c *fiber.Ctx) error {
	return h.decide(c, h.loanService.SetVerifierStatus)
}

// SetAdminStatus handles the admin decision on a verified loan (Admin only)
// @Summary Approve or reject a loan
// @Description Move a VERIFIED loan to APPROVED or REJECTED. Rejection requires a reason.
// @Tags Loans
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path int true "Loan ID"
// @Param body body services.UpdateStatusInput true "Decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loan/admin/{id} [put]
func (h *LoanHandler) SetAdminStatus(c *fiber.Ctx) error {
	return h.decide(c, h.loanService.SetAdminStatus)
}

type decisionFunc func(ctx context.Context, actor domain.Identity, id uint, input *services.UpdateStatusInput, ipAddress string) (*models.Loan, error)

func (h *LoanHandler) decide(c *fiber.Ctx, decide decisionFunc) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to update loan")
	}

	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err, "Failed to update loan")
	}

	var req services.UpdateStatusInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err, "Failed to update loan")
	}

	loan, err := decide(c.UserContext(), identity, id, &req, c.IP())
	if err != nil {
		return response.FromError(c, err, "Failed to update loan")
	}

	return response.Success(c, "Loan status updated successfully", fiber.Map{
		"loan": loan,
	})
}

// Delete handles deleting a loan (owner or Admin)
// @Summary Delete loan
// @Description Delete a loan. Users may only delete their own loans; admins may delete any.
// @Tags Loans
// @Produce json
// @Security CookieAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loan/{id} [delete]
func (h *LoanHandler) Delete(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to delete loan")
	}

	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err, "Failed to delete loan")
	}

	if err := h.loanService.Delete(c.UserContext(), identity, id); err != nil {
		return response.FromError(c, err, "Failed to delete loan")
	}

	return response.Success(c, "Loan deleted successfully", nil)
}
