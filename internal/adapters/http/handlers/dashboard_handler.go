package handlers

import (
	"credit-app/internal/core/services"
	"credit-app/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns the dashboard of the caller's role
// @Summary Dashboard
// @Description Loan counts per status. Users see their own loans; verifiers and admins see all loans, admins also user counts per role.
// @Tags Dashboard
// @Produce json
// @Security CookieAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to get dashboard")
	}

	data, err := h.dashboardService.GetDashboard(c.UserContext(), identity)
	if err != nil {
		return response.FromError(c, err, "Failed to get dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
