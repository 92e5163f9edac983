package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler handles health check endpoints
type HealthHandler struct {
	appMode string
	checks  map[string]HealthCheck
}

// NewHealthHandler creates a new health handler probing checks by name
func NewHealthHandler(appMode string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{appMode: appMode, checks: checks}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "Credit App API is running",
		"mode":    h.appMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API, database and cache health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status := "ok"
	code := fiber.StatusOK
	checks := fiber.Map{"api": "healthy"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			checks[name] = "unhealthy"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": checks,
	})
}
