package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"credit-app/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(ExtractToken(c, "token"))
	})

	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"cookie", "from-cookie", "", "from-cookie"},
		{"cookie wins over header", "from-cookie", "Bearer from-header", "from-cookie"},
		{"bearer header", "", "Bearer from-header", "from-header"},
		{"other scheme ignored", "", "Basic abc", ""},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.Header.Set("Cookie", "token="+tt.cookie)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	withIdentity := func(role domain.Role) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals(identityKey, domain.Identity{UserID: 1, Role: role})
			return c.Next()
		}
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	app := fiber.New()
	app.Get("/anonymous", RoleMiddleware(domain.RoleAdmin), ok)
	app.Get("/user", withIdentity(domain.RoleUser), RoleMiddleware(domain.RoleAdmin), ok)
	app.Get("/admin", withIdentity(domain.RoleAdmin), RoleMiddleware(domain.RoleVerifier, domain.RoleAdmin), ok)

	for path, want := range map[string]int{
		"/anonymous": fiber.StatusUnauthorized,
		"/user":      fiber.StatusForbidden,
		"/admin":     fiber.StatusOK,
	} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestCustomErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/domain", func(c *fiber.Ctx) error { return domain.ErrLoanNotFound })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db exploded") })

	for path, want := range map[string]int{
		"/teapot":  fiber.StatusTeapot,
		"/domain":  fiber.StatusNotFound,
		"/boom":    fiber.StatusInternalServerError,
		"/missing": fiber.StatusNotFound,
	} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestNoCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/", NoCacheHeaders(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-store, no-cache, must-revalidate", resp.Header.Get("Cache-Control"))
}

func TestMetrics_ScrapeSurvivesMixedMethods(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Put("/items/:id", ok)
	app.Delete("/items/:id", ok)
	app.Get("/items/:id", ok)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	for _, method := range []string{fiber.MethodPut, fiber.MethodDelete, fiber.MethodGet, fiber.MethodPut, fiber.MethodGet} {
		resp, err := app.Test(httptest.NewRequest(method, "/items/7", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
		assert.Contains(t, string(body), `method="PUT",route="/items/:id"`)
	}
}
