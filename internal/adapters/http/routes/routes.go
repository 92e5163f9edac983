package routes

import (
	"time"

	"credit-app/internal/adapters/http/handlers"
	"credit-app/internal/adapters/http/middleware"
	"credit-app/internal/config"
	"credit-app/internal/core/domain"
	"credit-app/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services are the application services the routes are served by
type Services struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Loans     *services.LoanService
	Dashboard *services.DashboardService
}

// route declares one endpoint. nil roles means the route is public;
// otherwise the caller must be authenticated with one of the roles.
type route struct {
	method  string
	path    string
	roles   []domain.Role
	limited bool // behind the stricter auth rate limiter
	handler fiber.Handler
}

var (
	anyRole      = domain.AllRoles
	userOnly     = []domain.Role{domain.RoleUser}
	verifierOnly = []domain.Role{domain.RoleVerifier}
	adminOnly    = []domain.Role{domain.RoleAdmin}
	userOrAdmin  = []domain.Role{domain.RoleUser, domain.RoleAdmin}
)

// apiRoutes is the route table of /api. Static loan paths come before /loan/:id.
func apiRoutes(auth *handlers.AuthHandler, users *handlers.UserHandler, loans *handlers.LoanHandler, dashboard *handlers.DashboardHandler) []route {
	return []route{
		// Auth
		{method: fiber.MethodPost, path: "/signup", limited: true, handler: auth.Signup},
		{method: fiber.MethodPost, path: "/auth/signup", limited: true, handler: auth.Signup},
		{method: fiber.MethodPost, path: "/login", limited: true, handler: auth.Login},
		{method: fiber.MethodPost, path: "/auth/login", limited: true, handler: auth.Login},
		{method: fiber.MethodPost, path: "/logout", handler: auth.Logout},
		{method: fiber.MethodPost, path: "/auth/logout", handler: auth.Logout},
		{method: fiber.MethodGet, path: "/getMe", roles: anyRole, handler: auth.GetMe},
		{method: fiber.MethodPost, path: "/getMe", roles: anyRole, handler: auth.GetMe},

		// Dashboard
		{method: fiber.MethodGet, path: "/dashboard", roles: anyRole, handler: dashboard.GetDashboard},

		// Loans
		{method: fiber.MethodPost, path: "/loan/apply", roles: userOnly, handler: loans.Apply},
		{method: fiber.MethodGet, path: "/loan", roles: userOnly, handler: loans.ListOwn},
		{method: fiber.MethodGet, path: "/loan/verify", roles: verifierOnly, handler: loans.ListAll},
		{method: fiber.MethodPut, path: "/loan/verify/:id", roles: verifierOnly, handler: loans.SetVerifierStatus},
		{method: fiber.MethodGet, path: "/loan/admin", roles: adminOnly, handler: loans.ListAll},
		{method: fiber.MethodPut, path: "/loan/admin/:id", roles: adminOnly, handler: loans.SetAdminStatus},
		{method: fiber.MethodGet, path: "/loan/:id", roles: anyRole, handler: loans.Get},
		{method: fiber.MethodGet, path: "/loan/:id/history", roles: anyRole, handler: loans.History},
		{method: fiber.MethodDelete, path: "/loan/:id", roles: userOrAdmin, handler: loans.Delete},

		// Users (Admin only)
		{method: fiber.MethodGet, path: "/users", roles: adminOnly, handler: users.ListUsers},
		{method: fiber.MethodGet, path: "/users/:id", roles: adminOnly, handler: users.GetUser},
		{method: fiber.MethodPut, path: "/users/:id/role", roles: adminOnly, handler: users.SetRole},
		{method: fiber.MethodDelete, path: "/users/:id", roles: adminOnly, handler: users.DeleteUser},
	}
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, svc *Services, health *handlers.HealthHandler) {
	// Health check routes (no auth required)
	app.Get("/", health.Root)
	app.Get("/health", health.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", middleware.PublicCacheHeaders(time.Hour), swagger.HandlerDefault)

	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.Users)
	loanHandler := handlers.NewLoanHandler(svc.Loans)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	api := app.Group("/api", middleware.NoCacheHeaders())
	register(api, apiRoutes(authHandler, userHandler, loanHandler, dashboardHandler),
		middleware.AuthMiddleware(svc.Auth, cfg),
		middleware.AuthRateLimiter(cfg),
	)
}

// register mounts the table on router, deriving each route's middleware
// chain from its declaration
func register(router fiber.Router, table []route, authenticate, authLimiter fiber.Handler) {
	for _, r := range table {
		chain := make([]fiber.Handler, 0, 4)
		if r.limited {
			chain = append(chain, authLimiter)
		}
		if r.roles != nil {
			chain = append(chain, authenticate, middleware.RoleMiddleware(r.roles...))
		}
		chain = append(chain, r.handler)

		router.Add(r.method, r.path, chain...)
	}
}
