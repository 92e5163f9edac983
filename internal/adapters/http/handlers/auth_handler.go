package handlers

import (
	"time"

	"credit-app/internal/adapters/http/middleware"
	"credit-app/internal/config"
	"credit-app/internal/core/services"
	"credit-app/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// Signup handles user registration
// @Summary Sign up
// @Description Create an account and open a session. The session token is set as an httpOnly cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.SignupInput true "Account data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err, "Failed to sign up")
	}

	session, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err, "Failed to sign up")
	}

	h.setSessionCookie(c, session)
	return response.Created(c, "User registered successfully", sessionData(session))
}

// Login handles user login
// @Summary Log in
// @Description Authenticate with email and password. The session token is set as an httpOnly cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err, "Failed to login")
	}

	session, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err, "Failed to login")
	}

	h.setSessionCookie(c, session)
	return response.Success(c, "Login successful", sessionData(session))
}

// Logout handles user logout
// @Summary Log out
// @Description Revoke the current session token, if any, and clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := middleware.ExtractToken(c, h.cfg.Cookie.Name)
	h.clearSessionCookie(c)

	if err := h.authService.Logout(c.UserContext(), token); err != nil {
		return response.FromError(c, err, "Failed to logout")
	}

	return response.Success(c, "Logged out successfully", nil)
}

// GetMe returns the current user
// @Summary Current user
// @Description Get the authenticated user's profile
// @Tags Auth
// @Produce json
// @Security CookieAuth
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /getMe [get]
// @Router /getMe [post]
func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return response.FromError(c, err, "Failed to get user")
	}

	user, err := h.authService.Me(c.UserContext(), identity)
	if err != nil {
		return response.FromError(c, err, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user,
	})
}

func sessionData(session *services.Session) fiber.Map {
	return fiber.Map{
		"user":      session.User,
		"expiresAt": session.ExpiresAt,
	}
}

// setSessionCookie sets the session token cookie
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, session *services.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Cookie.Name,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(h.cfg.JWT.SessionTTL().Seconds()),
		Expires:  session.ExpiresAt,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearSessionCookie expires the session token cookie
func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
