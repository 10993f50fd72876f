package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumenbank/lumen_bank/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints. Login and refresh are
// public; logout needs a valid access token since it bumps the caller's
// token version.
func RegisterAuthRoutes(public fiber.Router, protected fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := public.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
	protected.Post("/auth/logout", h.Logout)
}
