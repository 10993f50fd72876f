package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumenbank/lumen_bank/internal/account"
)

// RegisterAccountRoutes wires the authenticated user's account endpoints.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler) {
	r.Get("/account", h.Me)
	r.Patch("/account", h.Update)
	r.Get("/account/watch", h.Watch)
}
