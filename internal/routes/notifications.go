package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumenbank/lumen_bank/internal/notification"
)

// RegisterNotificationRoutes wires notification endpoints.
func RegisterNotificationRoutes(r fiber.Router, h *notification.Handler) {
	r.Get("/notifications", h.List)
	r.Post("/notifications/read", h.MarkAllRead)
	r.Post("/notifications/announce", h.Announce)
}
