package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumenbank/lumen_bank/internal/transfer"
)

// RegisterTransferRoutes wires direct transfer and withdrawal endpoints.
func RegisterTransferRoutes(r fiber.Router, h *transfer.Handler) {
	r.Post("/transfers", h.Create)
	r.Post("/transfers/withdrawal", h.Withdraw)
}
