package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumenbank/lumen_bank/internal/ledger"
)

// RegisterTransactionRoutes wires history and frequent-recipient endpoints.
func RegisterTransactionRoutes(r fiber.Router, h *ledger.Handler) {
	r.Get("/transactions", h.History)
	r.Get("/recipients/frequent", h.FrequentRecipients)
}
