package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lumenbank/lumen_bank/internal/qrpay"
)

// RegisterQRPaymentRoutes wires QR payment endpoints, including the
// confirm/cancel pair for payments parked by the risk gate.
func RegisterQRPaymentRoutes(r fiber.Router, h *qrpay.Handler) {
	r.Post("/payments/qr", h.Pay)
	r.Post("/payments/qr/:confirmationId/confirm", h.Confirm)
	r.Post("/payments/qr/:confirmationId/cancel", h.Cancel)
}
