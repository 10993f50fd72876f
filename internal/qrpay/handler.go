package qrpay

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/transfer"
)

// Handler exposes QR payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a QR payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type payRequest struct {
	Recipient   string          `json:"recipient"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Pay handles a decoded QR payload.
func (h *Handler) Pay(c *fiber.Ctx) error {
	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	res, err := h.service.Pay(c.UserContext(), uid, Payload{
		Recipient:   req.Recipient,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return transfer.AsHTTPError(err)
	}

	if res.Status == StatusConfirmationRequired {
		return c.Status(http.StatusAccepted).JSON(fiber.Map{
			"status":          res.Status,
			"confirmation_id": res.ConfirmationID,
			"risk":            res.Risk,
			"reason":          res.Reason,
		})
	}

	body := fiber.Map{
		"status":            res.Status,
		"payer_balance":     res.Transfer.PayerBalance,
		"recipient_balance": res.Transfer.RecipientBalance,
		"completed_at":      res.Transfer.CompletedAt,
	}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	return c.Status(http.StatusCreated).JSON(body)
}

// Confirm executes a parked payment.
func (h *Handler) Confirm(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	id := c.Params("confirmationId")

	res, err := h.service.Confirm(c.UserContext(), uid, id)
	if err != nil {
		if errors.Is(err, ErrPendingNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return transfer.AsHTTPError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status":            StatusCompleted,
		"payer_balance":     res.PayerBalance,
		"recipient_balance": res.RecipientBalance,
		"completed_at":      res.CompletedAt,
	})
}

// Cancel discards a parked payment.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	id := c.Params("confirmationId")

	if err := h.service.Cancel(c.UserContext(), uid, id); err != nil {
		if errors.Is(err, ErrPendingNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "cancelled"})
}
