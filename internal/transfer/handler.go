package transfer

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/lumen_bank/internal/store"
)

// Handler exposes transfer endpoints.
type Handler struct {
	engine Engine
}

// NewHandler constructs a transfer handler.
func NewHandler(engine Engine) *Handler {
	return &Handler{engine: engine}
}

type transferRequest struct {
	Recipient   string          `json:"recipient"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type withdrawRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Create executes a direct account-number transfer. Direct transfers do not
// pass the risk gate; only QR-initiated payments do.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	res, err := h.engine.Transfer(c.UserContext(), uid, Request{
		Recipient:   req.Recipient,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return AsHTTPError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"payer_balance":     res.PayerBalance,
		"recipient_balance": res.RecipientBalance,
		"completed_at":      res.CompletedAt,
	})
}

// Withdraw executes a single-account debit.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	res, err := h.engine.Withdraw(c.UserContext(), uid, WithdrawRequest{
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return AsHTTPError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"balance":      res.Balance,
		"completed_at": res.CompletedAt,
	})
}

// AsHTTPError maps engine errors onto HTTP responses. Validation and state
// errors carry their message verbatim so the UI can show it; infrastructure
// failures stay generic.
func AsHTTPError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidRecipient),
		errors.Is(err, ErrSelfPayment):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrRecipientNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrTxConflict):
		return fiber.NewError(http.StatusServiceUnavailable, "transfer conflicted with concurrent activity, try again")
	default:
		return fiber.NewError(http.StatusInternalServerError, "transfer failed")
	}
}
