package ledger

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes transaction history endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a ledger handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// History lists the authenticated user's ledger entries, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)

	entries, err := h.service.History(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "history lookup failed")
	}

	body := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		body = append(body, entryBody(e))
	}
	return c.JSON(fiber.Map{"transactions": body})
}

// FrequentRecipients lists the user's most transferred-to recipients.
func (h *Handler) FrequentRecipients(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)

	recipients, err := h.service.FrequentRecipients(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "recipient lookup failed")
	}

	body := make([]fiber.Map, 0, len(recipients))
	for _, r := range recipients {
		body = append(body, fiber.Map{"number": r.Number, "name": r.Name})
	}
	return c.JSON(fiber.Map{"recipients": body})
}

func entryBody(e Entry) fiber.Map {
	body := fiber.Map{
		"id":          e.ID,
		"amount":      e.Amount,
		"description": e.Description,
		"type":        e.Type,
		"created_at":  e.CreatedAt,
	}
	if e.Recipient != "" {
		body["recipient"] = e.Recipient
	}
	if e.Sender != "" {
		body["sender"] = e.Sender
	}
	return body
}
