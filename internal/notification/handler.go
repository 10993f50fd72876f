package notification

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes notification endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns the user's most recent notifications, newest first.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)

	notes, err := h.service.List(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "notification lookup failed")
	}

	body := make([]fiber.Map, 0, len(notes))
	for _, n := range notes {
		body = append(body, fiber.Map{
			"id":         n.ID,
			"message":    n.Message,
			"type":       n.Type,
			"is_read":    n.IsRead,
			"created_at": n.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"notifications": body})
}

// MarkAllRead marks every notification that was unread at call time.
func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)

	if err := h.service.MarkAllRead(c.UserContext(), uid); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "mark read failed")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

type announceRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Announce delivers an informational notice to a user, honoring their prefs.
func (h *Handler) Announce(c *fiber.Ctx) error {
	var req announceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == "" || req.Message == "" {
		return fiber.NewError(http.StatusBadRequest, "user_id and message are required")
	}

	err := h.service.Announce(c.UserContext(), req.UserID, req.Message)
	switch {
	case err == nil:
		return c.Status(http.StatusCreated).JSON(fiber.Map{"status": "delivered"})
	case errors.Is(err, ErrSuppressed):
		return c.JSON(fiber.Map{"status": "suppressed"})
	default:
		return fiber.NewError(http.StatusInternalServerError, "announce failed")
	}
}
