package account

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// watchTimeout bounds a single long-poll cycle. Clients reconnect when it
// elapses without a change.
const watchTimeout = 25 * time.Second

// Handler exposes account endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an account handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Me returns the authenticated user's account, provisioning number and
// balance if they are missing.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)

	acct, err := h.service.Get(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "account lookup failed")
	}
	return c.JSON(accountBody(acct))
}

type updateRequest struct {
	HolderName *string `json:"holder_name"`
	Prefs      *Prefs  `json:"prefs"`
}

// Update patches holder name and/or notification preferences.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.HolderName == nil && req.Prefs == nil {
		return fiber.NewError(http.StatusBadRequest, "nothing to update")
	}
	uid, _ := c.Locals("user_id").(string)

	if req.HolderName != nil {
		if err := h.service.UpdateName(c.UserContext(), uid, *req.HolderName); err != nil {
			return asHTTPError(err)
		}
	}
	if req.Prefs != nil {
		if err := h.service.UpdatePrefs(c.UserContext(), uid, *req.Prefs); err != nil {
			return asHTTPError(err)
		}
	}

	acct, err := h.service.Get(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "account lookup failed")
	}
	return c.JSON(accountBody(acct))
}

// Watch long-polls for the next account change. The first value on the feed
// is the current snapshot; if a change lands before the poll window closes
// the updated account is returned with changed=true, otherwise the snapshot
// comes back with changed=false and the client re-polls.
func (h *Handler) Watch(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)

	ctx, cancel := context.WithTimeout(c.UserContext(), watchTimeout)
	defer cancel()

	updates, err := h.service.Watch(ctx, uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "watch failed")
	}

	snapshot, ok := <-updates
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "watch failed")
	}

	select {
	case changed, ok := <-updates:
		if !ok {
			break
		}
		body := accountBody(changed)
		body["changed"] = true
		return c.JSON(body)
	case <-ctx.Done():
	}

	body := accountBody(snapshot)
	body["changed"] = false
	return c.JSON(body)
}

func accountBody(acct Account) fiber.Map {
	return fiber.Map{
		"id":          acct.ID,
		"holder_name": acct.HolderName,
		"number":      acct.Number,
		"balance":     acct.Balance,
		"prefs": fiber.Map{
			"deposits": acct.Prefs.Deposits,
			"alerts":   acct.Prefs.Alerts,
			"info":     acct.Prefs.Info,
		},
		"created_at": acct.CreatedAt,
	}
}

func asHTTPError(err error) *fiber.Error {
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return fiber.NewError(http.StatusInternalServerError, err.Error())
}
