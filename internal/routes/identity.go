package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lumenbank/lumen_bank/internal/account"
	"github.com/lumenbank/lumen_bank/internal/auth"
	"github.com/lumenbank/lumen_bank/internal/identity"
)

// RegisterIdentityRoutes wires signup. Registration provisions the user's
// account with a fresh number and the signup balance, and issues tokens so
// the app can proceed straight to the home screen.
func RegisterIdentityRoutes(r fiber.Router, ids *identity.Service, accounts *account.Service, tokens *auth.Service, logger *slog.Logger) {
	r.Post("/identity/register", func(c *fiber.Ctx) error {
		var req struct {
			Email       string `json:"email"`
			Password    string `json:"password"`
			DisplayName string `json:"display_name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		user, err := ids.Register(c.UserContext(), identity.Credentials{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.DisplayName,
		})
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		acct, err := accounts.Provision(c.UserContext(), user.ID, user.DisplayName)
		if err != nil {
			logger.Error("account provisioning failed after signup",
				slog.String("user_id", user.ID), slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, "account provisioning failed")
		}

		pair, err := tokens.Login(user)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "token issuance failed")
		}

		logger.Info("identity.register completed",
			slog.String("user_id", user.ID),
			slog.String("account_number", acct.Number),
		)
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"user_id":        user.ID,
			"email":          user.Email,
			"display_name":   user.DisplayName,
			"account_number": acct.Number,
			"balance":        acct.Balance,
			"tokens":         pair,
		})
	})
}
