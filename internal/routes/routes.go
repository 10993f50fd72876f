package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lumenbank/lumen_bank/internal/account"
	"github.com/lumenbank/lumen_bank/internal/auth"
	"github.com/lumenbank/lumen_bank/internal/config"
	"github.com/lumenbank/lumen_bank/internal/events"
	"github.com/lumenbank/lumen_bank/internal/identity"
	"github.com/lumenbank/lumen_bank/internal/ledger"
	"github.com/lumenbank/lumen_bank/internal/middleware"
	"github.com/lumenbank/lumen_bank/internal/notification"
	"github.com/lumenbank/lumen_bank/internal/qrpay"
	"github.com/lumenbank/lumen_bank/internal/risk"
	"github.com/lumenbank/lumen_bank/internal/transfer"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Events events.Publisher
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// main already refuses to start without backends outside dev; this is the
	// second line of defense for embedders that call Setup directly.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Repositories: Postgres when a pool is present, in-memory otherwise.
	var (
		accountRepo  account.Repository
		ledgerRepo   ledger.Repository
		noteRepo     notification.Repository
		identityRepo identity.Repository
	)
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
		ledgerRepo = ledger.NewPostgresRepository(d.DB)
		noteRepo = notification.NewPostgresRepository(d.DB)
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		accountRepo = account.NewMemoryRepository()
		ledgerRepo = ledger.NewMemoryRepository()
		noteRepo = notification.NewMemoryRepository()
		identityRepo = identity.NewMemoryRepository()
	}

	var feed account.ChangeFeed
	if d.Cache != nil {
		feed = account.NewRedisChangeFeed(d.Cache)
	} else {
		feed = account.NewMemoryChangeFeed()
	}

	publisher := d.Events
	if publisher == nil {
		publisher = events.NewLogPublisher(d.Logger)
	}

	var engine transfer.Engine
	if d.DB != nil {
		engine = transfer.NewPostgresEngine(d.DB, feed, publisher, d.Logger)
	} else {
		engine = transfer.NewInMemoryEngine(accountRepo, ledgerRepo, noteRepo, feed, publisher, d.Logger)
	}

	var assessor risk.Assessor
	if d.Cfg.RiskAPIURL != "" {
		assessor = risk.NewModelClient(d.Cfg.RiskAPIURL, d.Cfg.RiskAPIKey)
	}
	gate := risk.NewGate(assessor, d.Cfg.RiskTimeout, d.Logger)

	var pending qrpay.PendingStore
	if d.Cache != nil {
		pending = qrpay.NewRedisPendingStore(d.Cache)
	} else {
		pending = qrpay.NewMemoryPendingStore()
	}

	accountSvc := account.NewService(accountRepo, feed, d.Cfg.SignupBalance, d.Logger)
	ledgerSvc := ledger.NewService(ledgerRepo, accountRepo)
	noteSvc := notification.NewService(noteRepo, accountRepo)
	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	qrSvc := qrpay.NewService(engine, gate, ledgerSvc, pending, d.Cfg.PendingTTL)

	accountHandler := account.NewHandler(accountSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc)
	noteHandler := notification.NewHandler(noteSvc)
	authHandler := auth.NewHandler(identitySvc, authSvc)
	transferHandler := transfer.NewHandler(engine)
	qrHandler := qrpay.NewHandler(qrSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes.
	RegisterIdentityRoutes(api, identitySvc, accountSvc, authSvc, d.Logger)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	protected := api.Group("", middleware.JWTAuth(d.Cfg, identityRepo))
	RegisterAuthRoutes(api, protected, authHandler, rateLimiter)

	// Protected routes. Unsafe methods behind auth require an Idempotency-Key
	// so retried transfers never double-spend.
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterAccountRoutes(protected, accountHandler)
	RegisterTransactionRoutes(protected, ledgerHandler)
	RegisterNotificationRoutes(protected, noteHandler)
	RegisterTransferRoutes(protected, transferHandler)
	RegisterQRPaymentRoutes(protected, qrHandler)

	return nil
}
