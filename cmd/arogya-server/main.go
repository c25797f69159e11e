package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/TheSujay/Arogya-Backend/internal/config"
	"github.com/TheSujay/Arogya-Backend/internal/domain/booking"
	"github.com/TheSujay/Arogya-Backend/internal/domain/content"
	"github.com/TheSujay/Arogya-Backend/internal/domain/identity"
	"github.com/TheSujay/Arogya-Backend/internal/domain/messaging"
	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
	"github.com/TheSujay/Arogya-Backend/internal/platform/db"
	"github.com/TheSujay/Arogya-Backend/internal/platform/middleware"
	"github.com/TheSujay/Arogya-Backend/internal/platform/notification"
	"github.com/TheSujay/Arogya-Backend/internal/platform/payment"
	"github.com/TheSujay/Arogya-Backend/internal/platform/presence"
	"github.com/TheSujay/Arogya-Backend/internal/platform/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "arogya-server",
		Short: "Arogya hospital appointment platform API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Auth
	secret := cfg.JWTSecret
	tokens := auth.NewTokenIssuer(secret, 7*24*time.Hour)

	// Email
	var sender notification.EmailSender = notification.NoopSender{}
	if cfg.SMTPHost != "" {
		sender = notification.NewSMTPSender(notification.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
		logger.Info().Str("host", cfg.SMTPHost).Msg("SMTP sender configured")
	} else {
		logger.Warn().Msg("no SMTP host configured, email disabled")
	}
	mailer := notification.NewMailer(sender, notification.NewTemplateEngine())

	// Payments
	var gateway payment.Gateway
	if cfg.PaymentKeyID != "" {
		gateway = payment.NewRESTGateway(cfg.PaymentBaseURL, cfg.PaymentKeyID, cfg.PaymentKeySecret)
		logger.Info().Msg("payment gateway configured")
	} else {
		gateway = payment.NewMockGateway()
		logger.Warn().Msg("no payment credentials, using in-memory gateway")
	}

	// Presence: Redis when configured, in-memory otherwise.
	var registry presence.Registry
	if cfg.RedisURL != "" {
		registry, err = presence.NewRedisRegistry(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		logger.Info().Msg("redis presence registry configured")
	} else {
		registry = presence.NewMemoryRegistry()
		logger.Warn().Msg("no REDIS_URL, presence is per-node only")
	}

	// Domain services
	identityRepo := identity.NewPatientRepoPG(pool)
	doctorRepo := identity.NewDoctorRepoPG(pool)
	identitySvc := identity.NewService(identityRepo, doctorRepo, tokens, mailer, logger)

	bookingSvc := booking.NewService(
		booking.NewAppointmentRepoPG(pool),
		booking.NewSlotCalendarPG(pool),
		identityRepo,
		doctorRepo,
		gateway,
		mailer,
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		cfg.Currency,
		logger,
	)

	hub := ws.NewHub(registry, logger)
	messagingSvc := messaging.NewService(
		messaging.NewMessageRepoPG(pool),
		messaging.NewPartnerSourcePG(pool),
		hub,
		registry,
		logger,
	)

	contentSvc := content.NewService(
		content.NewBlogRepoPG(pool),
		content.NewTestimonialRepoPG(pool),
		content.NewBannerRepoPG(pool),
		content.NewReelRepoPG(pool),
	)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// API groups: public endpoints carry rate limiting, authed ones carry the
	// token middleware on top.
	api := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	var authed *echo.Group
	if cfg.IsDev() && cfg.JWTSecret == "" {
		authed = api.Group("", auth.DevAuthMiddleware(tokens))
	} else {
		authed = api.Group("", auth.Middleware(tokens))
	}

	// Routes
	identity.NewHandler(identitySvc).RegisterRoutes(api, authed)
	booking.NewHandler(bookingSvc).RegisterRoutes(api, authed)
	messaging.NewHandler(messagingSvc).RegisterRoutes(authed)
	content.NewHandler(contentSvc).RegisterRoutes(api, authed)
	ws.NewHandler(hub, messagingSvc).RegisterRoutes(authed)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// httpErrorHandler renders every error as {"success": false, "message": ...}
// so clients get one envelope shape across the API.
func httpErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			message = fmt.Sprintf("%v", he.Message)
		} else {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		}

		resp := map[string]interface{}{"success": false, "message": message}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if err := c.JSON(code, resp); err != nil {
			logger.Error().Err(err).Msg("failed to write error response")
		}
	}
}
