package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/vultlabs/vult/internal/auth/http"
	"github.com/vultlabs/vult/internal/auth/service"
	"github.com/vultlabs/vult/internal/auth/store"
	"github.com/vultlabs/vult/internal/auth/store/drivers/sqlite"
	"github.com/vultlabs/vult/pkg/cryptox"
	"github.com/vultlabs/vult/pkg/jwtx"
	"github.com/vultlabs/vult/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	signer   *jwtx.HS256Signer
	verifier jwtx.Verifier

	tokenService        *service.TokenService
	authnService        *service.AuthnService
	authzService        *service.AuthzService
	userService         *service.UserService
	rolesService        *service.RolesService
	invitationService   *service.InvitationService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. The
// configuration is validated first; a missing or weak signing secret is
// fatal here, before anything else starts.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "vult-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSigning(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initSigning() error {
	secret := []byte(app.cfg.JWTSecret)

	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	verifier, err := jwtx.NewVerifierHS256(secret, app.cfg.Issuer, app.cfg.Audience)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	app.signer = signer
	app.verifier = verifier
	return nil
}

func (app *Application) initServices() error {
	hasher := cryptox.NewHasher(app.cfg.PBKDF2Iterations)

	app.tokenService = &service.TokenService{
		Signer:   app.signer,
		Verifier: app.verifier,
		Issuer:   app.cfg.Issuer,
		Audience: app.cfg.Audience,
		TTL:      app.cfg.TokenTTL,
	}

	authn, err := service.NewAuthnService(app.db, hasher, app.tokenService, app.cfg.MaxConcurrentHashes)
	if err != nil {
		return fmt.Errorf("failed to initialize authentication service: %w", err)
	}
	app.authnService = authn

	app.authzService = &service.AuthzService{Store: app.db}
	app.userService = &service.UserService{Store: app.db, Hasher: hasher}
	app.rolesService = &service.RolesService{Store: app.db}
	app.invitationService = &service.InvitationService{Store: app.db, Hasher: hasher}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.verifier, BuildVersion, app.db, app.logger)
	router.TokenService = app.tokenService
	router.AuthnService = app.authnService
	router.AuthzService = app.authzService
	router.UserService = app.userService
	router.RolesService = app.rolesService
	router.InvitationService = app.invitationService
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
