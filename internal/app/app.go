package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/oauth2gate/authd/internal/oauth/http"
	"github.com/oauth2gate/authd/internal/oauth/service"
	"github.com/oauth2gate/authd/internal/oauth/store"
	"github.com/oauth2gate/authd/internal/oauth/store/drivers/sqlite"
	"github.com/oauth2gate/authd/pkg/cryptox"
	"github.com/oauth2gate/authd/pkg/idx"
	"github.com/oauth2gate/authd/pkg/jwtx"
	"github.com/oauth2gate/authd/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application wires configuration, storage, services, and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	authorizeService *service.AuthorizeService
	tokenService     *service.TokenService

	server *http.Server
	router *httpapi.Router
}

// New constructs an Application from cfg, opening the store, applying
// migrations, and wiring every service and the HTTP router.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, verifier, err := app.initSigning()
	if err != nil {
		return nil, fmt.Errorf("initialize signing keys: %w", err)
	}

	authenticator, err := newStaticUserAuthenticator()
	if err != nil {
		return nil, fmt.Errorf("initialize user authenticator: %w", err)
	}

	if err := app.initServices(signer, verifier, authenticator); err != nil {
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("apply migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initSigning() (jwtx.Signer, jwtx.Verifier, error) {
	keyMaterial := []byte(app.cfg.JWTKey)
	if len(keyMaterial) == 0 {
		generated, err := jwtx.GenerateKeyMaterial(app.cfg.JWTAlgorithm, app.cfg.RSABits)
		if err != nil {
			return nil, nil, err
		}
		keyMaterial = generated
		app.logger.Warn("no OAUTH_JWT_KEY configured, generated an ephemeral signing key")
	}

	signer, err := jwtx.NewSigner(app.cfg.JWTAlgorithm, keyMaterial)
	if err != nil {
		return nil, nil, err
	}
	verifier, err := jwtx.NewVerifier(app.cfg.JWTAlgorithm, keyMaterial)
	if err != nil {
		return nil, nil, err
	}
	return signer, verifier, nil
}

func (app *Application) initServices(signer jwtx.Signer, verifier jwtx.Verifier, authenticator service.UserAuthenticator) error {
	idGenerator := func() string { return idx.New().String() }

	factory := &service.TokenFactory{
		Store:       app.db,
		Signer:      signer,
		Issuer:      app.cfg.Issuer,
		TokenType:   app.cfg.TokenType,
		IDGenerator: idGenerator,
		AccessTTL:   app.cfg.AccessTTL,
		RefreshTTL:  app.cfg.RefreshTTL,
	}

	app.authorizeService = &service.AuthorizeService{
		Store:         app.db,
		CodeTTL:       app.cfg.AuthCodeTTL,
		DialogHMACKey: app.cfg.DialogHMACKey,
		Authenticator: authenticator,
	}

	app.tokenService = &service.TokenService{
		Store:         app.db,
		Factory:       factory,
		Verifier:      verifier,
		HMACAlgorithm: app.cfg.HMACAlgorithm,
		HMACKey:       app.cfg.OAuthSecretKey,
		Authenticator: authenticator,
	}

	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.cfg.ProviderName, app.db, app.logger)
	router.AuthorizeService = app.authorizeService
	router.TokenService = app.tokenService
	router.DialogHMACKey = app.cfg.DialogHMACKey
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Run starts the HTTP server and blocks until a shutdown signal arrives or
// the server fails.
func (app *Application) Run() error {
	app.logger.Info("authd starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown drains outstanding requests and closes the database connection.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authd")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("authd stopped")
	return nil
}
