package main

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/weilandt/circ-api/internal/config"
	"github.com/weilandt/circ-api/internal/platform/flatfile"
	"github.com/weilandt/circ-api/internal/platform/mailer"
	"github.com/weilandt/circ-api/internal/service"
	"github.com/weilandt/circ-api/internal/service/auth"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *flatfile.DB

	tokenService     auth.TokenService
	passwordVerifier auth.PasswordVerifier
	notifier         mailer.Notifier

	circulation service.CirculationService
	membership  service.MembershipService
}

// newApplication creates a new application instance with all dependencies
// initialized. The configuration and logger must be established first.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.tokenService, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("token service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.db, err = flatfile.Open(flatfile.DefaultConfig(cfg.Storage.Dir), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open data files: %w", err)
	}
	logger.Info("flat-file store opened", "dir", cfg.Storage.Dir)

	app.notifier = mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger)

	app.circulation = service.NewCirculationService(
		app.db.MediaStore(),
		app.db.UserStore(),
		app.db.LoanStore(),
		app.notifier,
		logger,
	)

	bcryptCost := cfg.Auth.BcryptCost
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	app.membership = service.NewMembershipService(
		app.db.UserStore(),
		app.db.AdminStore(),
		app.passwordVerifier,
		app.notifier,
		bcryptCost,
		logger,
	)

	logger.Info("application initialized")
	return app, nil
}

// tokenLifetime returns the configured access token lifetime.
func (app *application) tokenLifetime() time.Duration {
	return time.Duration(app.config.Auth.TokenLifetimeMinutes) * time.Minute
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	app.logger.Info("application shutdown completed")
}
