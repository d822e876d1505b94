// Package server wires configuration, storage, services and the HTTP
// transport together and runs them until the process is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/config"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taxportal/internal/server/rest"
	"github.com/dmitrijs2005/taxportal/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		logger: logging.New(c.LogBackend, c.LogLevel, os.Stdout),
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run opens the store, serves HTTP until ctx is canceled or a signal
// arrives, and closes the store once the server has stopped.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DBDriver)

	app.initSignalHandler(cancelFunc)

	store, err := repomanager.Open(ctx, app.config, app.logger)
	if err != nil {
		return fmt.Errorf("storage init error: %w", err)
	}
	defer app.closeStore(store)

	auth := services.NewAuthService(store.Users(), app.logger, app.config.UpgradeLegacyPasswords)
	if app.config.AdminConfigured() {
		if _, err := auth.EnsureAdmin(ctx, app.config.AdminEmail, app.config.AdminPassword, app.config.AdminName); err != nil {
			app.logger.Error(ctx, "admin bootstrap failed", "email", app.config.AdminEmail, "error", err)
		}
	}

	svc := rest.Services{
		Contents: services.NewContentService(store.Contents(), app.logger),
		Contacts: services.NewContactService(store.Contacts(), app.logger),
		Auth:     auth,
		Images:   services.NewImageService(app.config, app.logger),
		SEO:      services.NewSEOService(store.Contents(), app.config.PublicBaseURL, app.logger),
		Store:    store,
	}

	srv := rest.NewHTTPServer(app.config.HTTPAddr, app.logger, svc, app.config.MaxUploadSize, app.config.ShutdownTimeout)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("http server error: %w", err)
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) closeStore(store repomanager.RepositoryManager) {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()

	if err := store.Close(ctx); err != nil {
		app.logger.Error(ctx, "storage close error", "error", err)
	}
}
