// Package repomanager opens the storage backend selected by configuration
// and vends the repositories bound to it. The handle is created once at
// startup, injected into the services and closed after the HTTP server has
// stopped.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/config"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/contents"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/users"
)

type RepositoryManager interface {
	Contents() contents.Repository
	Contacts() contacts.Repository
	Users() users.Repository
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the connection. No repository may be used afterwards.
	Close(ctx context.Context) error
}

// Open connects to the backend named by cfg.DBDriver, which must already be
// resolved (see config.Config.ResolveDefaults).
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (RepositoryManager, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.MongoURL, cfg.DatabaseName, logger)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.PostgresDSN)
	case config.DriverMemory:
		logger.Warn(ctx, "using in-memory storage; data is lost on restart")
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.DBDriver)
	}
}
