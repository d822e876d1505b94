// Package contents stores articles. Mongo, PostgreSQL and in-memory
// implementations share the Repository contract; lists are always ordered by
// date, newest first.
package contents

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
)

// Query selects contents. Empty Category, Type or Search leave that
// dimension unfiltered. Search is a case-insensitive literal substring
// matched against title, body or summary. Limit 0 means no limit.
type Query struct {
	Category models.Category
	Type     models.ContentType
	Search   string
	Skip     int
	Limit    int
}

type Repository interface {
	// Create assigns an id to c and stores it.
	Create(ctx context.Context, c *models.Content) (*models.Content, error)
	// FindByID returns common.ErrorNotFound when no document matches.
	FindByID(ctx context.Context, id objectid.ID) (*models.Content, error)
	List(ctx context.Context, q Query) ([]models.Content, error)
	// Count ignores Skip and Limit.
	Count(ctx context.Context, q Query) (int64, error)
	// Update applies the non-nil fields of upd and sets updatedAt. It reports
	// whether a document matched.
	Update(ctx context.Context, id objectid.ID, upd models.ContentUpdate, now time.Time) (bool, error)
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, id objectid.ID) (bool, error)
}
