// Package contacts stores contact-form submissions. Submissions are
// append-only apart from their status.
package contacts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
)

type Repository interface {
	Create(ctx context.Context, c *models.Contact) (*models.Contact, error)
	// FindByID returns common.ErrorNotFound when no document matches.
	FindByID(ctx context.Context, id objectid.ID) (*models.Contact, error)
	// List returns submissions newest first. limit 0 means no limit.
	List(ctx context.Context, skip, limit int) ([]models.Contact, error)
	// Count counts submissions with the given status, or all of them when
	// status is empty.
	Count(ctx context.Context, status models.ContactStatus) (int64, error)
	// UpdateStatus reports whether a document matched.
	UpdateStatus(ctx context.Context, id objectid.ID, status models.ContactStatus, now time.Time) (bool, error)
}
