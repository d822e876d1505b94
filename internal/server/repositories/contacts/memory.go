package contacts

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[objectid.ID]models.Contact
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[objectid.ID]models.Contact)}
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := objectid.New()
	c.ID = id.Hex()

	r.mu.Lock()
	r.items[id] = *c
	r.mu.Unlock()

	return c, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id objectid.ID) (*models.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	c, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) List(ctx context.Context, skip, limit int) ([]models.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	all := make([]models.Contact, 0, len(r.items))
	for _, c := range r.items {
		all = append(all, c)
	}
	r.mu.RUnlock()

	slices.SortStableFunc(all, func(a, b models.Contact) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	if skip >= len(all) {
		return []models.Contact{}, nil
	}
	all = all[skip:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepository) Count(ctx context.Context, status models.ContactStatus) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, c := range r.items {
		if status == "" || c.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id objectid.ID, status models.ContactStatus, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok {
		return false, nil
	}
	c.Status = status
	c.UpdatedAt = &now
	r.items[id] = c
	return true, nil
}
