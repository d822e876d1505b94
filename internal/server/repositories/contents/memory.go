package contents

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

// MemoryRepository keeps contents in process memory. It backs local runs
// without a database and the end-to-end API tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[objectid.ID]models.Content
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[objectid.ID]models.Content)}
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Content) (*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := objectid.New()
	c.ID = id.Hex()

	r.mu.Lock()
	r.items[id] = clone(*c)
	r.mu.Unlock()

	return c, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id objectid.ID) (*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	c, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	c = clone(c)
	return &c, nil
}

func (r *MemoryRepository) List(ctx context.Context, q Query) ([]models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := r.match(q)
	slices.SortStableFunc(matched, func(a, b models.Content) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	if q.Skip >= len(matched) {
		return []models.Content{}, nil
	}
	matched = matched[q.Skip:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (r *MemoryRepository) Count(ctx context.Context, q Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(r.match(q))), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id objectid.ID, upd models.ContentUpdate, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok {
		return false, nil
	}

	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.Type != nil {
		c.Type = *upd.Type
	}
	if upd.Category != nil {
		c.Category = *upd.Category
	}
	if upd.Body != nil {
		c.Body = *upd.Body
	}
	if upd.Summary != nil {
		s := *upd.Summary
		c.Summary = &s
	}
	if upd.Author != nil {
		c.Author = *upd.Author
	}
	if upd.Images != nil {
		c.Images = slices.Clone([]string(*upd.Images))
	}
	c.UpdatedAt = &now

	r.items[id] = c
	return true, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id objectid.ID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *MemoryRepository) match(q Query) []models.Content {
	needle := strings.ToLower(q.Search)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Content, 0, len(r.items))
	for _, c := range r.items {
		if q.Category != "" && c.Category != q.Category {
			continue
		}
		if q.Type != "" && c.Type != q.Type {
			continue
		}
		if needle != "" && !containsFold(c, needle) {
			continue
		}
		out = append(out, clone(c))
	}
	return out
}

func containsFold(c models.Content, needle string) bool {
	if strings.Contains(strings.ToLower(c.Title), needle) || strings.Contains(strings.ToLower(c.Body), needle) {
		return true
	}
	return c.Summary != nil && strings.Contains(strings.ToLower(*c.Summary), needle)
}

func clone(c models.Content) models.Content {
	c.Images = slices.Clone(c.Images)
	if c.Summary != nil {
		s := *c.Summary
		c.Summary = &s
	}
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		c.UpdatedAt = &t
	}
	return c
}
