package users

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.User)}
}

// Add stores u as is, assigning an id when it has none. It exists for
// fixtures; production accounts are created through UpsertAdmin.
func (r *MemoryRepository) Add(u models.User) models.User {
	if u.ID == "" {
		u.ID = objectid.NewHex()
	}
	r.mu.Lock()
	r.users[u.ID] = u
	r.mu.Unlock()
	return u
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.Email == email })
}

func (r *MemoryRepository) FindByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return r.find(ctx, func(u models.User) bool { return u.Token == token })
}

func (r *MemoryRepository) find(ctx context.Context, pred func(models.User) bool) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if pred(u) {
			u.Roles = slices.Clone(u.Roles)
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) SetToken(ctx context.Context, userID, token string, at time.Time) error {
	return r.update(ctx, userID, func(u *models.User) {
		u.Token = token
		u.LastLogin = &at
	})
}

func (r *MemoryRepository) UnsetToken(ctx context.Context, userID string) error {
	err := r.update(ctx, userID, func(u *models.User) { u.Token = "" })
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, userID, digest string, at time.Time) error {
	return r.update(ctx, userID, func(u *models.User) {
		u.Password = digest
		u.UpdatedAt = &at
	})
}

func (r *MemoryRepository) update(ctx context.Context, userID string, fn func(*models.User)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&u)
	r.users[userID] = u
	return nil
}

func (r *MemoryRepository) UpsertAdmin(ctx context.Context, email, name, digest string, at time.Time) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var u models.User
	for _, existing := range r.users {
		if existing.Email == email {
			u = existing
			break
		}
	}
	if u.ID == "" {
		u = models.User{ID: objectid.NewHex(), Email: email, CreatedAt: at}
	} else {
		u.UpdatedAt = &at
	}
	u.Name = name
	u.Password = digest
	u.IsAdmin = true
	u.Roles = []string{models.RoleAdmin}

	r.users[u.ID] = u
	return &u, nil
}
