package users

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_TokenLifecycle(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	u := r.Add(models.User{Email: "a@example.com", Name: "A", Password: "digest"})

	_, err := r.FindByToken(ctx, "")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, r.SetToken(ctx, u.ID, "first", now))
	require.NoError(t, r.SetToken(ctx, u.ID, "second", now))

	_, err = r.FindByToken(ctx, "first")
	require.ErrorIs(t, err, common.ErrorNotFound)

	got, err := r.FindByToken(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.LastLogin)

	require.NoError(t, r.UnsetToken(ctx, u.ID))
	require.NoError(t, r.UnsetToken(ctx, u.ID))
	require.NoError(t, r.UnsetToken(ctx, "missing"))

	_, err = r.FindByToken(ctx, "second")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.ErrorIs(t, r.SetToken(ctx, "missing", "x", now), common.ErrorNotFound)
}

func TestMemoryRepository_UpsertAdmin(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := r.UpsertAdmin(ctx, "root@example.com", "Root", "d1", now)
	require.NoError(t, err)
	assert.True(t, created.IsAdmin)
	assert.Equal(t, []string{models.RoleAdmin}, created.Roles)

	again, err := r.UpsertAdmin(ctx, "root@example.com", "Root Two", "d2", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Root Two", again.Name)
	assert.Equal(t, "d2", again.Password)
	require.NotNil(t, again.UpdatedAt)

	byEmail, err := r.FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "d2", byEmail.Password)
}
