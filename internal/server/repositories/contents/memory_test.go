package contents

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, r *MemoryRepository, items ...models.Content) []string {
	t.Helper()
	ids := make([]string, 0, len(items))
	for i := range items {
		c := items[i]
		got, err := r.Create(context.Background(), &c)
		require.NoError(t, err)
		ids = append(ids, got.ID)
	}
	return ids
}

func TestMemoryRepository_ListFiltersSortsAndPages(t *testing.T) {
	r := NewMemoryRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	summary := "Quarterly GST filing"

	seed(t, r,
		models.Content{Title: "A", Category: models.CategoryGST, Type: models.ContentTypeNews, Body: "first body", Date: base},
		models.Content{Title: "B", Category: models.CategoryMCA, Type: models.ContentTypeNews, Body: "second body", Date: base.Add(time.Hour)},
		models.Content{Title: "C", Category: models.CategoryGST, Type: models.ContentTypeArticles, Body: "third body", Summary: &summary, Date: base.Add(2 * time.Hour)},
	)
	ctx := context.Background()

	all, err := r.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{all[0].Title, all[1].Title, all[2].Title})

	both, err := r.List(ctx, Query{Category: models.CategoryGST, Type: models.ContentTypeNews, Limit: 10})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "A", both[0].Title)

	search, err := r.List(ctx, Query{Search: "quarterly"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "C", search[0].Title)

	page, err := r.List(ctx, Query{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "B", page[0].Title)

	beyond, err := r.List(ctx, Query{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)

	n, err := r.Count(ctx, Query{Category: models.CategoryGST, Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryRepository_UpdateDelete(t *testing.T) {
	r := NewMemoryRepository()
	summary := "keep me"
	ids := seed(t, r, models.Content{Title: "Old", Body: "body text long", Summary: &summary})
	id, err := objectid.Parse(ids[0])
	require.NoError(t, err)
	ctx := context.Background()
	now := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)

	title := "New"
	ok, err := r.Update(ctx, id, models.ContentUpdate{Title: &title}, now)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "keep me", *got.Summary)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, now, *got.UpdatedAt)

	ok, err = r.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.FindByID(ctx, id)
	require.ErrorIs(t, err, common.ErrorNotFound)

	ok, err = r.Update(ctx, id, models.ContentUpdate{Title: &title}, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ids := seed(t, r, models.Content{Title: "T", Images: []string{"a.png"}})
	id, _ := objectid.Parse(ids[0])

	got, err := r.FindByID(context.Background(), id)
	require.NoError(t, err)
	got.Images[0] = "mutated"

	again, err := r.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a.png", again.Images[0])
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	r := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.List(ctx, Query{})
	require.ErrorIs(t, err, context.Canceled)
}
