package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/contents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

type failingContents struct {
	contents.Repository
	err error
}

func (f *failingContents) List(context.Context, contents.Query) ([]models.Content, error) {
	return nil, f.err
}
func (f *failingContents) Count(context.Context, contents.Query) (int64, error) { return 0, f.err }
func (f *failingContents) FindByID(context.Context, objectid.ID) (*models.Content, error) {
	return nil, f.err
}
func (f *failingContents) Delete(context.Context, objectid.ID) (bool, error) { return false, f.err }

func newContentService() *ContentService {
	s := NewContentService(contents.NewMemoryRepository(), testLogger())
	s.now = clock(t0)
	return s
}

func mustCreate(t *testing.T, s *ContentService, title string, cat models.Category, typ models.ContentType, date string) *models.Content {
	t.Helper()
	c, err := s.Create(context.Background(), models.ContentCreate{
		Title:    title,
		Type:     typ,
		Category: cat,
		Body:     "body text long enough for " + title,
		Date:     &date,
	}, "Editor")
	require.NoError(t, err)
	return c
}

func TestContentService_CreateThenGet(t *testing.T) {
	s := newContentService()
	ctx := context.Background()

	body := "xxxxxxxxxxxxxxx"
	created, err := s.Create(ctx, models.ContentCreate{
		Title:    "  Budget Update ",
		Type:     models.ContentTypeNews,
		Category: models.CategoryGST,
		Body:     body,
	}, "Admin User")
	require.NoError(t, err)
	require.True(t, objectid.IsValid(created.ID))

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Budget Update", got.Title)
	assert.Equal(t, models.ContentTypeNews, got.Type)
	assert.Equal(t, models.CategoryGST, got.Category)
	assert.Equal(t, body, got.Body)
	assert.Equal(t, "Admin User", got.Author)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, t0, got.Date)
	assert.Nil(t, got.UpdatedAt)
}

func TestContentService_Create_AuthorAndImages(t *testing.T) {
	s := newContentService()

	var payload models.ContentCreate
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "Circular",
		"type": "others",
		"category": "sebi",
		"body": "a circular about listing rules",
		"author": "Desk",
		"images": "https://cdn.example.com/a.png"
	}`), &payload))

	c, err := s.Create(context.Background(), payload, "Admin")
	require.NoError(t, err)
	assert.Equal(t, "Desk", c.Author)
	assert.Equal(t, []string{"https://cdn.example.com/a.png"}, c.Images)
}

func TestContentService_Create_Date(t *testing.T) {
	tests := []struct {
		name string
		date *string
		want time.Time
	}{
		{"absent", nil, t0},
		{"blank", ptr("  "), t0},
		{"rfc3339", ptr("2025-03-01T10:00:00+05:30"), time.Date(2025, 3, 1, 4, 30, 0, 0, time.UTC)},
		{"zulu with fraction", ptr("2025-03-01T10:00:00.123Z"), time.Date(2025, 3, 1, 10, 0, 0, 123000000, time.UTC)},
		{"no zone", ptr("2025-03-01T10:00:00"), time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"date only", ptr("2025-03-01"), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"garbage", ptr("yesterday"), t0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDate(tt.date, t0))
		})
	}
}

func TestContentService_Create_Invalid(t *testing.T) {
	s := newContentService()

	_, err := s.Create(context.Background(), models.ContentCreate{
		Title:    "Title",
		Type:     models.ContentTypeNews,
		Category: "vat",
		Body:     "long enough body",
	}, "Admin")
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Contains(t, err.Error(), "category")

	_, err = s.Create(context.Background(), models.ContentCreate{
		Title:    "   ",
		Type:     models.ContentTypeNews,
		Category: models.CategoryGST,
		Body:     "short",
	}, "Admin")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestContentService_ListByFilter(t *testing.T) {
	s := newContentService()
	ctx := context.Background()

	want := mustCreate(t, s, "one", models.CategoryGST, models.ContentTypeNews, "2025-01-01")
	mustCreate(t, s, "two", models.CategoryMCA, models.ContentTypeNews, "2025-01-02")
	mustCreate(t, s, "three", models.CategoryGST, models.ContentTypeArticles, "2025-01-03")

	page, err := s.ListByFilter(ctx, models.CategoryGST, models.ContentTypeNews, 0, 10, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, want.ID, page.Items[0].ID)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, int64(1), page.TotalPages)

	page, err = s.ListByFilter(ctx, models.CategoryGST, "blog", 0, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, int64(0), page.TotalPages)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestContentService_ListAll_SearchAndOrder(t *testing.T) {
	s := newContentService()
	ctx := context.Background()

	oldest := mustCreate(t, s, "GST rates revised", models.CategoryGST, models.ContentTypeNews, "2025-01-01")
	mustCreate(t, s, "Company law", models.CategoryMCA, models.ContentTypeNews, "2025-01-02")
	newest := mustCreate(t, s, "Income slabs and gst", models.CategoryIncomeTax, models.ContentTypeArticles, "2025-01-03")

	page, err := s.ListAll(ctx, 0, 10, "GST")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, newest.ID, page.Items[0].ID)
	assert.Equal(t, oldest.ID, page.Items[1].ID)

	page, err = s.ListAll(ctx, 1, 1, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Company law", page.Items[0].Title)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, int64(3), page.TotalPages)

	page, err = s.ListAll(ctx, 0, 10, "no such words")
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.TotalPages)
}

func TestContentService_ListAll_ClampsPaging(t *testing.T) {
	s := newContentService()

	page, err := s.ListAll(context.Background(), -5, 500, "")
	require.NoError(t, err)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 1, page.Page)
}

func TestContentService_ListByCategory(t *testing.T) {
	s := newContentService()
	ctx := context.Background()

	mustCreate(t, s, "one", models.CategorySEBI, models.ContentTypeNews, "2025-01-01")
	mustCreate(t, s, "two", models.CategorySEBI, models.ContentTypeJudiciary, "2025-01-02")
	mustCreate(t, s, "three", models.CategoryGST, models.ContentTypeNews, "2025-01-03")

	page, err := s.ListByCategory(ctx, models.CategorySEBI, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = s.ListByCategory(ctx, "vat", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Empty(t, page.Items)
}

func TestContentService_Count(t *testing.T) {
	s := newContentService()
	ctx := context.Background()

	mustCreate(t, s, "one", models.CategorySEBI, models.ContentTypeNews, "2025-01-01")
	mustCreate(t, s, "two", models.CategorySEBI, models.ContentTypeJudiciary, "2025-01-02")
	mustCreate(t, s, "three", models.CategoryGST, models.ContentTypeNews, "2025-01-03")

	n, err := s.Count(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = s.Count(ctx, "", models.ContentTypeNews)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Count(ctx, models.CategorySEBI, models.ContentTypeJudiciary)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Count(ctx, "vat", "")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.Count(ctx, models.CategoryGST, "blog")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestContentService_Update_NullLeavesFieldUnchanged(t *testing.T) {
	s := newContentService()
	ctx := context.Background()

	created, err := s.Create(ctx, models.ContentCreate{
		Title:    "Old",
		Type:     models.ContentTypeNews,
		Category: models.CategoryGST,
		Body:     "body that is long enough",
		Summary:  ptr("kept summary"),
	}, "Admin")
	require.NoError(t, err)

	var upd models.ContentUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"summary": null, "title": "New"}`), &upd))

	got, err := s.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "kept summary", *got.Summary)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestContentService_Update_EmptyImagesKeepsList(t *testing.T) {
	s := newContentService()
	ctx := context.Background()

	created, err := s.Create(ctx, models.ContentCreate{
		Title:    "With images",
		Type:     models.ContentTypeNews,
		Category: models.CategoryGST,
		Body:     "body that is long enough",
		Images:   models.StringList{"https://cdn.example.com/a.png"},
	}, "Admin")
	require.NoError(t, err)

	var upd models.ContentUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"images": ""}`), &upd))

	got, err := s.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.png"}, got.Images)
	assert.Nil(t, got.UpdatedAt)
}

func TestContentService_Update_EmptyWritesNothing(t *testing.T) {
	s := newContentService()
	ctx := context.Background()
	created := mustCreate(t, s, "one", models.CategoryGST, models.ContentTypeNews, "2025-01-01")

	got, err := s.Update(ctx, created.ID, models.ContentUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "one", got.Title)
	assert.Nil(t, got.UpdatedAt)
}

func TestContentService_Update_Errors(t *testing.T) {
	s := newContentService()
	ctx := context.Background()
	created := mustCreate(t, s, "one", models.CategoryGST, models.ContentTypeNews, "2025-01-01")

	_, err := s.Update(ctx, "not-an-id", models.ContentUpdate{Title: ptr("x")})
	assert.ErrorIs(t, err, common.ErrorInvalidIdentifier)

	_, err = s.Update(ctx, objectid.NewHex(), models.ContentUpdate{Title: ptr("x")})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Update(ctx, objectid.NewHex(), models.ContentUpdate{})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Update(ctx, created.ID, models.ContentUpdate{Title: ptr("  ")})
	assert.ErrorIs(t, err, common.ErrorValidation)

	bad := models.Category("vat")
	_, err = s.Update(ctx, created.ID, models.ContentUpdate{Category: &bad})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestContentService_DeleteByID(t *testing.T) {
	s := newContentService()
	ctx := context.Background()
	created := mustCreate(t, s, "one", models.CategoryGST, models.ContentTypeNews, "2025-01-01")

	deleted, err := s.DeleteByID(ctx, objectid.NewHex())
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = s.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.DeleteByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, common.ErrorInvalidIdentifier)
}

func TestContentService_StorageFailure(t *testing.T) {
	s := NewContentService(&failingContents{err: errors.New("connection refused")}, testLogger())
	ctx := context.Background()

	_, err := s.ListAll(ctx, 0, 10, "")
	require.ErrorIs(t, err, common.ErrorStorageFailure)
	assert.Contains(t, err.Error(), "connection refused")

	_, err = s.GetByID(ctx, objectid.NewHex())
	assert.ErrorIs(t, err, common.ErrorStorageFailure)

	_, err = s.DeleteByID(ctx, objectid.NewHex())
	assert.ErrorIs(t, err, common.ErrorStorageFailure)

	_, err = s.Count(ctx, "", "")
	assert.ErrorIs(t, err, common.ErrorStorageFailure)
}

func TestContentService_CanceledContext(t *testing.T) {
	s := newContentService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListAll(ctx, 0, 10, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, common.ErrorStorageFailure)
}
