package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
	"github.com/dmitrijs2005/taxportal/internal/server/pagination"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/contents"
	"github.com/dmitrijs2005/taxportal/internal/server/validate"
)

// dateLayouts are tried in order when a client supplies a content date.
// Layouts without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type ContentService struct {
	repo   contents.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewContentService(repo contents.Repository, logger logging.Logger) *ContentService {
	return &ContentService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListAll lists every content item, optionally restricted to those whose
// title, body or summary contains search.
func (s *ContentService) ListAll(ctx context.Context, skip, limit int, search string) (pagination.Page[models.Content], error) {
	return s.list(ctx, contents.Query{Search: strings.TrimSpace(search), Skip: skip, Limit: limit})
}

// ListByFilter lists items matching both category and type exactly, with
// the same search semantics as ListAll. Unknown values match nothing.
func (s *ContentService) ListByFilter(ctx context.Context, category models.Category, typ models.ContentType,
	skip, limit int, search string) (pagination.Page[models.Content], error) {

	return s.list(ctx, contents.Query{
		Category: category,
		Type:     typ,
		Search:   strings.TrimSpace(search),
		Skip:     skip,
		Limit:    limit,
	})
}

func (s *ContentService) ListByCategory(ctx context.Context, category models.Category, skip, limit int) (pagination.Page[models.Content], error) {
	return s.list(ctx, contents.Query{Category: category, Skip: skip, Limit: limit})
}

func (s *ContentService) list(ctx context.Context, q contents.Query) (pagination.Page[models.Content], error) {
	q.Skip, q.Limit = pagination.Paginate(q.Skip, q.Limit)

	items, err := s.repo.List(ctx, q)
	if err != nil {
		return pagination.Page[models.Content]{}, storageFailure(ctx, s.logger, "list contents", err)
	}

	total, err := s.repo.Count(ctx, q)
	if err != nil {
		return pagination.Page[models.Content]{}, storageFailure(ctx, s.logger, "count contents", err)
	}

	return pagination.NewPage(items, total, q.Skip, q.Limit), nil
}

// Count counts items by exact category and type. Empty values do not filter.
func (s *ContentService) Count(ctx context.Context, category models.Category, typ models.ContentType) (int64, error) {
	n, err := s.repo.Count(ctx, contents.Query{Category: category, Type: typ})
	if err != nil {
		return 0, storageFailure(ctx, s.logger, "count contents", err)
	}
	return n, nil
}

func (s *ContentService) GetByID(ctx context.Context, id string) (*models.Content, error) {
	oid, err := objectid.Parse(id)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, oid)
}

func (s *ContentService) get(ctx context.Context, id objectid.ID) (*models.Content, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupFailure(ctx, s.logger, "get content", err, "id", id.Hex())
	}
	return c, nil
}

// Create stores a new item. author defaults to actor and date to the current
// time when missing or unparsable.
func (s *ContentService) Create(ctx context.Context, payload models.ContentCreate, actor string) (*models.Content, error) {
	payload.Normalize()
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}

	now := s.now()
	c := &models.Content{
		Title:     payload.Title,
		Type:      payload.Type,
		Category:  payload.Category,
		Body:      payload.Body,
		Summary:   payload.Summary,
		Author:    actor,
		Images:    []string(payload.Images),
		Date:      parseDate(payload.Date, now),
		CreatedAt: now,
	}
	if payload.Author != nil && *payload.Author != "" {
		c.Author = *payload.Author
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "create content", err)
	}

	oid, err := objectid.Parse(created.ID)
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "create content", err)
	}
	return s.get(ctx, oid)
}

// Update applies the fields present in upd. An update without fields writes
// nothing and returns the current document.
func (s *ContentService) Update(ctx context.Context, id string, upd models.ContentUpdate) (*models.Content, error) {
	oid, err := objectid.Parse(id)
	if err != nil {
		return nil, err
	}

	upd.Normalize()
	if err := validate.Struct(upd); err != nil {
		return nil, err
	}

	if upd.IsEmpty() {
		return s.get(ctx, oid)
	}

	matched, err := s.repo.Update(ctx, oid, upd, s.now())
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "update content", err, "id", id)
	}
	if !matched {
		return nil, common.ErrorNotFound
	}

	return s.get(ctx, oid)
}

// DeleteByID reports whether an item was removed.
func (s *ContentService) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := objectid.Parse(id)
	if err != nil {
		return false, err
	}

	deleted, err := s.repo.Delete(ctx, oid)
	if err != nil {
		return false, storageFailure(ctx, s.logger, "delete content", err, "id", id)
	}
	return deleted, nil
}

func parseDate(value *string, fallback time.Time) time.Time {
	if value == nil {
		return fallback
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return fallback
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return fallback
}
