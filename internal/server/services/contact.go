package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
	"github.com/dmitrijs2005/taxportal/internal/server/pagination"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/taxportal/internal/server/validate"
)

type ContactService struct {
	repo   contacts.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewContactService(repo contacts.Repository, logger logging.Logger) *ContactService {
	return &ContactService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create records a public submission with status new.
func (s *ContactService) Create(ctx context.Context, payload models.ContactCreate) (*models.Contact, error) {
	payload.Normalize()
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}

	now := s.now()
	c := &models.Contact{
		Name:      payload.Name,
		Email:     payload.Email,
		Message:   payload.Message,
		Status:    models.ContactStatusNew,
		Date:      now,
		CreatedAt: now,
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "create contact", err)
	}

	s.logger.Info(ctx, "contact submission received", "id", created.ID)
	return created, nil
}

func (s *ContactService) ListAll(ctx context.Context, skip, limit int) (pagination.Page[models.Contact], error) {
	skip, limit = pagination.Paginate(skip, limit)

	items, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return pagination.Page[models.Contact]{}, storageFailure(ctx, s.logger, "list contacts", err)
	}

	total, err := s.repo.Count(ctx, "")
	if err != nil {
		return pagination.Page[models.Contact]{}, storageFailure(ctx, s.logger, "count contacts", err)
	}

	return pagination.NewPage(items, total, skip, limit), nil
}

func (s *ContactService) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	oid, err := objectid.Parse(id)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, oid)
}

func (s *ContactService) get(ctx context.Context, id objectid.ID) (*models.Contact, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupFailure(ctx, s.logger, "get contact", err, "id", id.Hex())
	}
	return c, nil
}

func (s *ContactService) UpdateStatus(ctx context.Context, id string, status models.ContactStatus) (*models.Contact, error) {
	oid, err := objectid.Parse(id)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrorValidation, status)
	}

	matched, err := s.repo.UpdateStatus(ctx, oid, status, s.now())
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "update contact status", err, "id", id)
	}
	if !matched {
		return nil, common.ErrorNotFound
	}

	return s.get(ctx, oid)
}

// Stats counts submissions in total and per status. The five counts are
// separate queries.
func (s *ContactService) Stats(ctx context.Context) (*models.ContactStats, error) {
	var stats models.ContactStats

	counters := []struct {
		status models.ContactStatus
		dst    *int64
	}{
		{"", &stats.Total},
		{models.ContactStatusNew, &stats.New},
		{models.ContactStatusReviewed, &stats.Reviewed},
		{models.ContactStatusReplied, &stats.Replied},
		{models.ContactStatusArchived, &stats.Archived},
	}

	for _, c := range counters {
		n, err := s.repo.Count(ctx, c.status)
		if err != nil {
			return nil, storageFailure(ctx, s.logger, "count contacts", err, "status", string(c.status))
		}
		*c.dst = n
	}

	return &stats, nil
}
