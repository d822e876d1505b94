package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/dbx"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	id := objectid.NewHex()

	query :=
		`INSERT INTO contacts (id, name, email, message, status, date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query, id, c.Name, c.Email, c.Message, string(c.Status), c.Date, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.ID = id
	return c, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id objectid.ID) (*models.Contact, error) {
	query :=
		`SELECT id, name, email, message, status, date, created_at, updated_at FROM contacts
		 WHERE id = $1`

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id.Hex()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, skip, limit int) ([]models.Contact, error) {
	query :=
		`SELECT id, name, email, message, status, date, created_at, updated_at FROM contacts
		 ORDER BY date DESC, id DESC
		 OFFSET $1 LIMIT $2`

	// LIMIT NULL is LIMIT ALL in PostgreSQL.
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := r.db.QueryContext(ctx, query, skip, lim)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) Count(ctx context.Context, status models.ContactStatus) (int64, error) {
	var (
		n   int64
		err error
	)
	if status == "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE status = $1`, string(status)).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id objectid.ID, status models.ContactStatus, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), now, id.Hex())
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var (
		c         models.Contact
		status    string
		updatedAt sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Message, &status, &c.Date, &c.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Status = models.ContactStatus(status)
	if updatedAt.Valid {
		c.UpdatedAt = &updatedAt.Time
	}
	return &c, nil
}
