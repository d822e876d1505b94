package contents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/dbx"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
)

const selectColumns = `id, title, type, category, body, summary, author, images, date, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Content) (*models.Content, error) {
	images, err := json.Marshal(nonNil(c.Images))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id := objectid.NewHex()

	query :=
		`INSERT INTO contents (id, title, type, category, body, summary, author, images, date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		id, c.Title, string(c.Type), string(c.Category), c.Body,
		nullString(c.Summary), nullIfEmpty(c.Author), string(images), c.Date, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.ID = id
	return c, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id objectid.ID) (*models.Content, error) {
	query := `SELECT ` + selectColumns + ` FROM contents WHERE id = $1`

	c, err := scanContent(r.db.QueryRowContext(ctx, query, id.Hex()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, q Query) ([]models.Content, error) {
	where, args := whereClause(q)

	args = append(args, q.Skip)
	query := `SELECT ` + selectColumns + ` FROM contents` + where +
		fmt.Sprintf(` ORDER BY date DESC, id DESC OFFSET $%d`, len(args))
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]models.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
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

func (r *PostgresRepository) Count(ctx context.Context, q Query) (int64, error) {
	where, args := whereClause(q)

	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contents`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id objectid.ID, upd models.ContentUpdate, now time.Time) (bool, error) {
	var sets []string
	var args []any
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Type != nil {
		set("type", string(*upd.Type))
	}
	if upd.Category != nil {
		set("category", string(*upd.Category))
	}
	if upd.Body != nil {
		set("body", *upd.Body)
	}
	if upd.Summary != nil {
		set("summary", *upd.Summary)
	}
	if upd.Author != nil {
		set("author", *upd.Author)
	}
	if upd.Images != nil {
		images, err := json.Marshal(nonNil(*upd.Images))
		if err != nil {
			return false, fmt.Errorf("db error: %w", err)
		}
		set("images", string(images))
	}
	set("updated_at", now)

	args = append(args, id.Hex())
	query := fmt.Sprintf(`UPDATE contents SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id objectid.ID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contents WHERE id = $1`, id.Hex())
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

func scanContent(row rowScanner) (*models.Content, error) {
	var (
		c         models.Content
		typ, cat  string
		summary   sql.NullString
		author    sql.NullString
		images    []byte
		updatedAt sql.NullTime
	)

	err := row.Scan(&c.ID, &c.Title, &typ, &cat, &c.Body, &summary, &author, &images, &c.Date, &c.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Type = models.ContentType(typ)
	c.Category = models.Category(cat)
	if summary.Valid {
		c.Summary = &summary.String
	}
	c.Author = author.String
	if len(images) > 0 {
		if err := json.Unmarshal(images, &c.Images); err != nil {
			return nil, err
		}
	}
	if updatedAt.Valid {
		c.UpdatedAt = &updatedAt.Time
	}
	return &c, nil
}

// whereClause renders q's filters with positional parameters starting at $1.
func whereClause(q Query) (string, []any) {
	var conds []string
	var args []any

	if q.Category != "" {
		args = append(args, string(q.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if q.Type != "" {
		args = append(args, string(q.Type))
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR body ILIKE $%d OR summary ILIKE $%d)", n, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
