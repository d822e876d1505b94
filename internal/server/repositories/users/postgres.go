package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/dbx"
	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/objectid"
)

const selectUser = `SELECT id, email, name, password, is_admin, token, last_login, roles, created_at, updated_at FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne(ctx, r.db, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.User, error) {
	return findOne(ctx, r.db, selectUser+` WHERE token = $1`, token)
}

func (r *PostgresRepository) SetToken(ctx context.Context, userID, token string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET token = $1, last_login = $2 WHERE id = $3`, token, at, userID)
}

func (r *PostgresRepository) UnsetToken(ctx context.Context, userID string) error {
	err := r.exec(ctx, `UPDATE users SET token = NULL WHERE id = $1`, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID, digest string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET password = $1, updated_at = $2 WHERE id = $3`, digest, at, userID)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// UpsertAdmin runs in its own transaction unless the repository is already
// bound to one.
func (r *PostgresRepository) UpsertAdmin(ctx context.Context, email, name, digest string, at time.Time) (*models.User, error) {
	return dbx.Atomic(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		return upsertAdmin(ctx, tx, email, name, digest, at)
	})
}

func upsertAdmin(ctx context.Context, tx dbx.DBTX, email, name, digest string, at time.Time) (*models.User, error) {
	roles, err := json.Marshal([]string{models.RoleAdmin})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1 FOR UPDATE`, email).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = objectid.NewHex()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO users (id, email, name, password, is_admin, roles, created_at)
			 VALUES ($1, $2, $3, $4, TRUE, $5, $6)`,
			id, email, name, digest, string(roles), at)
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET name = $1, password = $2, is_admin = TRUE, roles = $3, updated_at = $4
			 WHERE id = $5`,
			name, digest, string(roles), at, id)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return findOne(ctx, tx, selectUser+` WHERE id = $1`, id)
}

func findOne(ctx context.Context, db dbx.DBTX, query string, arg any) (*models.User, error) {
	var (
		u         models.User
		token     sql.NullString
		lastLogin sql.NullTime
		roles     []byte
		updatedAt sql.NullTime
	)

	err := db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.Password, &u.IsAdmin, &token, &lastLogin, &roles, &u.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.Token = token.String
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &u.Roles); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}
	if updatedAt.Valid {
		u.UpdatedAt = &updatedAt.Time
	}
	return &u, nil
}
