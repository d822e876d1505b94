// Package users stores accounts and their single live session token.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/server/models"
)

type Repository interface {
	// FindByEmail returns common.ErrorNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByToken returns common.ErrorNotFound when no user holds the token.
	FindByToken(ctx context.Context, token string) (*models.User, error)
	// SetToken replaces the user's token and records the login time.
	SetToken(ctx context.Context, userID, token string, at time.Time) error
	// UnsetToken clears the user's token. Clearing an absent token is not an error.
	UnsetToken(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, digest string, at time.Time) error
	// UpsertAdmin creates the user or promotes the existing one with the
	// same email to administrator, replacing name and password digest.
	UpsertAdmin(ctx context.Context, email, name, digest string, at time.Time) (*models.User, error)
}
