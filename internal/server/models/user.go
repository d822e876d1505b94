package models

import "time"

const RoleAdmin = "admin"

// User is a stored account. Password holds a one-way digest (bcrypt, or a
// legacy sha256 hex string) and Token the single live session token, if any.
type User struct {
	ID        string
	Email     string
	Name      string
	Password  string
	IsAdmin   bool
	Token     string
	LastLogin *time.Time
	Roles     []string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// DisplayName is the name shown as a default author: the name, else the
// email, else "Admin".
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return "Admin"
	}
}

// Public returns the view of the user that may leave the server.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin}
}

type PublicUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        PublicUser `json:"user"`
}

// Session is a resolved bearer token together with its owner.
type Session struct {
	User  User
	Token string
}
