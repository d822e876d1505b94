package models

import (
	"strings"
	"time"
)

type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusReviewed ContactStatus = "reviewed"
	ContactStatusReplied  ContactStatus = "replied"
	ContactStatusArchived ContactStatus = "archived"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusNew, ContactStatusReviewed, ContactStatusReplied, ContactStatusArchived:
		return true
	}
	return false
}

// Contact is a contact-form submission. Submissions are never deleted.
type Contact struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	Date      time.Time     `json:"date"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
}

type ContactCreate struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

func (c *ContactCreate) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Message = strings.TrimSpace(c.Message)
}

type ContactStatusUpdate struct {
	Status ContactStatus `json:"status" validate:"required,oneof=new reviewed replied archived"`
}

// ContactStats holds per-status counts. The counts are taken independently
// and may be skewed under concurrent writes.
type ContactStats struct {
	Total    int64 `json:"total"`
	New      int64 `json:"new"`
	Reviewed int64 `json:"reviewed"`
	Replied  int64 `json:"replied"`
	Archived int64 `json:"archived"`
}
