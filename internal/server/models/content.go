// Package models defines the typed records exchanged between the services,
// the repositories and the HTTP layer.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ContentType string

const (
	ContentTypeArticles  ContentType = "articles"
	ContentTypeNews      ContentType = "news"
	ContentTypeJudiciary ContentType = "judiciary"
	ContentTypeOthers    ContentType = "others"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeArticles, ContentTypeNews, ContentTypeJudiciary, ContentTypeOthers:
		return true
	}
	return false
}

type Category string

const (
	CategoryIncomeTax Category = "income-tax"
	CategoryGST       Category = "gst"
	CategoryMCA       Category = "mca"
	CategorySEBI      Category = "sebi"
	CategoryMSOffice  Category = "ms-office"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryIncomeTax, CategoryGST, CategoryMCA, CategorySEBI, CategoryMSOffice:
		return true
	}
	return false
}

// Content is a published article as returned to callers. ID is the 24-char
// hex form of the store id.
type Content struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Type      ContentType `json:"type"`
	Category  Category    `json:"category"`
	Body      string      `json:"body"`
	Summary   *string     `json:"summary,omitempty"`
	Author    string      `json:"author,omitempty"`
	Images    []string    `json:"images,omitempty"`
	Date      time.Time   `json:"date"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt *time.Time  `json:"updatedAt,omitempty"`
}

// StringList decodes from either a JSON array of strings or a single string,
// which becomes a one-element list. null and "" decode to an empty list.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("images: expected string or list of strings: %w", err)
	}
	*l = items
	return nil
}

// ContentCreate is the payload of a create request. Date, when given, is
// parsed by the service; unparsable values fall back to the current time.
type ContentCreate struct {
	Title    string      `json:"title" validate:"required,max=500"`
	Type     ContentType `json:"type" validate:"required,oneof=articles news judiciary others"`
	Category Category    `json:"category" validate:"required,oneof=income-tax gst mca sebi ms-office"`
	Body     string      `json:"body" validate:"required,min=10"`
	Summary  *string     `json:"summary" validate:"omitempty,max=500"`
	Author   *string     `json:"author" validate:"omitempty,max=200"`
	Images   StringList  `json:"images" validate:"omitempty,dive,required"`
	Date     *string     `json:"date"`
}

// Normalize trims the free-text fields in place.
func (c *ContentCreate) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Body = strings.TrimSpace(c.Body)
	trimPtr(c.Summary)
	trimPtr(c.Author)
}

// ContentUpdate is a partial update. Nil fields are left unchanged; there is
// no way to clear a field.
type ContentUpdate struct {
	Title    *string      `json:"title" validate:"omitnil,min=1,max=500"`
	Type     *ContentType `json:"type" validate:"omitnil,oneof=articles news judiciary others"`
	Category *Category    `json:"category" validate:"omitnil,oneof=income-tax gst mca sebi ms-office"`
	Body     *string      `json:"body" validate:"omitnil,min=10"`
	Summary  *string      `json:"summary" validate:"omitnil,max=500"`
	Author   *string      `json:"author" validate:"omitnil,max=200"`
	Images   *StringList  `json:"images"`
}

func (u *ContentUpdate) Normalize() {
	trimPtr(u.Title)
	trimPtr(u.Body)
	trimPtr(u.Summary)
	trimPtr(u.Author)
}

// IsEmpty reports whether the update carries no fields.
func (u ContentUpdate) IsEmpty() bool {
	return u.Title == nil && u.Type == nil && u.Category == nil && u.Body == nil &&
		u.Summary == nil && u.Author == nil && u.Images == nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
