package domain

import (
	"time"

	"github.com/google/uuid"
)

// Article is a bilingual knowledge-base entry. Arabic content is the
// primary text; English fields may be empty.
type Article struct {
	ID        uuid.UUID  `json:"id"`
	Slug      string     `json:"slug"`
	TitleAr   string     `json:"title_ar"`
	TitleEn   string     `json:"title_en,omitempty"`
	BodyAr    string     `json:"body_ar"`
	BodyEn    string     `json:"body_en,omitempty"`
	Category  string     `json:"category"`
	Published bool       `json:"published"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Title returns the localized title, falling back to Arabic.
func (a *Article) Title(locale string) string {
	if locale == "en" && a.TitleEn != "" {
		return a.TitleEn
	}
	return a.TitleAr
}

// Body returns the localized body, falling back to Arabic.
func (a *Article) Body(locale string) string {
	if locale == "en" && a.BodyEn != "" {
		return a.BodyEn
	}
	return a.BodyAr
}
