package models

import "time"

// Template selects the front-end layout used to render a page.
type Template string

const (
	TemplateBasic     Template = "basic"
	TemplateFullWidth Template = "full-width"
)

// Page is a piece of content addressed by a unique slug. A page is public
// only while PublishedAt is set.
type Page struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Content         string     `json:"content"`
	IsPage          bool       `json:"isPage"`
	PublishedAt     *time.Time `json:"publishedAt"`
	Template        Template   `json:"template"`
	Slug            string     `json:"slug"`
	UserID          *string    `json:"userId"`
	Thumbnail       *string    `json:"thumbnail"`
	MetaTitle       *string    `json:"metaTitle"`
	MetaDescription *string    `json:"metaDescription"`
	Categories      []string   `json:"categories"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Published reports whether the page is visible to anonymous readers.
func (p *Page) Published() bool {
	return p.PublishedAt != nil
}
