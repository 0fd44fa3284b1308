package model

import (
	"html/template"
	"slices"
	"time"
)

type Post struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user"`
	Image     string    `db:"image" json:"-"` // Storage key
	ImageText string    `db:"image_text" json:"imageText"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Computed fields (not in database)
	Likes       []string      `db:"-" json:"likes"`
	Comments    []string      `db:"-" json:"comments"`
	Author      *Author       `db:"-" json:"author,omitempty"`
	ImageURL    string        `db:"-" json:"imageUrl"`
	CaptionHTML template.HTML `db:"-" json:"-"`
}

// LikedBy reports whether the user with the given id liked the post.
func (p *Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// OwnedBy reports whether the post belongs to the user with the given id.
func (p *Post) OwnedBy(userID string) bool {
	return p.UserID == userID
}

// LikeResult reports the state after a like toggle.
type LikeResult struct {
	Liked     bool
	LikeCount int
}
