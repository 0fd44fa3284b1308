package model

import (
	"slices"
	"time"
)

type User struct {
	ID             string    `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	PasswordHash   *string   `db:"password_hash" json:"-"` // Nullable for OAuth-only users
	Fullname       string    `db:"fullname" json:"fullname"`
	Email          string    `db:"email" json:"-"`
	ProfilePicture string    `db:"profile_picture" json:"-"` // Storage key, empty = default avatar
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"-"`

	// Computed fields (not in database)
	Posts             []string `db:"-" json:"-"`
	Following         []string `db:"-" json:"-"`
	Followers         []string `db:"-" json:"-"`
	ProfilePictureURL string   `db:"-" json:"profilePictureUrl,omitempty"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsFollowing reports whether u follows the user with the given id.
func (u *User) IsFollowing(userID string) bool {
	return slices.Contains(u.Following, userID)
}

// Author is the public slice of a user embedded in posts and comments.
type Author struct {
	ID                string `db:"id" json:"id"`
	Username          string `db:"username" json:"username"`
	Fullname          string `db:"fullname" json:"fullname"`
	ProfilePicture    string `db:"profile_picture" json:"-"`
	ProfilePictureURL string `db:"-" json:"profilePictureUrl,omitempty"`
}

// FollowResult reports the state after a follow toggle.
type FollowResult struct {
	IsFollowing    bool
	FollowersCount int
	FollowingCount int
}
