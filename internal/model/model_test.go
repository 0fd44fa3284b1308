package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserHasPassword(t *testing.T) {
	empty := ""
	hash := "$2a$10$abc"

	assert.False(t, (&User{}).HasPassword())
	assert.False(t, (&User{PasswordHash: &empty}).HasPassword())
	assert.True(t, (&User{PasswordHash: &hash}).HasPassword())
}

func TestPostLikedByAndOwnedBy(t *testing.T) {
	p := &Post{UserID: "owner", Likes: []string{"a", "b"}}

	assert.True(t, p.LikedBy("a"))
	assert.False(t, p.LikedBy("owner"))
	assert.True(t, p.OwnedBy("owner"))
	assert.False(t, p.OwnedBy("a"))
}

func TestUserIsFollowing(t *testing.T) {
	u := &User{Following: []string{"x"}}
	assert.True(t, u.IsFollowing("x"))
	assert.False(t, u.IsFollowing("y"))
}

func TestSessionIsExpired(t *testing.T) {
	assert.True(t, (&Session{ExpiresAt: time.Now().Add(-time.Minute)}).IsExpired())
	assert.False(t, (&Session{ExpiresAt: time.Now().Add(time.Minute)}).IsExpired())
}
