package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/pixaro/internal/model"
	"github.com/templui/pixaro/internal/repository"
	"github.com/templui/pixaro/internal/testutil"
)

func createUser(t *testing.T, repo repository.UserRepository, username string) *model.User {
	t.Helper()
	hash := "hash"
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: &hash,
		Fullname:     "Test " + username,
		Email:        username + "@example.com",
	}
	require.NoError(t, repo.Create(user))
	return user
}

func createPost(t *testing.T, repo repository.PostRepository, userID string, createdAt time.Time) *model.Post {
	t.Helper()
	post := &model.Post{
		ID:        uuid.New().String(),
		UserID:    userID,
		Image:     "public/posts/" + uuid.New().String() + ".png",
		ImageText: "caption",
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Create(post))
	return post
}

type repos struct {
	db       *sqlx.DB
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	sessions repository.SessionRepository
}

func setup(t *testing.T) repos {
	database := testutil.NewDB(t)
	return repos{
		db:       database,
		users:    repository.NewUserRepository(database),
		posts:    repository.NewPostRepository(database),
		comments: repository.NewCommentRepository(database),
		sessions: repository.NewSessionRepository(database),
	}
}

func TestUserCreateDuplicates(t *testing.T) {
	r := setup(t)
	alice := createUser(t, r.users, "alice")

	dupEmail := &model.User{ID: uuid.New().String(), Username: "other", Fullname: "Other", Email: alice.Email}
	assert.ErrorIs(t, r.users.Create(dupEmail), repository.ErrDuplicateEmail)

	dupName := &model.User{ID: uuid.New().String(), Username: "alice", Fullname: "Other", Email: "other@example.com"}
	assert.ErrorIs(t, r.users.Create(dupName), repository.ErrDuplicateUsername)

	found, err := r.users.ByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)
	assert.True(t, found.HasPassword())

	_, err = r.users.ByID("missing")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	exists, err := r.users.UsernameExists("alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserUpdateProfilePicture(t *testing.T) {
	r := setup(t)
	alice := createUser(t, r.users, "alice")

	require.NoError(t, r.users.UpdateProfilePicture(alice.ID, "public/profile-pictures/a.png"))
	found, err := r.users.ByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "public/profile-pictures/a.png", found.ProfilePicture)

	assert.ErrorIs(t, r.users.UpdateProfilePicture("missing", "x"), repository.ErrUserNotFound)
}

func TestToggleFollow(t *testing.T) {
	r := setup(t)
	alice := createUser(t, r.users, "alice")
	bob := createUser(t, r.users, "bob")

	res, err := r.users.ToggleFollow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, &model.FollowResult{IsFollowing: true, FollowersCount: 1, FollowingCount: 1}, res)

	require.NoError(t, r.users.LoadRelations(alice))
	require.NoError(t, r.users.LoadRelations(bob))
	assert.Equal(t, []string{bob.ID}, alice.Following)
	assert.Equal(t, []string{alice.ID}, bob.Followers)
	assert.Empty(t, bob.Following)

	res, err = r.users.ToggleFollow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, &model.FollowResult{IsFollowing: false, FollowersCount: 0, FollowingCount: 0}, res)
}

func TestFeedOrderAndLookup(t *testing.T) {
	r := setup(t)
	alice := createUser(t, r.users, "alice")
	base := time.Now().UTC().Add(-time.Hour)

	oldest := createPost(t, r.posts, alice.ID, base)
	middle := createPost(t, r.posts, alice.ID, base.Add(time.Minute))
	newest := createPost(t, r.posts, alice.ID, base.Add(2*time.Minute))

	feed, err := r.posts.Feed(10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, []string{feed[0].ID, feed[1].ID, feed[2].ID})
	assert.Equal(t, "alice", feed[0].Author.Username)

	page, err := r.posts.Feed(1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, middle.ID, page[0].ID)

	byIDs, err := r.posts.ByIDs([]string{oldest.ID, "missing", newest.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, oldest.ID, byIDs[0].ID)
	assert.Equal(t, newest.ID, byIDs[1].ID)

	timeline, err := r.posts.Timeline(2)
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, newest.ID, timeline[0].ID)

	count, err := r.posts.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, r.users.LoadRelations(alice))
	assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, alice.Posts)
}

func TestToggleLikeNeverDuplicates(t *testing.T) {
	r := setup(t)
	alice := createUser(t, r.users, "alice")
	bob := createUser(t, r.users, "bob")
	post := createPost(t, r.posts, alice.ID, time.Now().UTC())

	res, err := r.posts.ToggleLike(post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, &model.LikeResult{Liked: true, LikeCount: 1}, res)

	res, err = r.posts.ToggleLike(post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.LikeCount)

	loaded, err := r.posts.ByID(post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, loaded.Likes)

	res, err = r.posts.ToggleLike(post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, &model.LikeResult{Liked: false, LikeCount: 1}, res)
}

func TestDeletePostCascades(t *testing.T) {
	r := setup(t)
	alice := createUser(t, r.users, "alice")
	post := createPost(t, r.posts, alice.ID, time.Now().UTC())

	_, err := r.posts.ToggleLike(post.ID, alice.ID)
	require.NoError(t, err)
	comment := &model.Comment{ID: uuid.New().String(), PostID: post.ID, UserID: alice.ID, Text: "nice"}
	require.NoError(t, r.comments.Create(comment))

	require.NoError(t, r.posts.Delete(post.ID))

	_, err = r.posts.ByID(post.ID)
	assert.ErrorIs(t, err, repository.ErrPostNotFound)
	_, err = r.comments.ByID(comment.ID)
	assert.ErrorIs(t, err, repository.ErrCommentNotFound)

	var likes int
	require.NoError(t, r.db.Get(&likes, `SELECT COUNT(*) FROM likes`))
	assert.Zero(t, likes)

	require.NoError(t, r.users.LoadRelations(alice))
	assert.Empty(t, alice.Posts)

	assert.ErrorIs(t, r.posts.Delete(post.ID), repository.ErrPostNotFound)
}

func TestComments(t *testing.T) {
	r := setup(t)
	alice := createUser(t, r.users, "alice")
	post := createPost(t, r.posts, alice.ID, time.Now().UTC())
	base := time.Now().UTC().Add(-time.Hour)

	first := &model.Comment{ID: uuid.New().String(), PostID: post.ID, UserID: alice.ID, Text: "first", CreatedAt: base}
	second := &model.Comment{ID: uuid.New().String(), PostID: post.ID, UserID: alice.ID, Text: "second", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, r.comments.Create(first))
	require.NoError(t, r.comments.Create(second))

	comments, err := r.comments.ByPost(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, "alice", comments[0].Author.Username)

	loaded, err := r.posts.ByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, loaded.Comments)

	require.NoError(t, r.comments.Delete(first.ID))
	count, err := r.comments.CountByPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, r.comments.Delete(first.ID), repository.ErrCommentNotFound)
}

func TestSessions(t *testing.T) {
	r := setup(t)
	alice := createUser(t, r.users, "alice")

	live := &model.Session{ID: "live", UserID: alice.ID, ExpiresAt: time.Now().Add(time.Hour)}
	expired := &model.Session{ID: "expired", UserID: alice.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, r.sessions.Create(live))
	require.NoError(t, r.sessions.Create(expired))

	found, err := r.sessions.Active("live")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.UserID)

	_, err = r.sessions.Active("expired")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	removed, err := r.sessions.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, r.sessions.Delete("live"))
	_, err = r.sessions.Active("live")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	require.NoError(t, r.sessions.Create(&model.Session{ID: "again", UserID: alice.ID, ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, r.sessions.DeleteByUser(alice.ID))
	_, err = r.sessions.Active("again")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}
