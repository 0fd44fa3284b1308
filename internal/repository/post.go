package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/pixaro/internal/model"
)

var (
	ErrPostNotFound = errors.New("post not found")
)

type PostRepository interface {
	Create(post *model.Post) error
	ByID(id string) (*model.Post, error)
	ByIDs(ids []string) ([]*model.Post, error)
	Feed(limit, offset int) ([]*model.Post, error)
	ByUser(userID string) ([]*model.Post, error)
	Count() (int, error)
	Timeline(limit int) ([]TimelineEntry, error)
	Delete(id string) error
	ToggleLike(postID, userID string) (*model.LikeResult, error)
}

// TimelineEntry is the minimal projection used to rebuild the feed cache.
type TimelineEntry struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postRow is a post joined with its author's public fields.
type postRow struct {
	model.Post
	AuthorUsername       string `db:"author_username"`
	AuthorFullname       string `db:"author_fullname"`
	AuthorProfilePicture string `db:"author_profile_picture"`
}

const postSelect = `SELECT p.*, u.username AS author_username, u.fullname AS author_fullname, u.profile_picture AS author_profile_picture
	FROM posts p JOIN users u ON u.id = p.user_id`

func (r *postRepository) Create(post *model.Post) error {
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = now
	}

	query := `INSERT INTO posts (id, user_id, image, image_text, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query, post.ID, post.UserID, post.Image, post.ImageText, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return err
	}

	post.Likes = []string{}
	post.Comments = []string{}
	return nil
}

func (r *postRepository) ByID(id string) (*model.Post, error) {
	row := &postRow{}
	err := r.db.Get(row, postSelect+` WHERE p.id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	posts := []*model.Post{row.toPost()}
	err = r.loadRelations(posts)
	if err != nil {
		return nil, err
	}
	return posts[0], nil
}

// ByIDs returns the posts in the order of ids, skipping ids that no longer exist.
func (r *postRepository) ByIDs(ids []string) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}

	query, args, err := sqlx.In(postSelect+` WHERE p.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var rows []*postRow
	err = r.db.Select(&rows, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Post, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.toPost()
	}

	posts := make([]*model.Post, 0, len(rows))
	for _, id := range ids {
		if post, ok := byID[id]; ok {
			posts = append(posts, post)
		}
	}

	err = r.loadRelations(posts)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Feed(limit, offset int) ([]*model.Post, error) {
	return r.selectPosts(postSelect+` ORDER BY p.created_at DESC, p.id DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *postRepository) ByUser(userID string) ([]*model.Post, error) {
	return r.selectPosts(postSelect+` WHERE p.user_id = $1 ORDER BY p.created_at DESC, p.id DESC`, userID)
}

func (r *postRepository) selectPosts(query string, args ...any) ([]*model.Post, error) {
	var rows []*postRow
	err := r.db.Select(&rows, query, args...)
	if err != nil {
		return nil, err
	}

	posts := make([]*model.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.toPost()
	}

	err = r.loadRelations(posts)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Count() (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM posts`)
	return count, err
}

// Timeline returns the newest post ids, used to warm the feed cache.
func (r *postRepository) Timeline(limit int) ([]TimelineEntry, error) {
	var entries []TimelineEntry
	err := r.db.Select(&entries, `SELECT id, created_at FROM posts ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	return entries, err
}

// Delete removes the post. Likes and comments go with it (ON DELETE CASCADE).
func (r *postRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRows(result, ErrPostNotFound)
}

// ToggleLike unlikes the post if the user already liked it, otherwise likes it.
func (r *postRepository) ToggleLike(postID, userID string) (*model.LikeResult, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return nil, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if removed == 0 {
		_, err = tx.Exec(`INSERT INTO likes (post_id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			postID, userID, time.Now().UTC())
		if err != nil {
			return nil, err
		}
	}

	res := &model.LikeResult{Liked: removed == 0}
	err = tx.Get(&res.LikeCount, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID)
	if err != nil {
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}
	return res, nil
}

// loadRelations fills Likes and Comments for a batch of posts with two queries.
func (r *postRepository) loadRelations(posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	byID := make(map[string]*model.Post, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
		post.Likes = []string{}
		post.Comments = []string{}
		byID[post.ID] = post
	}

	type edge struct {
		PostID string `db:"post_id"`
		ID     string `db:"id"`
	}

	var likes []edge
	query, args, err := sqlx.In(`SELECT post_id, user_id AS id FROM likes WHERE post_id IN (?) ORDER BY created_at`, ids)
	if err != nil {
		return err
	}
	err = r.db.Select(&likes, r.db.Rebind(query), args...)
	if err != nil {
		return err
	}
	for _, like := range likes {
		byID[like.PostID].Likes = append(byID[like.PostID].Likes, like.ID)
	}

	var comments []edge
	query, args, err = sqlx.In(`SELECT post_id, id FROM comments WHERE post_id IN (?) ORDER BY created_at`, ids)
	if err != nil {
		return err
	}
	err = r.db.Select(&comments, r.db.Rebind(query), args...)
	if err != nil {
		return err
	}
	for _, comment := range comments {
		byID[comment.PostID].Comments = append(byID[comment.PostID].Comments, comment.ID)
	}

	return nil
}

func (row *postRow) toPost() *model.Post {
	post := row.Post
	post.Author = &model.Author{
		ID:             row.UserID,
		Username:       row.AuthorUsername,
		Fullname:       row.AuthorFullname,
		ProfilePicture: row.AuthorProfilePicture,
	}
	return &post
}
