package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/pixaro/internal/model"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	ByID(id string) (*model.Comment, error)
	ByPost(postID string) ([]*model.Comment, error)
	CountByPost(postID string) (int, error)
	Delete(id string) error
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

type commentRow struct {
	model.Comment
	AuthorUsername       string `db:"author_username"`
	AuthorFullname       string `db:"author_fullname"`
	AuthorProfilePicture string `db:"author_profile_picture"`
}

const commentSelect = `SELECT c.*, u.username AS author_username, u.fullname AS author_fullname, u.profile_picture AS author_profile_picture
	FROM comments c JOIN users u ON u.id = c.user_id`

func (r *commentRepository) Create(comment *model.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO comments (id, post_id, user_id, text, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(query, comment.ID, comment.PostID, comment.UserID, comment.Text, comment.CreatedAt)
	return err
}

func (r *commentRepository) ByID(id string) (*model.Comment, error) {
	row := &commentRow{}
	err := r.db.Get(row, commentSelect+` WHERE c.id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toComment(), nil
}

// ByPost returns the comments of a post, newest first.
func (r *commentRepository) ByPost(postID string) ([]*model.Comment, error) {
	var rows []*commentRow
	err := r.db.Select(&rows, commentSelect+` WHERE c.post_id = $1 ORDER BY c.created_at DESC, c.id DESC`, postID)
	if err != nil {
		return nil, err
	}

	comments := make([]*model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, nil
}

func (r *commentRepository) CountByPost(postID string) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID)
	return count, err
}

func (r *commentRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRows(result, ErrCommentNotFound)
}

func (row *commentRow) toComment() *model.Comment {
	comment := row.Comment
	comment.Author = &model.Author{
		ID:             row.UserID,
		Username:       row.AuthorUsername,
		Fullname:       row.AuthorFullname,
		ProfilePicture: row.AuthorProfilePicture,
	}
	return &comment
}
