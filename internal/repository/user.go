package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/pixaro/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByUsername(username string) (*model.User, error)
	ByEmail(email string) (*model.User, error)
	UsernameExists(username string) (bool, error)
	Update(user *model.User) error
	UpdateProfilePicture(userID, key string) error
	LoadRelations(user *model.User) error
	ToggleFollow(followerID, followingID string) (*model.FollowResult, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	query := `INSERT INTO users (id, username, password_hash, fullname, email, profile_picture, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Fullname,
		user.Email,
		user.ProfilePicture,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		if violatedColumn(err, "username") {
			return ErrDuplicateUsername
		}
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	return r.getBy(`SELECT * FROM users WHERE id = $1`, id)
}

func (r *userRepository) ByUsername(username string) (*model.User, error) {
	return r.getBy(`SELECT * FROM users WHERE username = $1`, username)
}

func (r *userRepository) ByEmail(email string) (*model.User, error) {
	return r.getBy(`SELECT * FROM users WHERE email = $1`, email)
}

func (r *userRepository) getBy(query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.Get(user, query, arg)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) UsernameExists(username string) (bool, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM users WHERE username = $1`, username)
	return count > 0, err
}

func (r *userRepository) Update(user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET fullname = $1, password_hash = $2, profile_picture = $3, updated_at = $4 WHERE id = $5`

	result, err := r.db.Exec(query, user.Fullname, user.PasswordHash, user.ProfilePicture, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}
	return expectRows(result, ErrUserNotFound)
}

func (r *userRepository) UpdateProfilePicture(userID, key string) error {
	query := `UPDATE users SET profile_picture = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, key, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return expectRows(result, ErrUserNotFound)
}

// LoadRelations fills the Posts, Following and Followers id arrays.
func (r *userRepository) LoadRelations(user *model.User) error {
	user.Posts = []string{}
	user.Following = []string{}
	user.Followers = []string{}

	err := r.db.Select(&user.Posts, `SELECT id FROM posts WHERE user_id = $1 ORDER BY created_at DESC`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}

	err = r.db.Select(&user.Following, `SELECT following_id FROM follows WHERE follower_id = $1 ORDER BY created_at`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load following: %w", err)
	}

	err = r.db.Select(&user.Followers, `SELECT follower_id FROM follows WHERE following_id = $1 ORDER BY created_at`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load followers: %w", err)
	}

	return nil
}

// ToggleFollow removes the follow edge if present, otherwise creates it.
// Both sides of the relationship live in one row, so they can't drift apart.
func (r *userRepository) ToggleFollow(followerID, followingID string) (*model.FollowResult, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`, followerID, followingID)
	if err != nil {
		return nil, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if removed == 0 {
		_, err = tx.Exec(`INSERT INTO follows (follower_id, following_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			followerID, followingID, time.Now().UTC())
		if err != nil {
			return nil, err
		}
	}

	res := &model.FollowResult{IsFollowing: removed == 0}
	err = tx.Get(&res.FollowersCount, `SELECT COUNT(*) FROM follows WHERE following_id = $1`, followingID)
	if err != nil {
		return nil, err
	}
	err = tx.Get(&res.FollowingCount, `SELECT COUNT(*) FROM follows WHERE follower_id = $1`, followerID)
	if err != nil {
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}
	return res, nil
}

func expectRows(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
