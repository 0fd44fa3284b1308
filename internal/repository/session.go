package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/pixaro/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
)

type SessionRepository interface {
	Create(session *model.Session) error
	Active(id string) (*model.Session, error)
	Delete(id string) error
	DeleteByUser(userID string) error
	DeleteExpired() (int64, error)
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(query, session.ID, session.UserID, session.ExpiresAt.UTC(), session.CreatedAt)
	return err
}

// Active returns the session only if it has not expired.
func (r *sessionRepository) Active(id string) (*model.Session, error) {
	var s model.Session
	err := r.db.Get(&s, `SELECT * FROM sessions WHERE id = $1 AND expires_at > $2`, id, time.Now().UTC())
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *sessionRepository) DeleteByUser(userID string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

// DeleteExpired removes sessions past their expiry and returns how many were removed.
func (r *sessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at <= $1`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
