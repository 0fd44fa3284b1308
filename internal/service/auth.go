package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/templui/pixaro/internal/model"
	"github.com/templui/pixaro/internal/repository"
	"github.com/templui/pixaro/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const SessionCookieName = "session"

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrPasswordlessAccount = errors.New("this account signs in with Google or GitHub")
	ErrInvalidSession      = errors.New("invalid or expired session")
	ErrInvalidEmail        = errors.New("invalid email address")
)

type AuthService struct {
	userRepository    repository.UserRepository
	sessionRepository repository.SessionRepository
	emailService      *EmailService
	jwtSecret         string
	isProduction      bool
	sessionExpiry     time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	sessionRepository repository.SessionRepository,
	emailService *EmailService,
	jwtSecret string,
	isProduction bool,
	sessionExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:    userRepository,
		sessionRepository: sessionRepository,
		emailService:      emailService,
		jwtSecret:         jwtSecret,
		isProduction:      isProduction,
		sessionExpiry:     sessionExpiry,
	}
}

type RegisterInput struct {
	Username string
	Fullname string
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	fullname := strings.TrimSpace(in.Fullname)
	email := validation.NormalizeEmail(in.Email)

	if err := invalid("username", validation.ValidateUsername(username)); err != nil {
		return nil, err
	}
	if err := invalid("fullname", validation.ValidateFullname(fullname)); err != nil {
		return nil, err
	}
	if err := invalid("email", validation.ValidateEmail(email)); err != nil {
		return nil, err
	}
	if err := invalid("password", validation.ValidatePassword(in.Password)); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: &hash,
		Fullname:     fullname,
		Email:        email,
	}

	err = s.userRepository.Create(user)
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, invalid("email", ErrEmailAlreadyExists)
	case errors.Is(err, repository.ErrDuplicateUsername):
		return nil, invalid("username", ErrUsernameTaken)
	case err != nil:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = s.emailService.SendWelcomeEmail(ctx, user.Email, user.Fullname)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *AuthService) Login(username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.userRepository.ByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		return nil, ErrPasswordlessAccount
	}

	err = s.ComparePassword(password, *user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// StartSession stores a session row and returns the signed cookie value.
func (s *AuthService) StartSession(user *model.User) (string, time.Time, error) {
	id, err := s.GenerateToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now().UTC()
	session := &model.Session{
		ID:        id,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionExpiry),
		CreatedAt: now,
	}
	err = s.sessionRepository.Create(session)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.GenerateJWT(session)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}

	return token, session.ExpiresAt, nil
}

func (s *AuthService) GenerateJWT(session *model.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid":     session.ID,
		"user_id": session.UserID,
		"exp":     session.ExpiresAt.Unix(),
		"iat":     session.CreatedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// ResolveSession verifies the cookie value and loads the session and its user.
// A valid signature is not enough: the session row must still exist.
func (s *AuthService) ResolveSession(token string) (*model.User, *model.Session, error) {
	claims, err := s.VerifyJWT(token)
	if err != nil {
		return nil, nil, ErrInvalidSession
	}

	sid, _ := claims["sid"].(string)
	userID, _ := claims["user_id"].(string)
	if sid == "" || userID == "" {
		return nil, nil, ErrInvalidSession
	}

	session, err := s.sessionRepository.Active(sid)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil, ErrInvalidSession
		}
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != userID {
		return nil, nil, ErrInvalidSession
	}

	user, err := s.userRepository.ByID(session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidSession
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, session, nil
}

// EndSession deletes the session behind token. Unknown or invalid tokens are ignored.
func (s *AuthService) EndSession(token string) error {
	claims, err := s.VerifyJWT(token)
	if err != nil {
		return nil
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil
	}
	return s.sessionRepository.Delete(sid)
}

// PruneSessions deletes expired sessions and returns how many were removed.
func (s *AuthService) PruneSessions(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed, err := s.sessionRepository.DeleteExpired()
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	if removed > 0 {
		slog.Info("expired sessions pruned", "count", removed)
	}
	return removed, nil
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// AuthenticateOAuth handles OAuth authentication (Google, GitHub)
// It creates a new passwordless user if the email is unknown, or returns the existing one
func (s *AuthService) AuthenticateOAuth(ctx context.Context, email, name, provider string) (*model.User, error) {
	email = validation.NormalizeEmail(email)

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(email)
	if err == nil {
		slog.Info("user authenticated via OAuth", "user_id", user.ID, "provider", provider)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to lookup user: %w", err)
	}

	username, err := s.uniqueUsername(email)
	if err != nil {
		return nil, err
	}

	fullname := strings.TrimSpace(name)
	if validation.ValidateFullname(fullname) != nil {
		fullname = username
	}

	user = &model.User{
		ID:       uuid.New().String(),
		Username: username,
		Fullname: fullname,
		Email:    email,
		// password_hash is NULL for OAuth accounts
	}

	err = s.userRepository.Create(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = s.emailService.SendWelcomeEmail(ctx, user.Email, user.Fullname)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
	}

	slog.Info("new OAuth user created", "user_id", user.ID, "username", username, "provider", provider)
	return user, nil
}

var usernameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_.]+`)

// uniqueUsername derives a username from the local part of an email,
// appending a number when the name is taken.
func (s *AuthService) uniqueUsername(email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := usernameUnsafe.ReplaceAllString(local, "")
	if len(base) > validation.UsernameMaxLength-4 {
		base = base[:validation.UsernameMaxLength-4]
	}
	for len(base) < validation.UsernameMinLength {
		base += "_"
	}

	candidate := base
	for i := 1; i <= 1000; i++ {
		exists, err := s.userRepository.UsernameExists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
	return "", fmt.Errorf("could not derive a free username for %s", email)
}
