package usecases

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/samirrijal/binroute/internal/core/domain"
	"github.com/samirrijal/binroute/internal/core/ports"
)

// AuthService handles signup, login, and session management.
type AuthService struct {
	users      ports.UserRepository
	sessions   ports.SessionStore
	sessionTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, sessionTTL time.Duration) *AuthService {
	return &AuthService{users: users, sessions: sessions, sessionTTL: sessionTTL}
}

// SignUp registers a new account. Passwords are stored as bcrypt hashes.
func (s *AuthService) SignUp(ctx context.Context, username, password, role string) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password must not be empty")
	}
	if role != domain.RoleAdmin && role != domain.RoleWasteCollector {
		return fmt.Errorf("unknown role %q", role)
	}

	if existing, err := s.users.GetByUsername(ctx, username); err == nil && existing != nil {
		return domain.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
}

// Login verifies credentials for the requested role and opens a session.
// bcrypt's comparison is constant-time; unknown user, wrong role, and wrong
// password are all reported as domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password, role string) (*domain.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil || user.Role != role {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("session token: %w", err)
	}

	session := &domain.Session{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	if err := s.sessions.Create(ctx, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

// SessionTTL returns how long issued sessions live.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Resolve maps a session cookie token back to the stored session.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrInvalidCredentials
	}
	return s.sessions.Get(ctx, token)
}

// Logout discards the session for the given token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
