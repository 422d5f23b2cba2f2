package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/samirrijal/binroute/internal/core/domain"
	"github.com/samirrijal/binroute/internal/core/usecases"
)

// --- Mock UserRepository ---

type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, errors.New("no rows")
	}
	return u, nil
}

// --- Mock SessionStore ---

type mockSessionStore struct {
	sessions map[string]*domain.Session
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionStore) Create(ctx context.Context, s *domain.Session, ttl time.Duration) error {
	m.sessions[s.Token] = s
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	s, ok := m.sessions[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

// --- Tests ---

func TestAuthService_SignUp_HashesPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := usecases.NewAuthService(repo, newMockSessionStore(), time.Hour)

	if err := svc.SignUp(context.Background(), "alice", "s3cret", domain.RoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.users["alice"]
	if stored == nil {
		t.Fatal("user was not persisted")
	}
	if stored.PasswordHash == "s3cret" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestAuthService_SignUp_DuplicateUsername(t *testing.T) {
	repo := newMockUserRepo()
	svc := usecases.NewAuthService(repo, newMockSessionStore(), time.Hour)

	_ = svc.SignUp(context.Background(), "alice", "one", domain.RoleAdmin)
	err := svc.SignUp(context.Background(), "alice", "two", domain.RoleWasteCollector)
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_SignUp_UnknownRole(t *testing.T) {
	svc := usecases.NewAuthService(newMockUserRepo(), newMockSessionStore(), time.Hour)
	if err := svc.SignUp(context.Background(), "bob", "pw", "superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockUserRepo()
	store := newMockSessionStore()
	svc := usecases.NewAuthService(repo, store, time.Hour)

	_ = svc.SignUp(context.Background(), "collector1", "pickup", domain.RoleWasteCollector)

	session, err := svc.Login(context.Background(), "collector1", "pickup", domain.RoleWasteCollector)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Token == "" {
		t.Error("session token must not be empty")
	}
	if session.Role != domain.RoleWasteCollector {
		t.Errorf("unexpected role %q", session.Role)
	}
	if _, err := store.Get(context.Background(), session.Token); err != nil {
		t.Errorf("session not stored: %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := usecases.NewAuthService(newMockUserRepo(), newMockSessionStore(), time.Hour)
	_ = svc.SignUp(context.Background(), "alice", "right", domain.RoleAdmin)

	_, err := svc.Login(context.Background(), "alice", "wrong", domain.RoleAdmin)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_RoleMismatch(t *testing.T) {
	svc := usecases.NewAuthService(newMockUserRepo(), newMockSessionStore(), time.Hour)
	_ = svc.SignUp(context.Background(), "alice", "pw", domain.RoleAdmin)

	_, err := svc.Login(context.Background(), "alice", "pw", domain.RoleWasteCollector)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong role, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	store := newMockSessionStore()
	svc := usecases.NewAuthService(newMockUserRepo(), store, time.Hour)
	_ = svc.SignUp(context.Background(), "alice", "pw", domain.RoleAdmin)

	session, _ := svc.Login(context.Background(), "alice", "pw", domain.RoleAdmin)
	if err := svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(context.Background(), session.Token); err == nil {
		t.Error("session should be gone after logout")
	}
}
