package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DTMaciejM/pracosfera-main/internal/persistence"
)

type credentialStoreStub struct {
	users map[string]persistence.User
}

func (s *credentialStoreStub) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *credentialStoreStub) GetUser(ctx context.Context, id string) (persistence.User, error) {
	u, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return u, nil
}

type sessionStoreStub struct {
	sessions map[string]persistence.Session
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: map[string]persistence.Session{}}
}

func (s *sessionStoreStub) CreateSession(ctx context.Context, session persistence.Session) error {
	s.sessions[session.Token] = session
	return nil
}

func (s *sessionStoreStub) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	session, ok := s.sessions[token]
	if !ok {
		return persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[token] = session
	return nil
}

func (s *sessionStoreStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	for token, session := range s.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

func newTestAuthService(sessions *sessionStoreStub, now func() time.Time) *AuthService {
	credentials := &credentialStoreStub{users: map[string]persistence.User{
		"u-1": {ID: "u-1", Email: "worker@example.com", Role: persistence.RoleWorker, PasswordHash: "stored"},
	}}
	verify := func(hashedPassword, password string) error {
		if hashedPassword == "stored" && password == "correct horse" {
			return nil
		}
		return ErrInvalidCredentials
	}
	return NewAuthService(credentials, sessions, verify,
		func() string { return "s-1" }, func() string { return "token-1" }, now, time.Hour, nil)
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("valid credentials issue a session", func(t *testing.T) {
		t.Parallel()
		sessions := newSessionStoreStub()
		svc := newTestAuthService(sessions, clock)

		result, err := svc.Authenticate(context.Background(), " Worker@Example.com ", "correct horse")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.User.ID != "u-1" || result.Session.Token != "token-1" {
			t.Fatalf("unexpected result %+v", result)
		}
		if !result.Session.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("unexpected expiry %v", result.Session.ExpiresAt)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		svc := newTestAuthService(newSessionStoreStub(), clock)

		_, err := svc.Authenticate(context.Background(), "worker@example.com", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		svc := newTestAuthService(newSessionStoreStub(), clock)

		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "correct horse")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	issue := func(t *testing.T, svc *AuthService) string {
		t.Helper()
		result, err := svc.Authenticate(context.Background(), "worker@example.com", "correct horse")
		if err != nil {
			t.Fatalf("authenticate: %v", err)
		}
		return result.Session.Token
	}

	t.Run("valid token resolves the principal", func(t *testing.T) {
		t.Parallel()
		svc := newTestAuthService(newSessionStoreStub(), clock)
		token := issue(t, svc)

		principal, err := svc.ValidateSession(context.Background(), token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if principal.UserID != "u-1" || principal.Role != persistence.RoleWorker {
			t.Fatalf("unexpected principal %+v", principal)
		}
	})

	t.Run("revoked token", func(t *testing.T) {
		t.Parallel()
		svc := newTestAuthService(newSessionStoreStub(), clock)
		token := issue(t, svc)

		if err := svc.RevokeSession(context.Background(), token); err != nil {
			t.Fatalf("revoke: %v", err)
		}
		if _, err := svc.ValidateSession(context.Background(), token); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		current := now
		svc := newTestAuthService(newSessionStoreStub(), func() time.Time { return current })
		token := issue(t, svc)

		current = now.Add(2 * time.Hour)
		if _, err := svc.ValidateSession(context.Background(), token); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("revoking an unknown token is benign", func(t *testing.T) {
		t.Parallel()
		svc := newTestAuthService(newSessionStoreStub(), clock)
		if err := svc.RevokeSession(context.Background(), "missing"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
