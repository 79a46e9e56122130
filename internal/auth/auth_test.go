package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/splitchain/internal/models"
)

// memStorage is an in-memory AccountStorage for tests.
type memStorage struct {
	byEmail map[string]*models.Account
	byID    map[string]*models.Account
}

func newMemStorage() *memStorage {
	return &memStorage{
		byEmail: make(map[string]*models.Account),
		byID:    make(map[string]*models.Account),
	}
}

func (m *memStorage) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = "acct-" + account.Email
	}
	if _, exists := m.byEmail[account.Email]; exists {
		return errors.New("UNIQUE constraint failed: accounts.email")
	}
	m.byEmail[account.Email] = account
	m.byID[account.ID] = account
	return nil
}

func (m *memStorage) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return m.byEmail[email], nil
}

func (m *memStorage) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	return m.byID[id], nil
}

func TestPasswordAuthenticator(t *testing.T) {
	storage := newMemStorage()
	a := NewPasswordAuthenticator(storage)
	ctx := context.Background()

	t.Run("register hashes the password", func(t *testing.T) {
		account, err := a.Register(ctx, "alice@example.com", "Alice", "xion1alice", "correct horse battery")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if account.PasswordHash == "correct horse battery" {
			t.Error("password stored in plaintext")
		}
		if account.Address != "xion1alice" {
			t.Errorf("unexpected address: %s", account.Address)
		}
	})

	t.Run("authenticate round-trips", func(t *testing.T) {
		account, err := a.Authenticate(ctx, "alice@example.com", "correct horse battery")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if account.Email != "alice@example.com" {
			t.Errorf("unexpected account: %+v", account)
		}

		if _, err := a.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := a.Authenticate(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		if _, err := a.Register(ctx, "bob@example.com", "Bob", "xion1bob", "short"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("missing address rejected", func(t *testing.T) {
		if _, err := a.Register(ctx, "bob@example.com", "Bob", "  ", "long enough password"); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress, got %v", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		if _, err := a.Register(ctx, "alice@example.com", "Alice 2", "xion1other", "long enough password"); !errors.Is(err, ErrEmailExists) {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}
	})
}

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	account := &models.Account{
		ID:      "acct-1",
		Email:   "alice@example.com",
		Address: "xion1alice",
	}

	token, err := manager.Generate(account)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.AccountID != "acct-1" || claims.Address != "xion1alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := NewJWTManager("different-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		tok, err := expired.Generate(account)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := manager.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
