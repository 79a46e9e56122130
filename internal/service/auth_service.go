package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/splitchain/internal/auth"
	"github.com/mmynk/splitchain/internal/models"
)

// AuthService handles gateway account registration and login.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	accounts      auth.AccountStorage
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, accounts auth.AccountStorage, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		accounts:      accounts,
		logger:        logger,
	}
}

// Session bundles an account with its signed token.
type Session struct {
	Account *models.Account
	Token   string
}

// Register creates a new account bound to a ledger address and returns a
// signed session.
func (s *AuthService) Register(ctx context.Context, email, displayName, address, password string) (*Session, error) {
	s.logger.Info("Register request", "email", email, "address", address)

	if email == "" || displayName == "" {
		return nil, auth.ErrInvalidCredentials
	}

	account, err := s.authenticator.Register(ctx, email, displayName, address, password)
	if err != nil {
		s.logger.Error("Registration failed", "email", email, "error", err)
		return nil, err
	}

	token, err := s.jwtManager.Generate(account)
	if err != nil {
		s.logger.Error("Failed to generate token", "account_id", account.ID, "error", err)
		return nil, err
	}

	s.logger.Info("Account registered", "account_id", account.ID, "email", account.Email, "address", account.Address)
	return &Session{Account: account, Token: token}, nil
}

// Login authenticates an account and returns a signed session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	s.logger.Info("Login request", "email", email)

	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	account, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, auth.ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(account)
	if err != nil {
		s.logger.Error("Failed to generate token", "account_id", account.ID, "error", err)
		return nil, err
	}

	s.logger.Info("Login successful", "account_id", account.ID, "address", account.Address)
	return &Session{Account: account, Token: token}, nil
}

// CurrentAccount returns the full account row for an authenticated session.
func (s *AuthService) CurrentAccount(ctx context.Context, accountID string) (*models.Account, error) {
	if accountID == "" {
		return nil, auth.ErrMissingToken
	}
	account, err := s.accounts.AccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, auth.ErrInvalidToken
	}
	return account, nil
}
