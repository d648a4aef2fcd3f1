package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkravets/tradesim/internal/logger"
	"github.com/mkravets/tradesim/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// AccountReader defines read-only operations for accounts.
type AccountReader interface {
	GetByUsernameOrEmail(ctx context.Context, username *string, email *string) (*models.AccountDB, error)
}

// AccountCreator defines the account creation operation.
type AccountCreator interface {
	Save(ctx context.Context, username, passwordHash, email string, startingBalance float64) (uuid.UUID, error)
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID) (string, error)
}

// AuthService handles registration and login. New accounts are created with
// the configured starting virtual balance.
type AuthService struct {
	reader          AccountReader
	writer          AccountCreator
	jwt             JWTGenerator
	startingBalance float64
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader AccountReader, writer AccountCreator, jwt JWTGenerator, startingBalance float64) *AuthService {
	return &AuthService{
		reader:          reader,
		writer:          writer,
		jwt:             jwt,
		startingBalance: startingBalance,
	}
}

// Register creates a new account and grants it the starting balance.
func (svc *AuthService) Register(ctx context.Context, username, password, email string) error {
	account, err := svc.reader.GetByUsernameOrEmail(ctx, &username, &email)
	if err != nil {
		logger.Log.Errorw("failed to check account exists", "err", err)
		return err
	}
	if account != nil {
		logger.Log.Warnw("account already exists", "username", username, "email", email)
		return ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	if _, err := svc.writer.Save(ctx, username, string(hashedPassword), email, svc.startingBalance); err != nil {
		logger.Log.Errorw("failed to save account", "err", err)
		return err
	}

	return nil
}

// Login authenticates an account and returns a JWT token.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	account, err := svc.reader.GetByUsernameOrEmail(ctx, &username, nil)
	if err != nil {
		logger.Log.Errorw("failed to get account", "err", err)
		return "", err
	}
	if account == nil {
		logger.Log.Warnw("account does not exist", "username", username)
		return "", ErrUserDoesNotExist
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		logger.Log.Warnw("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, account.AccountID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}
