package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	msgCredentialsRequired = "Email and password are required."
	msgEmailRequired       = "Email is required."
	msgInvalidEmail        = "Invalid email address."
	msgUserExists          = "User already exists."
)

// UserService registers users, issues tokens and serves profiles.
type UserService struct {
	store           storage.UserStore
	tokens          *auth.Tokens
	requirePassword bool
	logger          *log.Logger
	now             func() time.Time
}

// NewUserService wires a service. With requirePassword unset, Login only
// checks that the email is registered.
func NewUserService(store storage.UserStore, tokens *auth.Tokens, requirePassword bool, logger *log.Logger) *UserService {
	if logger == nil {
		logger = log.Discard()
	}
	return &UserService{
		store:           store,
		tokens:          tokens,
		requirePassword: requirePassword,
		logger:          logger.WithComponent(log.ComponentAuth),
		now:             time.Now,
	}
}

// Register creates an account. A taken email wraps core.ErrConflict.
func (s *UserService) Register(ctx context.Context, email, password string) (core.User, error) {
	email = core.NormalizeEmail(email)
	if email == "" || password == "" {
		return core.User{}, core.NewValidationError(msgCredentialsRequired)
	}
	if !core.ValidEmail(email) {
		return core.User{}, core.NewValidationError(msgInvalidEmail)
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return core.User{}, fmt.Errorf("%s: %w", msgUserExists, core.ErrConflict)
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, err
	}
	u := core.User{
		UID:          storage.NewID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return core.User{}, fmt.Errorf("%s: %w", msgUserExists, core.ErrConflict)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, u.UID)
	return u, nil
}

// Login returns a bearer token for the account registered under email.
// Unknown accounts and wrong passwords wrap core.ErrAuthentication.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = core.NormalizeEmail(email)
	if email == "" {
		return "", core.NewValidationError(msgEmailRequired)
	}
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return "", fmt.Errorf("no account for %s: %w", email, core.ErrAuthentication)
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if s.requirePassword && !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.WarnContext(ctx, "Password mismatch", log.FieldUserID, u.UID)
		return "", fmt.Errorf("password mismatch: %w", core.ErrAuthentication)
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, u.UID)
	return token, nil
}

// Profile returns the stored account for uid.
func (s *UserService) Profile(ctx context.Context, uid string) (core.User, error) {
	u, err := s.store.GetUser(ctx, strings.TrimSpace(uid))
	if err != nil {
		return core.User{}, err
	}
	return u, nil
}
