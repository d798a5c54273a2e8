// Package storage defines the record store ports shared by the backends in
// its subpackages.
package storage

import (
	"context"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// Ports for the record store backends. Lookups of unknown ids or emails
// return errors wrapping core.ErrNotFound; creating a user whose email is
// taken returns one wrapping core.ErrConflict.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) error
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	UserStore interface {
		CreateUser(ctx context.Context, u core.User) error
		GetUser(ctx context.Context, uid string) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
	}

	// Store is a complete backend.
	Store interface {
		TransactionStore
		UserStore
		Ping(ctx context.Context) error
		Close() error
	}
)

// NewID returns a fresh record or user identifier.
func NewID() string {
	return uuid.NewString()
}
