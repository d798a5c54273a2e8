// Package memory is an in-process record store, optionally seeded from a
// JSON file. Data does not survive a restart.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"fintrack/internal/core"
)

type Store struct {
	mu     sync.RWMutex
	txs    []core.Transaction
	users  map[string]core.User
	emails map[string]string
}

func New() *Store {
	return &Store{users: make(map[string]core.User), emails: make(map[string]string)}
}

// Seed is the JSON layout of a seed file.
type Seed struct {
	Users        []core.User        `json:"users"`
	Transactions []core.Transaction `json:"financialData"`
}

// NewFromFile loads path into a new store. A missing path yields an empty
// store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	ctx := context.Background()
	for _, u := range seed.Users {
		if err := s.CreateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	for _, t := range seed.Transactions {
		if err := s.CreateTransaction(ctx, t); err != nil {
			return nil, fmt.Errorf("seed transaction %s: %w", t.ID, err)
		}
	}
	return s, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Transaction{}
	for _, t := range s.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.txs, func(t core.Transaction) bool { return t.ID == id })
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.txs[i], nil
	}
	return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	if t.ID == "" {
		return core.NewValidationError("transaction id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index(t.ID) >= 0 {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrConflict)
	}
	s.txs = append(s.txs, t)
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(t.ID)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrNotFound)
	}
	s.txs[i] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	s.txs = slices.Delete(s.txs, i, i+1)
	return nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	email := core.NormalizeEmail(u.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[email]; ok {
		return fmt.Errorf("user %s: %w", email, core.ErrConflict)
	}
	if _, ok := s.users[u.UID]; ok {
		return fmt.Errorf("user %s: %w", u.UID, core.ErrConflict)
	}
	u.Email = email
	s.users[u.UID] = u
	s.emails[email] = u.UID
	return nil
}

func (s *Store) GetUser(_ context.Context, uid string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[uid]; ok {
		return u, nil
	}
	return core.User{}, fmt.Errorf("user %s: %w", uid, core.ErrNotFound)
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	email = core.NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if uid, ok := s.emails[email]; ok {
		return s.users[uid], nil
	}
	return core.User{}, fmt.Errorf("user %s: %w", email, core.ErrNotFound)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
