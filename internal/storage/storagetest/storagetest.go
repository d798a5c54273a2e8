// Package storagetest runs the behavioral checks every storage backend must
// pass.
package storagetest

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func record(id, user string, typ core.TransactionType, cat string, amount float64) core.Transaction {
	return core.Transaction{
		ID:        id,
		UserID:    user,
		Type:      typ,
		Category:  cat,
		Amount:    core.Amount(amount),
		Date:      "2024-03-01T00:00:00.000Z",
		Notes:     "n-" + id,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Run exercises store. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
}

func testTransactions(t *testing.T, s storage.Store) {
	ctx := context.Background()
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	for _, r := range []core.Transaction{
		record("t1", "u1", core.Income, "Salary", 3000),
		record("t2", "u2", core.Expense, "Rent", 900),
		record("t3", "u1", core.Expense, "Rent", 1200),
	} {
		if err := s.CreateTransaction(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}

	list, err := s.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range list {
		got = append(got, r.ID)
	}
	if !slices.Equal(got, []string{"t1", "t3"}) {
		t.Fatalf("list u1: %v", got)
	}
	if empty, err := s.ListTransactions(ctx, "nobody"); err != nil || len(empty) != 0 {
		t.Fatalf("list unknown user: %v %v", empty, err)
	}

	r, err := s.GetTransaction(ctx, "t3")
	if err != nil {
		t.Fatal(err)
	}
	want := record("t3", "u1", core.Expense, "Rent", 1200)
	if r.ID != want.ID || r.UserID != want.UserID || r.Type != want.Type || r.Category != want.Category ||
		r.Amount != want.Amount || r.Date != want.Date || r.Notes != want.Notes || !r.CreatedAt.Equal(want.CreatedAt) || r.UpdatedAt != nil {
		t.Fatalf("get t3: %+v", r)
	}

	updated := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	r.Amount = 1250
	r.Notes = ""
	r.UpdatedAt = &updated
	if err := s.UpdateTransaction(ctx, r); err != nil {
		t.Fatal(err)
	}
	r2, _ := s.GetTransaction(ctx, "t3")
	if r2.Amount != 1250 || r2.Notes != "" || r2.UpdatedAt == nil || !r2.UpdatedAt.Equal(updated) {
		t.Fatalf("after update: %+v", r2)
	}

	if err := s.DeleteTransaction(ctx, "t3"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTransaction(ctx, "t3"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get deleted: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "t3"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete twice: %v", err)
	}
	missing := record("nope", "u1", core.Income, "x", 1)
	if err := s.UpdateTransaction(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
	if other, _ := s.ListTransactions(ctx, "u2"); len(other) != 1 {
		t.Fatalf("other user's records changed: %v", other)
	}
}

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := core.User{UID: "u1", Email: "ada@example.com", PasswordHash: "hash", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	dup := core.User{UID: "u2", Email: "ADA@example.com"}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate email: %v", err)
	}

	got, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != u.Email || got.PasswordHash != "hash" || !got.CreatedAt.Equal(u.CreatedAt) {
		t.Fatalf("get user: %+v", got)
	}
	byEmail, err := s.GetUserByEmail(ctx, " Ada@Example.com ")
	if err != nil || byEmail.UID != "u1" {
		t.Fatalf("by email: %+v %v", byEmail, err)
	}
	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}
	if _, err := s.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing email: %v", err)
	}
}
