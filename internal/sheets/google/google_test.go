package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
)

// fakeSheets serves the subset of the Sheets values API the client uses
// over a single in-memory sheet.
type fakeSheets struct {
	mu    sync.Mutex
	rows  [][]any
	reads int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/v4/spreadsheets/sid/values/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.Error(w, "unexpected path "+r.URL.Path, http.StatusNotFound)
		return
	}
	rng := strings.TrimPrefix(r.URL.Path, prefix)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		f.reads++
		col := make([][]any, len(f.rows))
		for i, row := range f.rows {
			if len(row) > 0 {
				col[i] = []any{row[0]}
			} else {
				col[i] = []any{}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": col})
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.rows = append(f.rows, vr.Values...)
		n := len(f.rows)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": fmt.Sprintf("Transactions!A%d:H%d", n, n)},
		})
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":clear"):
		n, _ := rowFromRange(strings.TrimSuffix(rng, ":clear"))
		f.rows[n-1] = nil
		_ = json.NewEncoder(w).Encode(map[string]any{"clearedRange": rng})
	case r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		n, _ := rowFromRange(rng)
		for len(f.rows) < n {
			f.rows = append(f.rows, nil)
		}
		f.rows[n-1] = vr.Values[0]
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRange": rng})
	default:
		http.Error(w, "unsupported", http.StatusBadRequest)
	}
}

func (f *fakeSheets) row(n int) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.rows) {
		return nil
	}
	return f.rows[n-1]
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(ts.URL+"/"),
		goption.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewWithService(svc, "sid", "Transactions", nil)
	if err != nil {
		t.Fatal(err)
	}
	return c, fake
}

func sample(id string, amount float64) core.Transaction {
	return core.Transaction{
		ID:        id,
		UserID:    "u1",
		Type:      core.Income,
		Category:  "Salary",
		Amount:    core.Amount(amount),
		Date:      "2024-03-01T00:00:00.000Z",
		CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestClientAppendWritesHeaderOnce(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)

	ref, err := c.Append(ctx, sample("a", 100))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "Transactions!A2:H2" {
		t.Errorf("Append() ref = %q", ref)
	}
	if _, err := c.Append(ctx, sample("b", 50)); err != nil {
		t.Fatal(err)
	}

	if got := fake.row(1); len(got) == 0 || got[0] != "ID" {
		t.Errorf("header row = %v", got)
	}
	if got := fake.row(3); len(got) == 0 || got[0] != "b" {
		t.Errorf("row 3 = %v", got)
	}
	if fake.reads != 1 {
		t.Errorf("column reads = %d, want 1 while the index is cached", fake.reads)
	}
}

func TestClientUpdateAndClear(t *testing.T) {
	ctx := context.Background()
	c, fake := newTestClient(t)

	for _, id := range []string{"a", "b"} {
		if _, err := c.Append(ctx, sample(id, 10)); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Update(ctx, sample("a", 42)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := fake.row(2); len(got) < 6 || got[5] != float64(42) {
		t.Errorf("updated row = %v", got)
	}

	// unknown ids are appended
	if err := c.Update(ctx, sample("c", 1)); err != nil {
		t.Fatal(err)
	}
	if got := fake.row(4); len(got) == 0 || got[0] != "c" {
		t.Errorf("row 4 = %v", got)
	}

	if err := c.Clear(ctx, "b"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := fake.row(3); got != nil {
		t.Errorf("cleared row = %v", got)
	}
	if err := c.Clear(ctx, "missing"); err != nil {
		t.Errorf("Clear(missing) error = %v", err)
	}

	// a fresh index read sees the same layout
	c.InvalidateRowCache()
	if row, ok, err := c.findRow(ctx, "c"); err != nil || !ok || row != 4 {
		t.Errorf("findRow(c) = %d, %v, %v", row, ok, err)
	}
}

func TestNewWithServiceRequiresSpreadsheet(t *testing.T) {
	if _, err := NewWithService(nil, " ", "x", nil); err == nil {
		t.Error("NewWithService() without spreadsheet id error = nil")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "sid"}, nil)
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Errorf("New() error = %v", err)
	}
}

func TestRowFromRange(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"Transactions!A7:H7", 7, true},
		{"'My Sheet'!A12:H12", 12, true},
		{"Transactions!A:H", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := rowFromRange(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("rowFromRange(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
