// Package memory is an in-process export target used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

var _ sheets.Exporter = (*Sheet)(nil)

type Sheet struct {
	mu   sync.Mutex
	rows [][]any
}

func New() *Sheet {
	return &Sheet{rows: [][]any{slices.Clone(sheets.Header)}}
}

// Append adds a row and returns a synthetic reference to it.
func (s *Sheet) Append(_ context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		return "", fmt.Errorf("append row: %w", core.NewValidationError("transaction id is required"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, sheets.Row(t))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Sheet) Update(ctx context.Context, t core.Transaction) error {
	s.mu.Lock()
	if i := s.find(t.ID); i >= 0 {
		s.rows[i] = sheets.Row(t)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	_, err := s.Append(ctx, t)
	return err
}

func (s *Sheet) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(id); i >= 0 {
		s.rows[i] = nil
	}
	return nil
}

// Rows returns a copy of the sheet including the header and cleared rows.
func (s *Sheet) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	for i, r := range s.rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// Lookup returns the row of id.
func (s *Sheet) Lookup(id string) ([]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(id); i >= 0 {
		return slices.Clone(s.rows[i]), true
	}
	return nil, false
}

func (s *Sheet) find(id string) int {
	for i := 1; i < len(s.rows); i++ {
		if len(s.rows[i]) > 0 && s.rows[i][0] == id {
			return i
		}
	}
	return -1
}
