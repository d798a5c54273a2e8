// Package analysis derives list and dashboard views from a transaction
// collection. Every function here is pure: inputs are never modified and
// malformed records degrade to zero amounts and epoch dates instead of
// producing errors.
package analysis

import (
	"math"
	"slices"
	"strings"
	"time"

	"fintrack/internal/core"
)

// FilterSpec selects transactions for the list view. The zero value matches
// every transaction.
type FilterSpec struct {
	Search    string
	Start     time.Time // inclusive, zero means unbounded
	End       time.Time // inclusive, zero means unbounded
	Types     []core.TransactionType
	Category  string
	MinAmount *float64
	MaxAmount *float64
}

// IsZero reports whether no predicate is active.
func (s FilterSpec) IsZero() bool {
	return s.Search == "" && s.Start.IsZero() && s.End.IsZero() && len(s.Types) == 0 &&
		s.Category == "" && s.MinAmount == nil && s.MaxAmount == nil
}

// AmountBounds returns the effective amount range.
func (s FilterSpec) AmountBounds() (min, max float64) {
	min, max = 0, math.MaxFloat64
	if s.MinAmount != nil {
		min = *s.MinAmount
	}
	if s.MaxAmount != nil {
		max = *s.MaxAmount
	}
	return min, max
}

// Match reports whether t satisfies every active predicate.
func (s FilterSpec) Match(t core.Transaction) bool {
	if s.Search != "" {
		q := strings.ToLower(s.Search)
		if !strings.Contains(strings.ToLower(string(t.Type)), q) &&
			!strings.Contains(strings.ToLower(t.Category), q) &&
			!strings.Contains(strings.ToLower(t.Notes), q) {
			return false
		}
	}
	if !s.Start.IsZero() || !s.End.IsZero() {
		ts, ok := t.Time()
		if !ok {
			return false
		}
		if !s.Start.IsZero() && ts.Before(s.Start) {
			return false
		}
		if !s.End.IsZero() && ts.After(s.End) {
			return false
		}
	}
	if len(s.Types) > 0 && !slices.Contains(s.Types, t.Type) {
		return false
	}
	if s.Category != "" && !strings.EqualFold(strings.TrimSpace(t.Category), strings.TrimSpace(s.Category)) {
		return false
	}
	min, max := s.AmountBounds()
	amount := t.Amount.Float()
	return amount >= min && amount <= max
}

// Filter returns the transactions matching spec in their original order.
func Filter(txs []core.Transaction, spec FilterSpec) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if spec.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// ParseBound parses a filter date bound. A date-only end bound covers the
// whole day.
func ParseBound(s string, end bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := core.ParseDate(s)
	if err != nil {
		return time.Time{}, core.NewValidationError("Invalid date format.")
	}
	if end && len(s) == len("2006-01-02") {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
