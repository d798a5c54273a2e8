package analysis

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"fintrack/internal/core"
)

type SortField string

const (
	SortNone     SortField = ""
	SortAmount   SortField = "amount"
	SortDate     SortField = "date"
	SortType     SortField = "type"
	SortCategory SortField = "category"
	SortNotes    SortField = "notes"
)

// SortFields lists the sortable columns.
var SortFields = []SortField{SortAmount, SortDate, SortType, SortCategory, SortNotes}

type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	if f == SortNone || slices.Contains(SortFields, f) {
		return f, nil
	}
	return SortNone, fmt.Errorf("unknown sort field %q", s)
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return Unsorted, nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Unsorted, fmt.Errorf("unknown sort direction %q", s)
}

// DateOrder is the base order of the list view, applied before any column
// sort. The zero value means NewestFirst.
type DateOrder string

const (
	NewestFirst DateOrder = "newest"
	OldestFirst DateOrder = "oldest"
)

func ParseDateOrder(s string) (DateOrder, error) {
	switch o := DateOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "", NewestFirst:
		return NewestFirst, nil
	case OldestFirst:
		return o, nil
	}
	return NewestFirst, fmt.Errorf("unknown date order %q", s)
}

// OrderByDate returns a copy of txs by date, newest or oldest first. Equal
// dates keep their input order; unparsable dates count as the epoch.
func OrderByDate(txs []core.Transaction, order DateOrder) []core.Transaction {
	dir := Descending
	if order == OldestFirst {
		dir = Ascending
	}
	return Sort(txs, SortState{Field: SortDate, Direction: dir})
}

// SortState is the active column and direction of the list view.
type SortState struct {
	Field     SortField
	Direction Direction
}

// Active reports whether the state imposes an order.
func (s SortState) Active() bool {
	return s.Field != SortNone && s.Direction != Unsorted
}

// Toggle returns the state after the user selects field. Repeated selection
// of the same field cycles ascending, descending, unsorted. A different field
// always starts ascending.
func (s SortState) Toggle(field SortField) SortState {
	if field == SortNone {
		return SortState{}
	}
	if s.Field != field {
		return SortState{Field: field, Direction: Ascending}
	}
	switch s.Direction {
	case Unsorted:
		return SortState{Field: field, Direction: Ascending}
	case Ascending:
		return SortState{Field: field, Direction: Descending}
	default:
		return SortState{}
	}
}

func (s SortState) String() string {
	if !s.Active() {
		return "none"
	}
	return string(s.Field) + " " + s.Direction.String()
}

// Sort returns a new slice ordered by state. Equal keys keep their input
// order. An inactive state returns a copy of the input.
func Sort(txs []core.Transaction, state SortState) []core.Transaction {
	out := slices.Clone(txs)
	if out == nil {
		out = []core.Transaction{}
	}
	if !state.Active() {
		return out
	}
	less := comparator(state.Field)
	if less == nil {
		return out
	}
	if state.Direction == Descending {
		slices.SortStableFunc(out, func(a, b core.Transaction) int { return less(b, a) })
	} else {
		slices.SortStableFunc(out, less)
	}
	return out
}

func comparator(field SortField) func(a, b core.Transaction) int {
	switch field {
	case SortAmount:
		return func(a, b core.Transaction) int {
			return cmp.Compare(a.Amount.Float(), b.Amount.Float())
		}
	case SortDate:
		return func(a, b core.Transaction) int {
			ta, _ := a.Time()
			tb, _ := b.Time()
			return ta.Compare(tb)
		}
	case SortType:
		return func(a, b core.Transaction) int {
			return compareFold(string(a.Type), string(b.Type))
		}
	case SortCategory:
		return func(a, b core.Transaction) int {
			return compareFold(a.Category, b.Category)
		}
	case SortNotes:
		return func(a, b core.Transaction) int {
			return compareFold(a.Notes, b.Notes)
		}
	}
	return nil
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
