package analysis

import (
	"time"

	"fintrack/internal/core"
)

// ListState is everything the list view derives its rows from besides the
// collection itself.
type ListState struct {
	Filter   FilterSpec
	Order    DateOrder
	Sort     SortState
	Page     int
	PageSize int
}

func NewListState() ListState {
	return ListState{Order: NewestFirst, PageSize: DefaultPageSize}
}

// Event is a user interaction on the list view.
type Event interface {
	apply(ListState) ListState
}

type (
	SearchChanged    struct{ Query string }
	DateRangeChanged struct{ Start, End time.Time }
	// TypeToggled selects or deselects a type under the selector cap.
	TypeToggled        struct{ Type core.TransactionType }
	TypesCleared       struct{}
	CategoryChanged    struct{ Category string }
	AmountRangeChanged struct{ Min, Max *float64 }
	FiltersCleared     struct{}
	// OrderChanged switches the base date order under the column sort.
	OrderChanged    struct{ Order DateOrder }
	SortRequested   struct{ Field SortField }
	PageChanged     struct{ Page int }
	PageSizeChanged struct{ Size int }
	// CollectionReplaced is raised after the working set is re-fetched or mutated.
	CollectionReplaced struct{}
)

// Reduce returns the state after ev. s is not modified.
func Reduce(s ListState, ev Event) ListState {
	if ev == nil {
		return s
	}
	if s.PageSize == 0 {
		s.PageSize = DefaultPageSize
	}
	return ev.apply(s)
}

// filterChanged applies the reset that follows any change of the filtered
// sequence: the previous order and page no longer apply.
func filterChanged(s ListState) ListState {
	s.Sort = SortState{}
	s.Page = 0
	return s
}

func (e SearchChanged) apply(s ListState) ListState {
	s.Filter.Search = e.Query
	return filterChanged(s)
}

func (e DateRangeChanged) apply(s ListState) ListState {
	s.Filter.Start, s.Filter.End = e.Start, e.End
	return filterChanged(s)
}

func (e TypeToggled) apply(s ListState) ListState {
	s.Filter.Types = ToggleType(s.Filter.Types, e.Type)
	return filterChanged(s)
}

func (TypesCleared) apply(s ListState) ListState {
	s.Filter.Types = nil
	return filterChanged(s)
}

func (e CategoryChanged) apply(s ListState) ListState {
	s.Filter.Category = e.Category
	return filterChanged(s)
}

func (e AmountRangeChanged) apply(s ListState) ListState {
	s.Filter.MinAmount, s.Filter.MaxAmount = e.Min, e.Max
	return filterChanged(s)
}

func (FiltersCleared) apply(s ListState) ListState {
	s.Filter = FilterSpec{}
	return filterChanged(s)
}

func (e OrderChanged) apply(s ListState) ListState {
	s.Order = e.Order
	s.Page = 0
	return s
}

func (e SortRequested) apply(s ListState) ListState {
	s.Sort = s.Sort.Toggle(e.Field)
	s.Page = 0
	return s
}

func (e PageChanged) apply(s ListState) ListState {
	s.Page = max(e.Page, 0)
	return s
}

func (e PageSizeChanged) apply(s ListState) ListState {
	if ValidPageSize(e.Size) {
		s.PageSize = e.Size
	}
	s.Page = 0
	return s
}

func (CollectionReplaced) apply(s ListState) ListState {
	return filterChanged(s)
}

// View runs the list pipeline: filter, date order, column sort, paginate.
// With no column sort the page shows the date order.
func View(txs []core.Transaction, s ListState) Page {
	ordered := OrderByDate(Filter(txs, s.Filter), s.Order)
	return Paginate(Sort(ordered, s.Sort), s.Page, s.PageSize)
}
