package analysis

import (
	"slices"

	"fintrack/internal/core"
)

// PageSizes are the sizes offered by the list view.
var PageSizes = []int{3, 5, 10, 15, 20}

const DefaultPageSize = 10

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// Page is one slice of an ordered sequence. Start and End are the 1-based
// bounds shown to the user ("Start-End of Total").
type Page struct {
	Items     []core.Transaction
	Index     int
	Size      int
	Start     int
	End       int
	PageCount int
	Total     int
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Index < p.PageCount-1
}

// Paginate returns page index of txs. Sizes outside PageSizes fall back to
// DefaultPageSize, negative indexes to 0. An index past the last page yields
// an empty page.
func Paginate(txs []core.Transaction, index, size int) Page {
	if !ValidPageSize(size) {
		size = DefaultPageSize
	}
	if index < 0 {
		index = 0
	}
	total := len(txs)
	p := Page{
		Index:     index,
		Size:      size,
		PageCount: (total + size - 1) / size,
		Total:     total,
		Items:     []core.Transaction{},
	}
	// past the last page: bounds stay at Total so index*size cannot overflow
	if index >= p.PageCount {
		p.Start, p.End = total+1, total
		return p
	}
	from := index * size
	p.Start = from + 1
	p.End = min(from+size, total)
	p.Items = slices.Clone(txs[from:p.End])
	return p
}
