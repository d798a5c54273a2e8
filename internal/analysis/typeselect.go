package analysis

import (
	"slices"

	"fintrack/internal/core"
)

// MaxSelectedTypes caps the type selector of the list view.
const MaxSelectedTypes = 2

// ToggleType updates a type selection the way the list view's selector does:
// a selected type is removed, a new one is appended and, past the cap, the
// oldest selection is evicted. The input slice is not modified.
func ToggleType(selected []core.TransactionType, t core.TransactionType) []core.TransactionType {
	if i := slices.Index(selected, t); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	out := append(slices.Clone(selected), t)
	if len(out) > MaxSelectedTypes {
		out = out[len(out)-MaxSelectedTypes:]
	}
	return out
}
