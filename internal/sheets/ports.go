package sheets

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Ports for outbound export adapters. Rows are keyed by transaction id,
// which is always the first column.
type (
	RowAppender interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// RowUpdater rewrites the row of t, appending one when none exists.
	RowUpdater interface {
		Update(ctx context.Context, t core.Transaction) error
	}

	// RowClearer blanks the row of id. Clearing an unknown id is not an error.
	RowClearer interface {
		Clear(ctx context.Context, id string) error
	}

	Exporter interface {
		RowAppender
		RowUpdater
		RowClearer
	}
)

// Header is the first row of an export sheet.
var Header = []any{"ID", "User", "Date", "Type", "Category", "Amount", "Notes", "Updated"}

// Row renders t in Header column order.
func Row(t core.Transaction) []any {
	updated := t.CreatedAt
	if t.UpdatedAt != nil {
		updated = *t.UpdatedAt
	}
	date := t.Date
	if ts, ok := t.Time(); ok {
		date = ts.Format("2006-01-02")
	}
	return []any{
		t.ID,
		t.UserID,
		date,
		string(t.Type),
		t.Category,
		t.Amount.Float(),
		t.Notes,
		updated.UTC().Format(time.RFC3339),
	}
}

// RowRange is the A1 range of one full row.
func RowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:H%d", sheet, row, row)
}
