package analysis

import (
	"slices"
	"testing"
	"time"

	"fintrack/internal/core"
)

func fptr(f float64) *float64 { return &f }

func tx(id string, typ core.TransactionType, cat string, amount float64, date, notes string) core.Transaction {
	return core.Transaction{ID: id, UserID: "u1", Type: typ, Category: cat, Amount: core.Amount(amount), Date: date, Notes: notes}
}

func sample() []core.Transaction {
	return []core.Transaction{
		tx("1", core.Income, "Salary", 3000, "2024-03-01T09:00:00.000Z", "March pay"),
		tx("2", core.Expense, "Rent", 1200, "2024-03-02T10:00:00.000Z", ""),
		tx("3", core.Expense, "Groceries", 200, "2024-03-05T18:30:00.000Z", "weekly shop"),
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestFilterEmptySpecReturnsCollection(t *testing.T) {
	in := sample()
	got := Filter(in, FilterSpec{})
	if !slices.Equal(ids(got), []string{"1", "2", "3"}) {
		t.Fatalf("empty spec changed the collection: %v", ids(got))
	}
	if got := Filter(nil, FilterSpec{}); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}

func TestFilterPredicates(t *testing.T) {
	in := sample()
	in = append(in,
		tx("4", core.Investment, "ETF", 500, "2024-03-05T00:00:00.000Z", "Monthly PLAN"),
		tx("5", core.Expense, "Misc", 50, "not a date", ""),
	)

	cases := []struct {
		name string
		spec FilterSpec
		want []string
	}{
		{"types and amount", FilterSpec{Types: []core.TransactionType{core.Expense}, MaxAmount: fptr(500)}, []string{"3", "5"}},
		{"search category", FilterSpec{Search: "rent"}, []string{"2"}},
		{"search type", FilterSpec{Search: "INCOME"}, []string{"1"}},
		{"search notes case-insensitive", FilterSpec{Search: "plan"}, []string{"4"}},
		{"search no match", FilterSpec{Search: "zzz"}, []string{}},
		{"start inclusive", FilterSpec{Start: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)}, []string{"2", "3", "4"}},
		{"end inclusive", FilterSpec{End: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)}, []string{"1", "2"}},
		{"range", FilterSpec{Start: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)}, []string{"2"}},
		{"min amount", FilterSpec{MinAmount: fptr(500)}, []string{"1", "2", "4"}},
		{"amount window", FilterSpec{MinAmount: fptr(200), MaxAmount: fptr(1200)}, []string{"2", "3", "4"}},
		{"two types", FilterSpec{Types: []core.TransactionType{core.Income, core.Investment}}, []string{"1", "4"}},
		{"all three types", FilterSpec{Types: core.TransactionTypes}, []string{"1", "2", "3", "4", "5"}},
		{"category exact", FilterSpec{Category: "groceries"}, []string{"3"}},
		{"combined", FilterSpec{Search: "e", Types: []core.TransactionType{core.Expense}, MinAmount: fptr(100)}, []string{"2", "3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Filter(in, tc.spec))
			if !slices.Equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterMatchesIndependentPredicates(t *testing.T) {
	in := sample()
	spec := FilterSpec{Search: "r", Types: []core.TransactionType{core.Expense, core.Income}, MaxAmount: fptr(2000)}
	got := Filter(in, spec)
	for _, tr := range in {
		want := spec.Match(tr)
		if slices.ContainsFunc(got, func(x core.Transaction) bool { return x.ID == tr.ID }) != want {
			t.Fatalf("transaction %s membership mismatch", tr.ID)
		}
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	in := sample()
	before := ids(in)
	_ = Filter(in, FilterSpec{Search: "rent"})
	if !slices.Equal(ids(in), before) {
		t.Fatalf("input modified")
	}
}

func TestParseBound(t *testing.T) {
	end, err := ParseBound("2024-03-05", true)
	if err != nil {
		t.Fatal(err)
	}
	got := ids(Filter(sample(), FilterSpec{End: end}))
	if !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Fatalf("date-only end bound should cover the whole day, got %v", got)
	}
	if b, err := ParseBound("", false); err != nil || !b.IsZero() {
		t.Fatalf("empty bound should be zero, got %v %v", b, err)
	}
	if _, err := ParseBound("someday", false); err == nil {
		t.Fatalf("expected error")
	}
}

func TestToggleType(t *testing.T) {
	var sel []core.TransactionType
	sel = ToggleType(sel, core.Income)
	sel = ToggleType(sel, core.Expense)
	if !slices.Equal(sel, []core.TransactionType{core.Income, core.Expense}) {
		t.Fatalf("got %v", sel)
	}
	prev := sel
	sel = ToggleType(sel, core.Investment)
	if !slices.Equal(sel, []core.TransactionType{core.Expense, core.Investment}) {
		t.Fatalf("oldest should be evicted, got %v", sel)
	}
	if !slices.Equal(prev, []core.TransactionType{core.Income, core.Expense}) {
		t.Fatalf("input modified: %v", prev)
	}
	sel = ToggleType(sel, core.Expense)
	if !slices.Equal(sel, []core.TransactionType{core.Investment}) {
		t.Fatalf("toggle off failed, got %v", sel)
	}
}
