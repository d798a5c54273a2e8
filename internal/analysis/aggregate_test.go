package analysis

import (
	"slices"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestTotalsAndBalance(t *testing.T) {
	totals := TotalsByType(sample())
	want := core.Totals{Income: 3000, Expense: 1400, Investment: 0}
	if totals != want {
		t.Fatalf("got %+v, want %+v", totals, want)
	}
	if b := Balance(sample()); b != 1600 {
		t.Fatalf("balance %v", b)
	}
	if got := TotalsByType(nil); got != (core.Totals{}) {
		t.Fatalf("empty totals %+v", got)
	}
}

func TestTopExpenseCategories(t *testing.T) {
	top := TopExpenseCategories(sample(), 1)
	if len(top) != 1 || top[0] != (core.CategoryAmount{Category: "Rent", Amount: 1200}) {
		t.Fatalf("got %+v", top)
	}

	txs := []core.Transaction{
		tx("1", core.Expense, "Food", 10, "2024-01-01", ""),
		tx("2", core.Expense, "Fun", 30, "2024-01-01", ""),
		tx("3", core.Expense, "Food", 20, "2024-01-01", ""),
		tx("4", core.Expense, "Bills", 30, "2024-01-01", ""),
		tx("5", core.Income, "Salary", 900, "2024-01-01", ""),
		tx("6", core.Expense, "Gym", 5, "2024-01-01", ""),
	}
	got := TopExpenseCategories(txs, 0)
	want := []core.CategoryAmount{{Category: "Food", Amount: 30}, {Category: "Fun", Amount: 30}, {Category: "Bills", Amount: 30}, {Category: "Gym", Amount: 5}}
	if !slices.Equal(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if got := TopExpenseCategories(nil, 3); got == nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestDailySeries(t *testing.T) {
	now := time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("1", core.Income, "Salary", 100, "2024-03-07T08:00:00.000Z", ""),
		tx("2", core.Income, "Bonus", 50, "2024-03-07T23:00:00.000Z", ""),
		tx("3", core.Income, "Salary", 70, "2024-03-05T12:00:00.000Z", ""),
		tx("4", core.Expense, "Rent", 999, "2024-03-06T12:00:00.000Z", ""),
		tx("5", core.Income, "Old", 1, "2024-02-01T12:00:00.000Z", ""),
		tx("6", core.Income, "Broken", 5, "nope", ""),
	}
	points := DailySeries(txs, core.Income, 7, now, time.UTC)
	if len(points) != 7 {
		t.Fatalf("len %d", len(points))
	}
	if points[0].Day() != "2024-03-01" || points[6].Day() != "2024-03-07" {
		t.Fatalf("range %s..%s", points[0].Day(), points[6].Day())
	}
	if points[6].Amount != 150 || len(points[6].Transactions) != 2 {
		t.Fatalf("today %+v", points[6])
	}
	if points[4].Amount != 70 || points[5].Amount != 0 {
		t.Fatalf("got %v %v", points[4].Amount, points[5].Amount)
	}
	if Peak(points) != 150 {
		t.Fatalf("peak %v", Peak(points))
	}

	all := DailySeries(txs, "", 7, now, time.UTC)
	if all[5].Amount != 999 {
		t.Fatalf("all types should include expenses, got %v", all[5].Amount)
	}

	// The 23:00 UTC record falls on the next day two hours east.
	east := time.FixedZone("UTC+2", 2*3600)
	shifted := DailySeries(txs, core.Income, 7, now, east)
	if shifted[6].Amount != 100 {
		t.Fatalf("local day bucketing, got %v", shifted[6].Amount)
	}
}

func TestPeakFloor(t *testing.T) {
	if Peak(nil) != 1 {
		t.Fatalf("peak of nothing should be 1")
	}
	if Peak([]core.DailyPoint{{Amount: 0.5}}) != 1 {
		t.Fatalf("peak below 1 should be 1")
	}
}

func TestRecentTransactions(t *testing.T) {
	txs := append(sample(), tx("4", core.Expense, "Late", 1, "2024-03-05T18:30:00.000Z", ""))
	got := ids(RecentTransactions(txs, 3))
	if !slices.Equal(got, []string{"3", "4", "2"}) {
		t.Fatalf("got %v", got)
	}
	if got := RecentTransactions(txs, 0); len(got) != 4 {
		t.Fatalf("default count, got %d", len(got))
	}
}

func TestNextPeriod(t *testing.T) {
	for in, want := range map[int]int{7: 14, 14: 30, 30: 7, 9: 7} {
		if got := NextPeriod(in); got != want {
			t.Fatalf("NextPeriod(%d)=%d, want %d", in, got, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC)
	s := Summarize(sample(), SummaryOptions{TopN: 1, Now: now, Location: time.UTC})
	if s.Balance != 1600 || s.Count != 3 || s.PeriodDays != 7 || s.DailyType != core.Income {
		t.Fatalf("unexpected summary %+v", s)
	}
	if len(s.TopCategories) != 1 || s.TopCategories[0].Category != "Rent" {
		t.Fatalf("top %+v", s.TopCategories)
	}
	if len(s.Daily) != 7 || s.Daily[2].Amount != 3000 {
		t.Fatalf("daily %+v", s.Daily)
	}
	if ids(s.Recent)[0] != "3" {
		t.Fatalf("recent %v", ids(s.Recent))
	}
}

func TestDailySeriesCapsPeriod(t *testing.T) {
	now := time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)
	for _, days := range []int{MaxPeriodDays + 1, 100_000_000, 1 << 62} {
		if got := DailySeries(nil, "", days, now, time.UTC); len(got) != MaxPeriodDays {
			t.Errorf("DailySeries(%d days) = %d points, want %d", days, len(got), MaxPeriodDays)
		}
	}
	s := Summarize(nil, SummaryOptions{PeriodDays: 1 << 40, Now: now, Location: time.UTC})
	if s.PeriodDays != MaxPeriodDays || len(s.Daily) != MaxPeriodDays {
		t.Errorf("Summarize period = %d, %d points", s.PeriodDays, len(s.Daily))
	}
}
