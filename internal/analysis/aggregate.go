package analysis

import (
	"cmp"
	"slices"
	"time"

	"fintrack/internal/core"
)

const (
	DefaultTopCategories = 5
	DefaultRecent        = 6
	DefaultPeriodDays    = 7
	// MaxPeriodDays bounds the daily series to one leap year.
	MaxPeriodDays = 366
)

// Periods are the dashboard's daily series lengths, in cycling order.
var Periods = []int{7, 14, 30}

// NextPeriod returns the period following p in Periods, wrapping around.
// Unknown values restart the cycle.
func NextPeriod(p int) int {
	i := slices.Index(Periods, p)
	if i < 0 {
		return Periods[0]
	}
	return Periods[(i+1)%len(Periods)]
}

// TotalsByType sums amounts per type. Types with no transactions report 0.
func TotalsByType(txs []core.Transaction) core.Totals {
	var t core.Totals
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			t.Income += tx.Amount.Float()
		case core.Expense:
			t.Expense += tx.Amount.Float()
		case core.Investment:
			t.Investment += tx.Amount.Float()
		}
	}
	return t
}

// Balance is total income minus total expenses.
func Balance(txs []core.Transaction) float64 {
	return TotalsByType(txs).Balance()
}

// TopExpenseCategories groups expenses by category and returns the n largest
// sums in descending order. Equal sums keep first-seen order. n <= 0 means
// DefaultTopCategories.
func TopExpenseCategories(txs []core.Transaction, n int) []core.CategoryAmount {
	if n <= 0 {
		n = DefaultTopCategories
	}
	index := map[string]int{}
	out := []core.CategoryAmount{}
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, core.CategoryAmount{Category: tx.Category})
		}
		out[i].Amount += tx.Amount.Float()
	}
	slices.SortStableFunc(out, func(a, b core.CategoryAmount) int {
		return cmp.Compare(b.Amount, a.Amount)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// DailySeries sums the amounts of transactions of type typ for each of the
// periodDays calendar days ending on now's date, oldest first. Days are keyed
// by the local date in loc. An empty typ includes every type. Each point keeps
// its contributing transactions in collection order; records with unparsable
// dates are skipped. periodDays is capped at MaxPeriodDays.
func DailySeries(txs []core.Transaction, typ core.TransactionType, periodDays int, now time.Time, loc *time.Location) []core.DailyPoint {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	periodDays = min(periodDays, MaxPeriodDays)
	if loc == nil {
		loc = time.Local
	}
	today := core.DateOnly(now, loc)
	points := make([]core.DailyPoint, periodDays)
	index := make(map[string]int, periodDays)
	for i := range points {
		day := today.AddDate(0, 0, i-periodDays+1)
		points[i] = core.DailyPoint{Date: day, Transactions: []core.Transaction{}}
		index[points[i].Day()] = i
	}
	for _, tx := range txs {
		if typ != "" && tx.Type != typ {
			continue
		}
		ts, ok := tx.Time()
		if !ok {
			continue
		}
		i, ok := index[core.DateOnly(ts, loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		points[i].Amount += tx.Amount.Float()
		points[i].Transactions = append(points[i].Transactions, tx)
	}
	return points
}

// Peak returns the largest daily amount, never less than 1, for chart scaling.
func Peak(points []core.DailyPoint) float64 {
	peak := 1.0
	for _, p := range points {
		peak = max(peak, p.Amount)
	}
	return peak
}

// RecentTransactions returns the n latest transactions by date, newest first.
// Equal dates keep collection order. n <= 0 means DefaultRecent.
func RecentTransactions(txs []core.Transaction, n int) []core.Transaction {
	if n <= 0 {
		n = DefaultRecent
	}
	out := Sort(txs, SortState{Field: SortDate, Direction: Descending})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// SummaryOptions parameterizes Summarize. Zero values select the defaults.
type SummaryOptions struct {
	TopN       int
	RecentN    int
	PeriodDays int
	DailyType  core.TransactionType
	Now        time.Time
	Location   *time.Location
}

func (o SummaryOptions) withDefaults() SummaryOptions {
	if o.TopN <= 0 {
		o.TopN = DefaultTopCategories
	}
	if o.RecentN <= 0 {
		o.RecentN = DefaultRecent
	}
	if o.PeriodDays <= 0 {
		o.PeriodDays = DefaultPeriodDays
	}
	o.PeriodDays = min(o.PeriodDays, MaxPeriodDays)
	if o.DailyType == "" {
		o.DailyType = core.Income
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Summarize computes the dashboard view of txs.
func Summarize(txs []core.Transaction, opts SummaryOptions) core.Summary {
	opts = opts.withDefaults()
	totals := TotalsByType(txs)
	return core.Summary{
		Totals:        totals,
		Balance:       totals.Balance(),
		TopCategories: TopExpenseCategories(txs, opts.TopN),
		Daily:         DailySeries(txs, opts.DailyType, opts.PeriodDays, opts.Now, opts.Location),
		DailyType:     opts.DailyType,
		PeriodDays:    opts.PeriodDays,
		Recent:        RecentTransactions(txs, opts.RecentN),
		Count:         len(txs),
	}
}
