package core

import (
	"slices"
	"time"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Totals holds the summed amounts per transaction type.
type Totals struct {
	Income     float64 `json:"Income"`
	Expense    float64 `json:"Expense"`
	Investment float64 `json:"Investment"`
}

// Balance is income minus expenses. Investments do not affect it.
func (t Totals) Balance() float64 {
	return t.Income - t.Expense
}

// Of returns the total for a single type.
func (t Totals) Of(typ TransactionType) float64 {
	switch typ {
	case Income:
		return t.Income
	case Expense:
		return t.Expense
	case Investment:
		return t.Investment
	}
	return 0
}

// DailyPoint is one calendar day of a daily series.
type DailyPoint struct {
	Date         time.Time     `json:"date"`
	Amount       float64       `json:"amount"`
	Transactions []Transaction `json:"transactions"`
}

// Day returns the point's calendar date as YYYY-MM-DD.
func (p DailyPoint) Day() string {
	return p.Date.Format("2006-01-02")
}

// Summary is the dashboard view of a transaction collection.
type Summary struct {
	Totals        Totals           `json:"totalsByType"`
	Balance       float64          `json:"balance"`
	TopCategories []CategoryAmount `json:"topExpenseCategories"`
	Daily         []DailyPoint     `json:"dailySeries"`
	DailyType     TransactionType  `json:"dailyType"`
	PeriodDays    int              `json:"periodDays"`
	Recent        []Transaction    `json:"recentTransactions"`
	Count         int              `json:"count"`
}

// Clone returns a copy of s that shares no slices with it.
func (s Summary) Clone() Summary {
	s.TopCategories = slices.Clone(s.TopCategories)
	s.Recent = slices.Clone(s.Recent)
	s.Daily = slices.Clone(s.Daily)
	for i := range s.Daily {
		s.Daily[i].Transactions = slices.Clone(s.Daily[i].Transactions)
	}
	return s
}
