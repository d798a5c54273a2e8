package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/analysis"
	"fintrack/internal/client"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

type options struct {
	api      string
	email    string
	password string
	register bool

	search   string
	types    string
	category string
	from     string
	to       string
	min      string
	max      string

	order    string
	sort     string
	dir      string
	page     int
	pageSize int

	period    int
	top       int
	dailyType string
	tz        string
	chartsDir string
	timeout   time.Duration
}

func main() {
	_ = godotenv.Load()

	var o options
	flag.StringVar(&o.api, "api", envOr("FINTRACK_API_URL", "http://localhost:8081"), "API base URL")
	flag.StringVar(&o.email, "email", os.Getenv("FINTRACK_EMAIL"), "account email")
	flag.StringVar(&o.password, "password", os.Getenv("FINTRACK_PASSWORD"), "account password")
	flag.BoolVar(&o.register, "register", false, "register the account before logging in")
	flag.StringVar(&o.search, "search", "", "match text in category, notes or type")
	flag.StringVar(&o.types, "types", "", "comma separated types, at most two are kept")
	flag.StringVar(&o.category, "category", "", "exact category")
	flag.StringVar(&o.from, "from", "", "start date (inclusive)")
	flag.StringVar(&o.to, "to", "", "end date (inclusive)")
	flag.StringVar(&o.min, "min", "", "minimum amount")
	flag.StringVar(&o.max, "max", "", "maximum amount")
	flag.StringVar(&o.order, "order", string(analysis.NewestFirst), "base date order: newest or oldest")
	flag.StringVar(&o.sort, "sort", "", "sort field: amount, date, type, category, notes")
	flag.StringVar(&o.dir, "dir", "asc", "sort direction: asc or desc")
	flag.IntVar(&o.page, "page", 1, "page number, starting at 1")
	flag.IntVar(&o.pageSize, "size", analysis.DefaultPageSize, "page size, one of "+pageSizesText())
	flag.IntVar(&o.period, "period", 7, "dashboard period in days")
	flag.IntVar(&o.top, "top", analysis.DefaultTopCategories, "number of expense categories to chart")
	flag.StringVar(&o.dailyType, "daily", string(core.Income), "type of the daily series")
	flag.StringVar(&o.tz, "tz", "Local", "time zone for day boundaries")
	flag.StringVar(&o.chartsDir, "charts", "", "write PNG charts into this directory")
	flag.DurationVar(&o.timeout, "timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	logger := log.New(log.Config{Level: log.ParseLevel(os.Getenv("LOG_LEVEL")), Output: os.Stderr, Component: log.ComponentReport})
	if err := run(o, logger); err != nil {
		fmt.Fprintln(os.Stderr, "fintrack-report:", err)
		os.Exit(1)
	}
}

func run(o options, logger *log.Logger) error {
	if o.email == "" {
		return errors.New("-email is required")
	}
	events, err := listEvents(o)
	if err != nil {
		return err
	}
	dailyType, err := core.ParseTransactionType(o.dailyType)
	if err != nil {
		return fmt.Errorf("-daily: %w", err)
	}
	loc, err := time.LoadLocation(o.tz)
	if err != nil {
		return fmt.Errorf("-tz: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	c, err := client.New(o.api, client.WithLogger(logger))
	if err != nil {
		return err
	}
	if o.register {
		if _, err := c.Register(ctx, o.email, o.password); err != nil && !errors.Is(err, core.ErrValidation) {
			return fmt.Errorf("register: %w", err)
		}
	}
	if _, err := c.Login(ctx, o.email, o.password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	session := client.NewSession(c)
	if err := session.Load(ctx); err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	for _, ev := range events {
		session.Dispatch(ev)
	}

	page := session.View()
	state := session.State()
	fmt.Printf("Transactions (%s first, sort: %s, page %d of %d)\n", state.Order, state.Sort, page.Index+1, max(page.PageCount, 1))
	report.WriteTable(os.Stdout, page)

	summary := session.Summary(analysis.SummaryOptions{
		PeriodDays: o.period,
		TopN:       o.top,
		DailyType:  dailyType,
		Location:   loc,
	})
	fmt.Println()
	report.WriteTotals(os.Stdout, summary)

	if o.chartsDir != "" {
		files, err := report.WriteCharts(o.chartsDir, summary)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Println("wrote", f)
		}
	}
	return nil
}

// listEvents turns the filter, sort and page flags into list view events in
// the order a user would apply them.
func listEvents(o options) ([]analysis.Event, error) {
	var events []analysis.Event

	if o.search != "" {
		events = append(events, analysis.SearchChanged{Query: o.search})
	}
	if o.types != "" {
		for _, s := range strings.Split(o.types, ",") {
			t, err := core.ParseTransactionType(s)
			if err != nil {
				return nil, fmt.Errorf("-types: %w", err)
			}
			events = append(events, analysis.TypeToggled{Type: t})
		}
	}
	if o.category != "" {
		events = append(events, analysis.CategoryChanged{Category: o.category})
	}
	if o.from != "" || o.to != "" {
		start, err := analysis.ParseBound(o.from, false)
		if err != nil {
			return nil, fmt.Errorf("-from: %w", err)
		}
		end, err := analysis.ParseBound(o.to, true)
		if err != nil {
			return nil, fmt.Errorf("-to: %w", err)
		}
		events = append(events, analysis.DateRangeChanged{Start: start, End: end})
	}
	if o.min != "" || o.max != "" {
		lo, err := optionalFloat(o.min)
		if err != nil {
			return nil, fmt.Errorf("-min: %w", err)
		}
		hi, err := optionalFloat(o.max)
		if err != nil {
			return nil, fmt.Errorf("-max: %w", err)
		}
		events = append(events, analysis.AmountRangeChanged{Min: lo, Max: hi})
	}

	order, err := analysis.ParseDateOrder(o.order)
	if err != nil {
		return nil, fmt.Errorf("-order: %w", err)
	}
	events = append(events, analysis.OrderChanged{Order: order})

	if o.sort != "" {
		field, err := analysis.ParseSortField(o.sort)
		if err != nil {
			return nil, err
		}
		dir, err := analysis.ParseDirection(o.dir)
		if err != nil {
			return nil, err
		}
		// each request cycles asc, desc, none
		switch dir {
		case analysis.Ascending:
			events = append(events, analysis.SortRequested{Field: field})
		case analysis.Descending:
			events = append(events, analysis.SortRequested{Field: field}, analysis.SortRequested{Field: field})
		}
	}

	if !analysis.ValidPageSize(o.pageSize) {
		return nil, fmt.Errorf("-size %d: must be one of %s", o.pageSize, pageSizesText())
	}
	events = append(events, analysis.PageSizeChanged{Size: o.pageSize})
	if o.page > 1 {
		events = append(events, analysis.PageChanged{Page: o.page - 1})
	}
	return events, nil
}

func pageSizesText() string {
	sizes := make([]string, len(analysis.PageSizes))
	for i, n := range analysis.PageSizes {
		sizes[i] = strconv.Itoa(n)
	}
	return strings.Join(sizes, ", ")
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
