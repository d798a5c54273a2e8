// Package report renders a transaction page as a text table and a dashboard
// summary as PNG charts.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"fintrack/internal/analysis"
	"fintrack/internal/core"
)

var typeColors = map[core.TransactionType]drawing.Color{
	core.Income:     {R: 165, G: 235, B: 91, A: 255},
	core.Expense:    {R: 250, G: 134, B: 94, A: 255},
	core.Investment: {R: 77, G: 184, B: 255, A: 255},
}

// WriteTable prints the rows of page with a "Start-End of Total" footer.
func WriteTable(w io.Writer, page analysis.Page) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Type", "Category", "Amount", "Notes"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, t := range page.Items {
		date := t.Date
		if ts, ok := t.Time(); ok {
			date = ts.Format("2006-01-02")
		}
		table.Append([]string{date, string(t.Type), t.Category, core.FormatAmount(t.Amount), t.Notes})
	}

	footer := "No transactions"
	if page.Total > 0 {
		footer = fmt.Sprintf("%d-%d of %d", page.Start, page.End, page.Total)
		if len(page.Items) == 0 {
			footer = fmt.Sprintf("page %d is past the end (%d total)", page.Index+1, page.Total)
		}
	}
	table.SetFooter([]string{"", "", "", "", footer})
	table.Render()
}

// WriteTotals prints per-type totals and the balance.
func WriteTotals(w io.Writer, s core.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Type", "Total"})
	for _, typ := range core.TransactionTypes {
		table.Append([]string{string(typ), core.FormatAmount(core.Amount(s.Totals.Of(typ)))})
	}
	table.SetFooter([]string{"Balance", core.FormatAmount(core.Amount(s.Balance))})
	table.Render()
}

// DailyChart draws the summary's daily series. The y axis starts at zero and
// reaches at least 1 so an empty period still renders.
func DailyChart(w io.Writer, s core.Summary) error {
	if len(s.Daily) < 2 {
		return fmt.Errorf("daily series needs at least two days, got %d", len(s.Daily))
	}
	xs := make([]float64, len(s.Daily))
	ys := make([]float64, len(s.Daily))
	for i, p := range s.Daily {
		xs[i] = chart.TimeToFloat64(p.Date)
		ys[i] = p.Amount
	}

	color, ok := typeColors[s.DailyType]
	if !ok {
		color = chart.ColorBlue
	}
	graph := chart.Chart{
		Title: fmt.Sprintf("%s over the last %d days", s.DailyType, s.PeriodDays),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02"),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: analysis.Peak(s.Daily)},
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return core.FormatAmount(core.Amount(vf))
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    string(s.DailyType),
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: color,
					FillColor:   color.WithAlpha(64),
					StrokeWidth: 2,
				},
			},
		},
	}
	return graph.Render(chart.PNG, w)
}

// CategoryChart draws the top expense categories as bars.
func CategoryChart(w io.Writer, s core.Summary) error {
	if len(s.TopCategories) == 0 {
		return fmt.Errorf("no expense categories to chart")
	}
	bars := make([]chart.Value, 0, len(s.TopCategories))
	for _, c := range s.TopCategories {
		bars = append(bars, chart.Value{
			Label: c.Category,
			Value: c.Amount,
			Style: chart.Style{
				FillColor:   typeColors[core.Expense],
				StrokeColor: typeColors[core.Expense],
			},
		})
	}
	barChart := chart.BarChart{
		Title: "Top expense categories",
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Width:    800,
		Height:   400,
		BarWidth: 60,
		Bars:     bars,
	}
	barChart.YAxis.ValueFormatter = func(v interface{}) string {
		if vf, isFloat := v.(float64); isFloat {
			return core.FormatAmount(core.Amount(vf))
		}
		return ""
	}
	return barChart.Render(chart.PNG, w)
}

// WriteCharts renders both charts into dir and returns the files written.
// A chart without data is skipped.
func WriteCharts(dir string, s core.Summary) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart directory: %w", err)
	}
	var written []string
	charts := []struct {
		name   string
		skip   bool
		render func(io.Writer, core.Summary) error
	}{
		{"daily.png", len(s.Daily) < 2, DailyChart},
		{"categories.png", len(s.TopCategories) == 0, CategoryChart},
	}
	for _, c := range charts {
		if c.skip {
			continue
		}
		path := filepath.Join(dir, c.name)
		f, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("create %s: %w", path, err)
		}
		err = c.render(f, s)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("render %s: %w", c.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
