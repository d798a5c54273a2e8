package collection

import (
	"fmt"
	"time"

	"fintrack/internal/analysis"
	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// Dashboard memoizes summaries of a collection per version and options.
// A cached summary is only reused while the collection is unchanged, so
// results are the same as calling analysis.Summarize directly.
type Dashboard struct {
	coll  *Collection
	memo  *cache.LRUCache[core.Summary]
	clock func() time.Time
}

func NewDashboard(c *Collection) *Dashboard {
	return &Dashboard{
		coll:  c,
		memo:  cache.NewLRUCache[core.Summary](16, time.Minute),
		clock: time.Now,
	}
}

// Summary returns the dashboard for the current collection. opts.Now is
// filled from the dashboard clock when zero. The result is the caller's own
// copy.
func (d *Dashboard) Summary(opts analysis.SummaryOptions) core.Summary {
	if opts.Now.IsZero() {
		opts.Now = d.clock()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	day := core.DateOnly(opts.Now, loc).Format("2006-01-02")
	key := fmt.Sprintf("%d|%d|%d|%d|%s|%s|%s", d.coll.Version(), opts.TopN, opts.RecentN, opts.PeriodDays, opts.DailyType, day, loc)
	if s, ok := d.memo.Get(key); ok {
		return s.Clone()
	}
	s := analysis.Summarize(d.coll.All(), opts)
	d.memo.Set(key, s)
	return s.Clone()
}

// Invalidate drops all memoized summaries.
func (d *Dashboard) Invalidate() { d.memo.Purge() }
