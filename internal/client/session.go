package client

import (
	"context"
	"sync"

	"fintrack/internal/analysis"
	"fintrack/internal/collection"
	"fintrack/internal/core"
)

// Session is one signed-in user's working set: the collection fetched from
// the server, the list view state and the memoized dashboard over both.
// A mutation that fails leaves the collection as it was.
type Session struct {
	client *Client
	coll   *collection.Collection
	dash   *collection.Dashboard

	mu    sync.Mutex
	state analysis.ListState
}

func NewSession(c *Client) *Session {
	coll := collection.New()
	return &Session{
		client: c,
		coll:   coll,
		dash:   collection.NewDashboard(coll),
		state:  analysis.NewListState(),
	}
}

// Load replaces the collection with the server's current records.
func (s *Session) Load(ctx context.Context) error {
	txs, err := s.client.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll.Replace(txs)
	s.state = analysis.Reduce(s.state, analysis.CollectionReplaced{})
	return nil
}

// Add creates a record. The echoed record is inserted directly when it
// carries an id; otherwise the collection is re-fetched.
func (s *Session) Add(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t, err := s.client.Create(ctx, in)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		return t, s.Load(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll.Put(t)
	s.state = analysis.Reduce(s.state, analysis.CollectionReplaced{})
	return t, nil
}

// Edit sends a partial update and then re-fetches, since the update
// response carries no record.
func (s *Session) Edit(ctx context.Context, id string, in core.TransactionInput) error {
	if err := s.client.Update(ctx, id, in); err != nil {
		return err
	}
	return s.Load(ctx)
}

func (s *Session) Remove(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll.Remove(id)
	s.state = analysis.Reduce(s.state, analysis.CollectionReplaced{})
	return nil
}

// Dispatch applies a list view event and returns the new state.
func (s *Session) Dispatch(ev analysis.Event) analysis.ListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = analysis.Reduce(s.state, ev)
	return s.state
}

func (s *Session) State() analysis.ListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View returns the current page of the filtered, sorted list.
func (s *Session) View() analysis.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analysis.View(s.coll.All(), s.state)
}

// Summary computes the dashboard locally over the whole collection.
// Filters do not apply to it.
func (s *Session) Summary(opts analysis.SummaryOptions) core.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dash.Summary(opts)
}

func (s *Session) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coll.All()
}
