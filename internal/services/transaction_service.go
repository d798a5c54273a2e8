// Package services holds the use cases behind the HTTP API.
package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/analysis"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Publisher announces transaction changes. *amqp.Client implements it.
type Publisher interface {
	Publish(ctx context.Context, ev *amqp.TransactionEvent) error
}

// TransactionService orchestrates record operations across the store, the
// per-user list cache and the change event stream.
type TransactionService struct {
	store   storage.TransactionStore
	records *cache.RecordCache
	events  Publisher
	logger  *log.Logger
	now     func() time.Time
}

// NewTransactionService wires a service. records and events may be nil.
func NewTransactionService(store storage.TransactionStore, records *cache.RecordCache, events Publisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionService{
		store:   store,
		records: records,
		events:  events,
		logger:  logger.WithComponent(log.ComponentTx),
		now:     time.Now,
	}
}

// Create validates in and stores a new record owned by userID.
func (s *TransactionService) Create(ctx context.Context, userID string, in core.TransactionInput) (core.Transaction, error) {
	t, err := in.Validate()
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = storage.NewID()
	t.UserID = userID
	t.CreatedAt = s.now().UTC()

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.invalidate(userID)

	s.logger.InfoContext(ctx, "Transaction created",
		log.NewFields().WithUser(userID).WithTransaction(t.ID, string(t.Type), t.Category, t.Amount.Float()).ToSlice()...)
	s.publish(ctx, amqp.EventCreated, t.ID, userID, t.CreatedAt)
	return t, nil
}

// List returns every record owned by userID in store order.
func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	var gen uint64
	if s.records != nil {
		if txs, ok := s.records.Get(userID); ok {
			return txs, nil
		}
		gen = s.records.Generation(userID)
	}
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	if s.records != nil {
		s.records.Set(userID, gen, txs)
	}
	return txs, nil
}

// owned loads id and checks that userID owns it. Unknown ids are reported
// before foreign ones.
func (s *TransactionService) owned(ctx context.Context, userID, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if !t.Owned(userID) {
		s.logger.WarnContext(ctx, "Access to foreign transaction denied",
			log.FieldUserID, userID, log.FieldTxID, id)
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrAuthorization)
	}
	return t, nil
}

// Get returns one record owned by userID.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.owned(ctx, userID, id)
}

// Update applies the supplied fields of in to the record id. Ownership is
// checked before the input is validated.
func (s *TransactionService) Update(ctx context.Context, userID, id string, in core.TransactionInput) (core.Transaction, error) {
	t, err := s.owned(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := in.ValidatePatch(); err != nil {
		return core.Transaction{}, err
	}
	t = in.Apply(t, s.now())
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.invalidate(userID)

	s.logger.InfoContext(ctx, "Transaction updated", log.FieldUserID, userID, log.FieldTxID, id)
	s.publish(ctx, amqp.EventUpdated, id, userID, *t.UpdatedAt)
	return t, nil
}

// Delete permanently removes the record id.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.invalidate(userID)

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldUserID, userID, log.FieldTxID, id)
	s.publish(ctx, amqp.EventDeleted, id, userID, s.now())
	return nil
}

// Summary computes the dashboard over the caller's records.
func (s *TransactionService) Summary(ctx context.Context, userID string, opts analysis.SummaryOptions) (core.Summary, error) {
	txs, err := s.List(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	return analysis.Summarize(txs, opts), nil
}

func (s *TransactionService) invalidate(userID string) {
	if s.records != nil {
		s.records.Invalidate(userID)
	}
}

// publish sends a change event. Failures are logged and never fail the
// request: the record is already stored.
func (s *TransactionService) publish(ctx context.Context, kind amqp.EventKind, id, userID string, at time.Time) {
	if s.events == nil {
		return
	}
	ev := amqp.NewTransactionEvent(kind, id, userID, at.UnixMilli())
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldEventKind, kind, log.FieldTxID, id, log.FieldError, err)
	}
}
