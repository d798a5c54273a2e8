// Package worker mirrors transaction change events into an export sheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// ExportWorker handles transaction events from AMQP. Created records are
// appended, updated ones rewritten in place and deleted ones cleared.
type ExportWorker struct {
	store  storage.TransactionStore
	sheet  sheets.Exporter
	logger *log.Logger

	// last exported version per transaction id; redelivered and
	// out-of-order events at or below it are skipped
	versions *cache.LRUCache[int64]
}

func NewExportWorker(store storage.TransactionStore, sheet sheets.Exporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		store:    store,
		sheet:    sheet,
		logger:   logger.WithComponent(log.ComponentWorker),
		versions: cache.NewLRUCache[int64](10000, 24*time.Hour),
	}
}

// VersionCache exposes the version memo for periodic expiry.
func (w *ExportWorker) VersionCache() cache.Cleaner { return w.versions }

// HandleEvent is an amqp.Handler. A returned error requeues the event.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	fields := log.NewFields().
		WithOperation(log.OpExport).
		WithUser(ev.UserID)
	fields[log.FieldTxID] = ev.ID
	fields[log.FieldEventKind] = string(ev.Kind)
	logger := w.logger.With(fields.ToSlice()...)

	if last, ok := w.versions.Get(ev.ID); ok && ev.Version <= last {
		logger.DebugContext(ctx, "Skipping stale event", "version", ev.Version, "exported_version", last)
		return nil
	}

	var err error
	switch ev.Kind {
	case amqp.EventCreated, amqp.EventUpdated:
		err = w.export(ctx, ev)
	case amqp.EventDeleted:
		err = w.sheet.Clear(ctx, ev.ID)
	default:
		logger.WarnContext(ctx, "Ignoring unknown event kind")
		return nil
	}
	if err != nil {
		return fmt.Errorf("export %s %s: %w", ev.Kind, ev.ID, err)
	}

	w.versions.Set(ev.ID, ev.Version)
	logger.InfoContext(ctx, "Exported transaction event", "version", ev.Version)
	return nil
}

func (w *ExportWorker) export(ctx context.Context, ev *amqp.TransactionEvent) error {
	t, err := w.store.GetTransaction(ctx, ev.ID)
	if errors.Is(err, core.ErrNotFound) {
		// deleted before this event was consumed; its delete event clears the row
		w.logger.DebugContext(ctx, "Transaction gone before export", log.FieldTxID, ev.ID)
		return nil
	}
	if err != nil {
		return err
	}
	if ev.Kind == amqp.EventCreated {
		if _, seen := w.versions.Get(ev.ID); !seen {
			ref, err := w.sheet.Append(ctx, t)
			if err == nil {
				w.logger.DebugContext(ctx, "Appended row", log.FieldTxID, t.ID, log.FieldSheetsRange, ref)
			}
			return err
		}
	}
	return w.sheet.Update(ctx, t)
}

// Backfill rewrites every record of userID into the sheet, recovering rows
// for events missed while the worker was down.
func (w *ExportWorker) Backfill(ctx context.Context, userID string) (int, error) {
	txs, err := w.store.ListTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	synced := 0
	for _, t := range txs {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.sheet.Update(ctx, t); err != nil {
			w.logger.ErrorContext(ctx, "Failed to backfill transaction", log.FieldTxID, t.ID, log.FieldError, err)
			continue
		}
		w.versions.Set(t.ID, version(t))
		synced++
	}
	w.logger.InfoContext(ctx, "Backfill completed",
		log.FieldUserID, userID,
		log.FieldCount, len(txs),
		"synced", synced)
	return synced, nil
}

// version matches the version carried by change events.
func version(t core.Transaction) int64 {
	if t.UpdatedAt != nil {
		return t.UpdatedAt.UnixMilli()
	}
	return t.CreatedAt.UnixMilli()
}

