// Package worker mirrors saved ledgers into the reporting archive. It
// reacts to ledger-saved messages and periodically resyncs everything
// as a backstop against lost messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"moneysaver/internal/amqp"
	"moneysaver/internal/core"
)

type (
	// LedgerSource is the slice of the file store the worker needs.
	LedgerSource interface {
		Load(name string) (*core.Ledger, error)
		List() ([]string, error)
	}

	// Mirror is the archive side.
	Mirror interface {
		ReplaceLedger(ctx context.Context, name string, records []core.Record) error
	}
)

type SyncWorker struct {
	source LedgerSource
	mirror Mirror
}

func NewSyncWorker(source LedgerSource, mirror Mirror) *SyncWorker {
	return &SyncWorker{source: source, mirror: mirror}
}

// HandleLedgerSaved reloads the named ledger from the file store and
// mirrors it. The message only names the ledger, so a stale or
// duplicated delivery still converges on the current file contents.
func (w *SyncWorker) HandleLedgerSaved(ctx context.Context, msg *amqp.LedgerSavedMessage) error {
	led, err := w.source.Load(msg.Ledger)
	if err != nil {
		return fmt.Errorf("load ledger %s: %w", msg.Ledger, err)
	}
	if err := w.mirror.ReplaceLedger(ctx, msg.Ledger, led.Records); err != nil {
		return fmt.Errorf("mirror ledger %s: %w", msg.Ledger, err)
	}
	return nil
}

// ResyncAll mirrors every ledger the store knows about. A single bad
// ledger is logged and skipped so the rest still resync.
func (w *SyncWorker) ResyncAll(ctx context.Context) error {
	names, err := w.source.List()
	if err != nil {
		return fmt.Errorf("list ledgers: %w", err)
	}

	synced := 0
	for _, name := range names {
		led, err := w.source.Load(name)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load ledger for resync", "ledger", name, "error", err)
			continue
		}
		if err := w.mirror.ReplaceLedger(ctx, name, led.Records); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror ledger", "ledger", name, "error", err)
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Resync completed", "ledgers", len(names), "synced", synced)
	return nil
}
