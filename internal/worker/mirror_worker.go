// Package worker consumes ledger mutation events and keeps the local
// SQLite mirror in step with the spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaymin91-1/MyAsset/internal/amqp"
	"github.com/jaymin91-1/MyAsset/internal/core"
	"github.com/jaymin91-1/MyAsset/internal/sheets"
)

// MirrorStore is the sink the worker writes reloaded ledgers into.
type MirrorStore interface {
	ReplaceLedger(ctx context.Context, l core.Ledger) error
}

// MirrorWorker reloads a currency's ledger from the store of record on
// every mutation event and replaces the mirror's partition. Since every
// save is a full overwrite, replaying the latest state is always enough;
// individual row IDs in the message are informational.
type MirrorWorker struct {
	loader sheets.LedgerLoader
	mirror MirrorStore
}

func NewMirrorWorker(loader sheets.LedgerLoader, mirror MirrorStore) *MirrorWorker {
	return &MirrorWorker{loader: loader, mirror: mirror}
}

// HandleMutation processes one mutation event.
func (w *MirrorWorker) HandleMutation(ctx context.Context, msg *amqp.LedgerMutationMessage) error {
	if msg.Currency == "" {
		return fmt.Errorf("mutation message without currency")
	}

	ledger := w.loader.Load(ctx, msg.Currency)
	if err := w.mirror.ReplaceLedger(ctx, ledger); err != nil {
		return fmt.Errorf("replace mirror for %s: %w", msg.Currency, err)
	}

	slog.InfoContext(ctx, "Mirrored ledger mutation",
		"currency", msg.Currency,
		"op", msg.Op,
		"rows", len(ledger.Rows))
	return nil
}

// SyncAll refreshes every currency's mirror partition. Run at startup to
// catch mutations that happened while no worker was consuming.
func (w *MirrorWorker) SyncAll(ctx context.Context, currencies []string) error {
	for _, currency := range currencies {
		ledger := w.loader.Load(ctx, currency)
		if err := w.mirror.ReplaceLedger(ctx, ledger); err != nil {
			return fmt.Errorf("replace mirror for %s: %w", currency, err)
		}
		slog.InfoContext(ctx, "Mirrored ledger", "currency", currency, "rows", len(ledger.Rows))
	}
	return nil
}
