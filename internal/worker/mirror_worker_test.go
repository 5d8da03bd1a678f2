package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/jaymin91-1/MyAsset/internal/amqp"
	"github.com/jaymin91-1/MyAsset/internal/core"
	"github.com/jaymin91-1/MyAsset/internal/sheets/memory"
)

type fakeMirror struct {
	replaced []core.Ledger
	fail     bool
}

func (m *fakeMirror) ReplaceLedger(_ context.Context, l core.Ledger) error {
	if m.fail {
		return errors.New("mirror down")
	}
	m.replaced = append(m.replaced, l)
	return nil
}

func TestHandleMutationReloadsAndReplaces(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	_ = store.Save(ctx, core.Ledger{Currency: "KRW", Rows: []core.Row{
		{ID: "r1", Date: core.NewDate(2025, 1, 15), Kind: core.Income, Category: "월급", Amount: 500000},
	}})

	mirror := &fakeMirror{}
	w := NewMirrorWorker(store, mirror)

	msg := amqp.NewLedgerMutationMessage("KRW", amqp.OpInsert, []string{"r1"})
	if err := w.HandleMutation(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(mirror.replaced) != 1 || mirror.replaced[0].Currency != "KRW" || len(mirror.replaced[0].Rows) != 1 {
		t.Fatalf("unexpected mirror state: %+v", mirror.replaced)
	}
}

func TestHandleMutationErrors(t *testing.T) {
	store := memory.New()
	w := NewMirrorWorker(store, &fakeMirror{fail: true})

	msg := amqp.NewLedgerMutationMessage("KRW", amqp.OpDelete, nil)
	if err := w.HandleMutation(context.Background(), msg); err == nil {
		t.Fatalf("expected mirror failure to propagate for requeue")
	}

	if err := w.HandleMutation(context.Background(), &amqp.LedgerMutationMessage{}); err == nil {
		t.Fatalf("expected error for message without currency")
	}
}
