package memory

import (
	"context"
	"testing"

	"github.com/jaymin91-1/MyAsset/internal/core"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New()
	in := core.Ledger{Currency: "KRW", Rows: []core.Row{
		{ID: "r1", Date: core.NewDate(2025, 1, 15), Kind: core.Income, Category: "월급", Amount: 500000},
	}}
	if err := s.Save(context.Background(), in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out := s.Load(context.Background(), "KRW")
	if len(out.Rows) != 1 || out.Rows[0] != in.Rows[0] {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	// Load must hand out a copy, not shared backing storage.
	out.Rows[0].Amount = 1
	again := s.Load(context.Background(), "KRW")
	if again.Rows[0].Amount != 500000 {
		t.Fatalf("store leaked mutable state: %+v", again.Rows[0])
	}
}

func TestLoadUnknownCurrencyIsEmptyShaped(t *testing.T) {
	s := New()
	l := s.Load(context.Background(), "TWD")
	if l.Currency != "TWD" || len(l.Rows) != 0 {
		t.Fatalf("expected empty TWD ledger, got %+v", l)
	}
}

func TestSaveOverwritesWholePartition(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Save(ctx, core.Ledger{Currency: "USD", Rows: []core.Row{
		{ID: "a", Date: core.NewDate(2025, 1, 1), Kind: core.Income, Category: "salary", Amount: 10},
		{ID: "b", Date: core.NewDate(2025, 1, 2), Kind: core.Expense, Category: "rent", Amount: 3},
	}})
	_ = s.Save(ctx, core.Ledger{Currency: "USD", Rows: []core.Row{
		{ID: "c", Date: core.NewDate(2025, 2, 1), Kind: core.Income, Category: "salary", Amount: 7},
	}})
	l := s.Load(ctx, "USD")
	if len(l.Rows) != 1 || l.Rows[0].ID != "c" {
		t.Fatalf("expected full overwrite, got %+v", l.Rows)
	}
}

func TestFailSaves(t *testing.T) {
	s := New()
	s.FailSaves(true)
	if err := s.Save(context.Background(), core.Ledger{Currency: "KRW"}); err == nil {
		t.Fatalf("expected save error")
	}
}
