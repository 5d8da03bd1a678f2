package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jaymin91-1/MyAsset/internal/amqp"
	"github.com/jaymin91-1/MyAsset/internal/categories"
	"github.com/jaymin91-1/MyAsset/internal/core"
	"github.com/jaymin91-1/MyAsset/internal/sheets/memory"
)

type capturingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.LedgerMutationMessage
	fail bool
}

func (p *capturingPublisher) PublishLedgerMutation(_ context.Context, msg *amqp.LedgerMutationMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func newTestService() (*LedgerService, *memory.Store, *capturingPublisher) {
	store := memory.New()
	pub := &capturingPublisher{}
	resolver := categories.NewResolver([]string{"식비", "월급"}, "기타")
	svc := NewLedgerService(store, resolver, pub, []string{"KRW", "TWD", "USD"})
	return svc, store, pub
}

func TestInsertAndScenario(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	if _, err := svc.Insert(ctx, "KRW", RowInput{
		Date: "2025-01-15", Kind: "income", Category: "월급", Amount: "500,000",
	}); err != nil {
		t.Fatalf("insert income: %v", err)
	}
	if _, err := svc.Insert(ctx, "KRW", RowInput{
		Date: "2025-01-16", Kind: "expense", Category: "식비", Amount: 12000, Memo: "점심",
	}); err != nil {
		t.Fatalf("insert expense: %v", err)
	}

	ledger := svc.Load(ctx, "KRW")
	if net := core.NetBalance(ledger); net != 488000 {
		t.Fatalf("expected net 488000, got %d", net)
	}
	flows := core.MonthlyFlows(ledger, 2025)
	if flows[0].Income != 500000 || flows[0].Expense != 12000 {
		t.Fatalf("january flows wrong: %+v", flows[0])
	}
	for _, f := range flows[1:] {
		if f.Income != 0 || f.Expense != 0 {
			t.Fatalf("month %d should be zero: %+v", f.Month, f)
		}
	}

	if len(pub.msgs) != 2 || pub.msgs[0].Op != amqp.OpInsert {
		t.Fatalf("expected 2 insert events, got %+v", pub.msgs)
	}
}

func TestInsertRejectsInvalidInput(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		in     RowInput
		expect error
	}{
		{"zero amount", RowInput{Date: "2025-01-01", Kind: "expense", Category: "식비", Amount: "0"}, core.ErrInvalidAmount},
		{"unparseable amount", RowInput{Date: "2025-01-01", Kind: "expense", Category: "식비", Amount: "abc"}, core.ErrInvalidAmount},
		{"negative amount", RowInput{Date: "2025-01-01", Kind: "expense", Category: "식비", Amount: -5}, core.ErrInvalidAmount},
		{"bad date", RowInput{Date: "01/02/2025", Kind: "expense", Category: "식비", Amount: 10}, core.ErrInvalidDate},
		{"bad kind", RowInput{Date: "2025-01-01", Kind: "transfer", Category: "식비", Amount: 10}, core.ErrInvalidKind},
	}
	for _, tc := range cases {
		if _, err := svc.Insert(ctx, "KRW", tc.in); !errors.Is(err, tc.expect) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.expect, err)
		}
	}

	// Rejected input must never reach the store.
	if l := store.Load(ctx, "KRW"); len(l.Rows) != 0 {
		t.Fatalf("store mutated by rejected input: %+v", l.Rows)
	}
}

func TestUpdateByID(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	row, err := svc.Insert(ctx, "KRW", RowInput{Date: "2025-01-15", Kind: "expense", Category: "식비", Amount: 9000})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated, err := svc.Update(ctx, "KRW", row.ID, RowInput{
		Date: "2025-01-17", Kind: "expense", Category: "식비", Amount: "11,000", Memo: "저녁",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != row.ID || updated.Amount != 11000 || updated.Memo != "저녁" {
		t.Fatalf("unexpected updated row: %+v", updated)
	}

	if _, err := svc.Update(ctx, "KRW", "missing-id", RowInput{
		Date: "2025-01-17", Kind: "expense", Category: "식비", Amount: 1,
	}); !errors.Is(err, core.ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
}

func TestDeleteByIDs(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Insert(ctx, "KRW", RowInput{Date: "2025-01-01", Kind: "expense", Category: "식비", Amount: 1})
	b, _ := svc.Insert(ctx, "KRW", RowInput{Date: "2025-01-02", Kind: "expense", Category: "식비", Amount: 2})
	c, _ := svc.Insert(ctx, "KRW", RowInput{Date: "2025-01-03", Kind: "expense", Category: "식비", Amount: 3})

	deleted, err := svc.Delete(ctx, "KRW", []string{a.ID, c.ID, "unknown"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
	l := store.Load(ctx, "KRW")
	if len(l.Rows) != 1 || l.Rows[0].ID != b.ID {
		t.Fatalf("unexpected survivors: %+v", l.Rows)
	}

	// No matches, no write.
	if deleted, err := svc.Delete(ctx, "KRW", []string{"nope"}); err != nil || deleted != 0 {
		t.Fatalf("expected no-op delete, got deleted=%d err=%v", deleted, err)
	}
}

func TestDeleteCategoryCascade(t *testing.T) {
	svc, store, pub := newTestService()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if _, err := svc.Insert(ctx, "KRW", RowInput{
			Date: "2025-02-01", Kind: "expense", Category: "병원", Amount: i * 100,
		}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	_, _ = svc.Insert(ctx, "KRW", RowInput{Date: "2025-02-02", Kind: "expense", Category: "식비", Amount: 50})

	customs, rewritten, err := svc.DeleteCategory(ctx, "KRW", []string{"병원", "여행"}, "병원")
	if err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if rewritten != 3 {
		t.Fatalf("expected 3 rewritten rows, got %d", rewritten)
	}
	if len(customs) != 1 || customs[0] != "여행" {
		t.Fatalf("expected custom removed, got %v", customs)
	}

	// Persisted store must reflect the cascade.
	l := store.Load(ctx, "KRW")
	for _, r := range l.Rows {
		if r.Category == "병원" {
			t.Fatalf("row still tagged with deleted category: %+v", r)
		}
	}
	var fallback int
	for _, r := range l.Rows {
		if r.Category == "기타" {
			fallback++
		}
	}
	if fallback != 3 {
		t.Fatalf("expected 3 rows on fallback bucket, got %d", fallback)
	}

	last := pub.msgs[len(pub.msgs)-1]
	if last.Op != amqp.OpCategoryDelete || len(last.RowIDs) != 3 {
		t.Fatalf("unexpected cascade event: %+v", last)
	}

	// Deleting a category no row uses touches nothing.
	if _, rewritten, err := svc.DeleteCategory(ctx, "KRW", nil, "없는카테고리"); err != nil || rewritten != 0 {
		t.Fatalf("expected no-op, got rewritten=%d err=%v", rewritten, err)
	}
}

func TestSaveFailureSurfacesWithoutRollback(t *testing.T) {
	svc, store, pub := newTestService()
	ctx := context.Background()

	store.FailSaves(true)
	if _, err := svc.Insert(ctx, "KRW", RowInput{
		Date: "2025-01-01", Kind: "income", Category: "월급", Amount: 100,
	}); err == nil {
		t.Fatalf("expected save failure to surface")
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("failed save must not publish events: %+v", pub.msgs)
	}
}

func TestPublisherFailureIsNonFatal(t *testing.T) {
	svc, store, pub := newTestService()
	pub.fail = true
	ctx := context.Background()

	if _, err := svc.Insert(ctx, "KRW", RowInput{
		Date: "2025-01-01", Kind: "income", Category: "월급", Amount: 100,
	}); err != nil {
		t.Fatalf("publisher failure must not fail the save: %v", err)
	}
	if l := store.Load(ctx, "KRW"); len(l.Rows) != 1 {
		t.Fatalf("expected row persisted, got %+v", l.Rows)
	}
}

func TestAssetsOverview(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _ = svc.Insert(ctx, "KRW", RowInput{Date: "2025-01-15", Kind: "income", Category: "월급", Amount: 500000})
	_, _ = svc.Insert(ctx, "KRW", RowInput{Date: "2025-01-16", Kind: "expense", Category: "식비", Amount: 12000})
	_, _ = svc.Insert(ctx, "USD", RowInput{Date: "2025-01-20", Kind: "income", Category: "월급", Amount: 100})

	snap := core.Snapshot{Base: "KRW", Rates: map[string]float64{"USD": 1400, "TWD": 0}}
	ov, err := svc.AssetsOverview(ctx, snap)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	wantBase := 488000.0 + 100*1400
	if ov.TotalBase != wantBase {
		t.Fatalf("expected total %v, got %v", wantBase, ov.TotalBase)
	}
	byCurrency := map[string]CurrencyTotal{}
	for _, ct := range ov.Totals {
		byCurrency[ct.Currency] = ct
	}
	if byCurrency["KRW"].Total != wantBase {
		t.Fatalf("KRW total: %v", byCurrency["KRW"])
	}
	if byCurrency["USD"].Total != wantBase/1400 {
		t.Fatalf("USD total: %v", byCurrency["USD"])
	}
	// Zero rate re-expression is defined as zero, not a division error.
	if byCurrency["TWD"].Total != 0 {
		t.Fatalf("TWD total must be 0: %v", byCurrency["TWD"])
	}
	if byCurrency["KRW"].NetBalance != 488000 {
		t.Fatalf("KRW net: %v", byCurrency["KRW"])
	}
}
