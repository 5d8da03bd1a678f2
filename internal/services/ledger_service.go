// Package services orchestrates the load -> mutate -> save cycle over a
// ledger store. Every mutation re-reads the full ledger from the store,
// applies the change in memory and writes the whole ledger back. Two
// concurrent sessions editing the same currency race last-writer-wins;
// the store has no locking or versioning and this is accepted behavior
// for a single-user tool.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"

	"github.com/jaymin91-1/MyAsset/internal/amqp"
	"github.com/jaymin91-1/MyAsset/internal/categories"
	"github.com/jaymin91-1/MyAsset/internal/core"
	"github.com/jaymin91-1/MyAsset/internal/sheets"
)

type (
	// MutationPublisher is the optional event sink notified after every
	// successful save.
	MutationPublisher interface {
		PublishLedgerMutation(ctx context.Context, msg *amqp.LedgerMutationMessage) error
	}

	// RowInput carries user-entered row fields. Amount may be a native
	// number or free text with grouping separators; it goes through the
	// total parser before the fail-closed insert validation.
	RowInput struct {
		Date     string
		Kind     string
		Category string
		Amount   any
		Memo     string
	}

	// CurrencyTotal is one line of the assets overview.
	CurrencyTotal struct {
		Currency   string
		NetBalance int64
		// Total is the aggregate asset value re-expressed in this
		// currency; zero when no rate is known.
		Total float64
	}

	// Overview is the cross-currency assets summary.
	Overview struct {
		Base      string
		TotalBase float64
		Totals    []CurrencyTotal
	}

	// LedgerService wires the ledger store, the category resolver and
	// the optional mutation event publisher.
	LedgerService struct {
		store      sheets.LedgerStore
		resolver   *categories.Resolver
		events     MutationPublisher
		currencies []string
	}
)

func NewLedgerService(store sheets.LedgerStore, resolver *categories.Resolver, events MutationPublisher, currencies []string) *LedgerService {
	return &LedgerService{
		store:      store,
		resolver:   resolver,
		events:     events,
		currencies: currencies,
	}
}

// Currencies lists the tracked currency codes.
func (s *LedgerService) Currencies() []string {
	return s.currencies
}

// Resolver exposes the category resolver for read-side consumers.
func (s *LedgerService) Resolver() *categories.Resolver {
	return s.resolver
}

// Load reads the full ledger for a currency. Never fails; unreadable
// stores come back empty.
func (s *LedgerService) Load(ctx context.Context, currency string) core.Ledger {
	return s.store.Load(ctx, currency)
}

// Insert parses and validates the input, appends the row to the
// currency's ledger and persists the whole ledger. Rejected input never
// touches the store.
func (s *LedgerService) Insert(ctx context.Context, currency string, in RowInput) (core.Row, error) {
	row, err := rowFromInput(in)
	if err != nil {
		return core.Row{}, err
	}
	row.ID = uuid.NewString()

	ledger := s.store.Load(ctx, currency)
	ledger.Rows = append(ledger.Rows, row)
	if err := s.save(ctx, ledger, amqp.OpInsert, []string{row.ID}); err != nil {
		return core.Row{}, err
	}
	return row, nil
}

// Update replaces the fields of the row with the given ID and persists
// the ledger. The row is addressed by its stored ID, never by position.
func (s *LedgerService) Update(ctx context.Context, currency, id string, in RowInput) (core.Row, error) {
	row, err := rowFromInput(in)
	if err != nil {
		return core.Row{}, err
	}

	ledger := s.store.Load(ctx, currency)
	i := ledger.FindByID(id)
	if i < 0 {
		return core.Row{}, core.ErrRowNotFound
	}
	row.ID = id
	ledger.Rows[i] = row
	if err := s.save(ctx, ledger, amqp.OpUpdate, []string{id}); err != nil {
		return core.Row{}, err
	}
	return row, nil
}

// Delete removes the rows with the given IDs and persists the ledger.
// Unknown IDs are ignored; the returned count is how many rows went
// away. Nothing is written when no row matched.
func (s *LedgerService) Delete(ctx context.Context, currency string, ids []string) (int, error) {
	ledger := s.store.Load(ctx, currency)
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := ledger.Rows[:0]
	for _, r := range ledger.Rows {
		if _, ok := drop[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	deleted := len(ledger.Rows) - len(kept)
	if deleted == 0 {
		return 0, nil
	}
	ledger.Rows = kept
	if err := s.save(ctx, ledger, amqp.OpDelete, ids); err != nil {
		return 0, err
	}
	return deleted, nil
}

// Categories returns the effective category set for a currency given
// the session's custom additions.
func (s *LedgerService) Categories(ctx context.Context, currency string, customs []string) []string {
	return s.resolver.Effective(s.store.Load(ctx, currency), customs)
}

// AddCategory validates a new custom category against the effective set
// and returns the updated customs. The addition lives in session state
// only; it sticks once a row using it is saved.
func (s *LedgerService) AddCategory(ctx context.Context, currency string, customs []string, name string) ([]string, error) {
	return s.resolver.Add(s.store.Load(ctx, currency), customs, name)
}

// DeleteCategory removes the category from the session customs and
// rewrites every ledger row tagged with it onto the fallback bucket,
// persisting immediately. Returns the updated customs and how many rows
// were rewritten.
func (s *LedgerService) DeleteCategory(ctx context.Context, currency string, customs []string, name string) ([]string, int, error) {
	customs = categories.Remove(customs, name)

	ledger := s.store.Load(ctx, currency)
	var rewritten []string
	for i, r := range ledger.Rows {
		if r.Category == name {
			ledger.Rows[i].Category = s.resolver.Fallback()
			rewritten = append(rewritten, r.ID)
		}
	}
	if len(rewritten) == 0 {
		return customs, 0, nil
	}
	if err := s.save(ctx, ledger, amqp.OpCategoryDelete, rewritten); err != nil {
		return customs, 0, err
	}
	return customs, len(rewritten), nil
}

// AssetsOverview loads every tracked currency's ledger concurrently,
// totals the net balances in the snapshot's base currency and
// re-expresses the aggregate in each tracked currency.
func (s *LedgerService) AssetsOverview(ctx context.Context, snap core.Snapshot) (Overview, error) {
	balances := make([]int64, len(s.currencies))

	g, gctx := errgroup.WithContext(ctx)
	for i, currency := range s.currencies {
		g.Go(func() error {
			balances[i] = core.NetBalance(s.store.Load(gctx, currency))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	byCurrency := make(map[string]int64, len(s.currencies))
	for i, currency := range s.currencies {
		byCurrency[currency] = balances[i]
	}
	totalBase := core.TotalInBase(byCurrency, snap)

	ov := Overview{Base: snap.Base, TotalBase: totalBase}
	for i, currency := range s.currencies {
		ov.Totals = append(ov.Totals, CurrencyTotal{
			Currency:   currency,
			NetBalance: balances[i],
			Total:      core.TotalIn(totalBase, currency, snap),
		})
	}
	return ov, nil
}

func (s *LedgerService) save(ctx context.Context, l core.Ledger, op string, rowIDs []string) error {
	if err := s.store.Save(ctx, l); err != nil {
		return fmt.Errorf("save %s ledger: %w", l.Currency, err)
	}
	if s.events != nil {
		msg := amqp.NewLedgerMutationMessage(l.Currency, op, rowIDs)
		if err := s.events.PublishLedgerMutation(ctx, msg); err != nil {
			// Mirroring is best-effort; the save already succeeded.
			slog.WarnContext(ctx, "Failed to publish ledger mutation",
				"currency", l.Currency, "op", op, "error", err)
		}
	}
	return nil
}

func rowFromInput(in RowInput) (core.Row, error) {
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Row{}, core.ErrInvalidDate
	}
	row := core.Row{
		Date:     date,
		Kind:     core.Kind(in.Kind),
		Category: in.Category,
		Amount:   core.ParseAmount(in.Amount),
		Memo:     in.Memo,
	}
	if err := row.ValidateForInsert(); err != nil {
		return core.Row{}, err
	}
	return row, nil
}
