package sheets

import (
	"context"

	"github.com/jaymin91-1/MyAsset/internal/core"
)

// Ports for outbound ledger storage adapters.
type (
	// LedgerLoader reads the full ledger for a currency. Load never
	// returns an error: empty or unreadable sources come back as an
	// empty ledger shaped for that currency.
	LedgerLoader interface {
		Load(ctx context.Context, currency string) core.Ledger
	}

	// LedgerSaver overwrites a currency's full ledger. There is no
	// partial write; every save serializes the whole in-memory ledger.
	// Write failures are returned to the caller.
	LedgerSaver interface {
		Save(ctx context.Context, l core.Ledger) error
	}

	// LedgerStore is the combined port the service layer depends on.
	LedgerStore interface {
		LedgerLoader
		LedgerSaver
	}
)
