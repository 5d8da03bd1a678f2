package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jaymin91-1/MyAsset/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "github.com/jaymin91-1/MyAsset/internal/sheets"
)

// Client stores one ledger per spreadsheet tab, named after the currency
// code (KRW, TWD, USD, ...). The tab layout is a header row followed by
// one row per transaction: date, kind, category, amount, memo, id.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var (
	_ ports.LedgerLoader = (*Client)(nil)
	_ ports.LedgerSaver  = (*Client)(nil)
	_ ports.LedgerStore  = (*Client)(nil)
)

// New creates a Sheets client for the given spreadsheet. Credentials
// come from the environment: GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Load reads the full tab for a currency. Any read failure (network,
// auth, malformed payload) is logged and converted to an empty ledger;
// callers never see a load error. Rows whose date fails to parse are
// dropped and counted, matching the storage's load contract.
func (c *Client) Load(ctx context.Context, currency string) core.Ledger {
	empty := core.Ledger{Currency: currency}
	if c.svc == nil {
		slog.WarnContext(ctx, "Sheets service not initialized, returning empty ledger", "currency", currency)
		return empty
	}

	rng := fmt.Sprintf("%s!A:F", currency)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		slog.WarnContext(ctx, "Ledger read failed, returning empty ledger",
			"currency", currency, "range", rng, "error", err)
		return empty
	}

	ledger, dropped := parseLedger(currency, resp.Values)
	if dropped > 0 {
		slog.WarnContext(ctx, "Dropped rows with unparseable dates during load",
			"currency", currency, "dropped", dropped, "kept", len(ledger.Rows))
	}
	return ledger
}

// Save overwrites the currency's tab with exactly the rows in the given
// ledger. Dates are serialized as YYYY-MM-DD text since the storage
// layer treats them as strings. Errors are returned for the caller to
// surface; in-memory state is not rolled back.
func (c *Client) Save(ctx context.Context, l core.Ledger) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRng := fmt.Sprintf("%s!A:F", l.Currency)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRng, err)
	}

	vr := &gsheet.ValueRange{Values: serializeLedger(l)}
	writeRng := fmt.Sprintf("%s!A1", l.Currency)
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s rows to %s: %w", l.Currency, writeRng, err)
	}

	slog.InfoContext(ctx, "Ledger saved",
		"currency", l.Currency, "rows", len(l.Rows))
	return nil
}
