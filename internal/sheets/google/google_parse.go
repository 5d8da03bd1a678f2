package google

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jaymin91-1/MyAsset/internal/core"
)

// Column order in every ledger tab. The first five match the historical
// schema; id was added later, so older rows may lack it and get one
// synthesized at load time.
var headerRow = []string{"date", "kind", "category", "amount", "memo", "id"}

// parseLedger converts raw tab values into a ledger. Short rows are
// padded with blanks (older tabs may miss trailing columns), a header
// row is skipped, and rows with unparseable dates are dropped. Returns
// the ledger and the number of dropped rows.
func parseLedger(currency string, values [][]any) (core.Ledger, int) {
	ledger := core.Ledger{Currency: currency}
	dropped := 0
	for i, raw := range values {
		cols := padColumns(raw, len(headerRow))
		if i == 0 && isHeader(cols) {
			continue
		}
		if isBlankRow(cols) {
			continue
		}
		date, err := core.ParseDate(cols[0])
		if err != nil {
			dropped++
			continue
		}
		id := strings.TrimSpace(cols[5])
		if id == "" {
			id = uuid.NewString()
		}
		ledger.Rows = append(ledger.Rows, core.Row{
			ID:       id,
			Date:     date,
			Kind:     core.Kind(strings.TrimSpace(cols[1])),
			Category: strings.TrimSpace(cols[2]),
			Amount:   core.ParseAmount(cols[3]),
			Memo:     cols[4],
		})
	}
	return ledger, dropped
}

// serializeLedger renders the header plus one row per transaction in the
// fixed column order, with dates in their textual storage form.
func serializeLedger(l core.Ledger) [][]any {
	out := make([][]any, 0, len(l.Rows)+1)
	header := make([]any, len(headerRow))
	for i, h := range headerRow {
		header[i] = h
	}
	out = append(out, header)
	for _, r := range l.Rows {
		out = append(out, []any{
			r.Date.String(),
			string(r.Kind),
			r.Category,
			r.Amount,
			r.Memo,
			r.ID,
		})
	}
	return out
}

// padColumns normalizes a raw row to exactly n string columns, keeping
// the original value for amount-style cells via fmt.Sprint. The amount
// column is re-read through core.ParseAmount, which handles both numeric
// and textual values.
func padColumns(raw []any, n int) []string {
	cols := make([]string, n)
	for i := 0; i < n && i < len(raw); i++ {
		cols[i] = fmt.Sprint(raw[i])
	}
	return cols
}

func isHeader(cols []string) bool {
	return strings.EqualFold(strings.TrimSpace(cols[0]), headerRow[0])
}

func isBlankRow(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
