// Package storage keeps a local SQLite mirror of the spreadsheet
// ledgers. The mirror is not a store of record: the mirror worker
// replaces a currency's partition wholesale whenever a mutation event
// arrives, so its content is whatever the sheet held at the last sync.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jaymin91-1/MyAsset/internal/core"

	_ "modernc.org/sqlite"
)

type MirrorRepository struct {
	db *sql.DB
}

func NewMirrorRepository(dbPath string) (*MirrorRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &MirrorRepository{db: db}, nil
}

func (r *MirrorRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceLedger swaps the mirror's partition for the ledger's currency
// with the given rows, in one transaction. Mirrors the full-overwrite
// semantics of the sheet itself.
func (r *MirrorRepository) ReplaceLedger(ctx context.Context, l core.Ledger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_rows WHERE currency = ?`, l.Currency); err != nil {
		return fmt.Errorf("clear %s partition: %w", l.Currency, err)
	}

	now := time.Now().UTC()
	for _, row := range l.Rows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_rows (row_id, currency, date, kind, category, amount, memo, synced_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID, l.Currency, row.Date.String(), string(row.Kind), row.Category, row.Amount, row.Memo, now)
		if err != nil {
			return fmt.Errorf("insert row %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Ledger mirror replaced",
		"currency", l.Currency, "rows", len(l.Rows))
	return nil
}

// LoadLedger reads a currency's mirrored ledger in storage order. Rows
// whose mirrored date no longer parses are skipped.
func (r *MirrorRepository) LoadLedger(ctx context.Context, currency string) (core.Ledger, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT row_id, date, kind, category, amount, memo
		 FROM ledger_rows WHERE currency = ? ORDER BY rowid`, currency)
	if err != nil {
		return core.Ledger{}, fmt.Errorf("query %s rows: %w", currency, err)
	}
	defer rows.Close()

	ledger := core.Ledger{Currency: currency}
	for rows.Next() {
		var (
			row     core.Row
			dateStr string
			kind    string
		)
		if err := rows.Scan(&row.ID, &dateStr, &kind, &row.Category, &row.Amount, &row.Memo); err != nil {
			return core.Ledger{}, fmt.Errorf("scan row: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			continue
		}
		row.Date = date
		row.Kind = core.Kind(kind)
		ledger.Rows = append(ledger.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return core.Ledger{}, fmt.Errorf("iterate rows: %w", err)
	}
	return ledger, nil
}

// LastSyncedAt reports when a currency's partition was last replaced.
// Returns the zero time when the mirror has no rows for it.
func (r *MirrorRepository) LastSyncedAt(ctx context.Context, currency string) (time.Time, error) {
	var raw sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(synced_at) FROM ledger_rows WHERE currency = ?`, currency).Scan(&raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("query last sync: %w", err)
	}
	if !raw.Valid {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw.String); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable sync timestamp %q", raw.String)
}
