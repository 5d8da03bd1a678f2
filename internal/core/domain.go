package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind classifies a ledger row as money in or money out.
	Kind string

	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	// Row is one transaction in a currency's ledger. ID is an opaque,
	// store-persisted key; all mutations address rows by ID, never by
	// their position in the sheet.
	Row struct {
		ID       string
		Date     Date
		Kind     Kind
		Category string
		Amount   int64 // whole currency units, no fractional part
		Memo     string
	}

	// Ledger is the full ordered set of rows for one currency.
	Ledger struct {
		Currency string
		Rows     []Row
	}
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidKind   = errors.New("kind must be income or expense")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
	ErrRowNotFound   = errors.New("row not found")
)

// DateLayout is the textual form dates take in the backing store.
const DateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String returns the date in its storage form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// ValidateForInsert is the fail-closed gate applied before a row enters a
// ledger. Parsing an amount never fails (see ParseAmount); accepting one
// does.
func (r Row) ValidateForInsert() error {
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Clone returns a deep copy so callers can mutate freely before saving.
func (l Ledger) Clone() Ledger {
	rows := make([]Row, len(l.Rows))
	copy(rows, l.Rows)
	return Ledger{Currency: l.Currency, Rows: rows}
}

// FindByID returns the index of the row with the given ID, or -1.
func (l Ledger) FindByID(id string) int {
	for i, r := range l.Rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
