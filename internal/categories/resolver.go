// Package categories computes the effective category set for a ledger.
//
// The effective set is the union of the configured defaults, every
// category observed in the loaded ledger, and the session's custom
// additions. Custom categories live only in session state until a row
// using one is saved; deleting a category cascades existing rows onto
// the fallback bucket.
package categories

import (
	"errors"
	"sort"
	"strings"

	"github.com/jaymin91-1/MyAsset/internal/core"
)

// ErrCategoryExists signals that an added category is already selectable.
var ErrCategoryExists = errors.New("category already exists")

// Resolver holds the fixed part of the category set.
type Resolver struct {
	defaults []string
	fallback string
}

// NewResolver builds a resolver from the configured default list and
// fallback bucket. The fallback is always part of the effective set.
func NewResolver(defaults []string, fallback string) *Resolver {
	return &Resolver{defaults: defaults, fallback: fallback}
}

// Fallback returns the bucket deleted categories cascade onto.
func (r *Resolver) Fallback() string {
	return r.fallback
}

// Effective returns the deduplicated, sorted set of selectable
// categories for the given ledger and session customs.
func (r *Resolver) Effective(l core.Ledger, customs []string) []string {
	seen := map[string]struct{}{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		seen[name] = struct{}{}
	}
	for _, c := range r.defaults {
		add(c)
	}
	add(r.fallback)
	for _, row := range l.Rows {
		add(row.Category)
	}
	for _, c := range customs {
		add(c)
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Add validates a new custom category against the effective set and
// returns the updated customs slice. Duplicates are rejected with
// ErrCategoryExists, leaving customs untouched.
func (r *Resolver) Add(l core.Ledger, customs []string, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return customs, core.ErrEmptyCategory
	}
	for _, existing := range r.Effective(l, customs) {
		if existing == name {
			return customs, ErrCategoryExists
		}
	}
	return append(customs, name), nil
}

// Remove drops the category from the customs slice if present. The
// ledger-side cascade is the service layer's job.
func Remove(customs []string, name string) []string {
	out := customs[:0]
	for _, c := range customs {
		if c != name {
			out = append(out, c)
		}
	}
	return out
}
