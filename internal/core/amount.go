// Package core holds the ledger domain model and the pure computations
// over it: amount parsing, aggregation and currency conversion.
//
// This file contains the total amount parser. Bad money input never
// raises; it parses to zero so callers see every intermediate keystroke
// state as a value, not an error. Rejecting non-positive amounts is an
// insert-time policy, not a parser concern.
package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts a stored or user-entered amount into a whole-unit
// integer.
//
// Numeric input is truncated toward an integer. Textual input has
// grouping separators stripped and is parsed as a decimal, then
// truncated. Empty or unparseable input yields 0. Negative numeric
// input passes through unchanged.
//
// Examples:
//
//	ParseAmount("1,234.9") -> 1234
//	ParseAmount("")        -> 0
//	ParseAmount("abc")     -> 0
//	ParseAmount(-5)        -> -5
func ParseAmount(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case string:
		return parseAmountString(n)
	default:
		return 0
	}
}

func parseAmountString(s string) int64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}
