package core

import "testing"

func TestParseAmountStrings(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"1234", 1234},
		{"1,234", 1234},
		{"1,234.9", 1234},
		{" 2,500 ", 2500},
		{"0", 0},
		{"12.99", 12},
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"12abc", 0},
		{"1.2.3", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.out {
			t.Fatalf("%q expected %d, got %d", tc.in, tc.out, got)
		}
	}
}

func TestParseAmountNumeric(t *testing.T) {
	cases := []struct {
		in  any
		out int64
	}{
		{500000, 500000},
		{int64(42), 42},
		{12.9, 12},
		{0.0, 0},
		// Negative numeric input passes through: rejection happens at
		// insert time, not in the parser.
		{-5, -5},
		{-3.7, -3},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.out {
			t.Fatalf("%v expected %d, got %d", tc.in, tc.out, got)
		}
	}
}
