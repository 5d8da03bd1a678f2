package core

import "testing"

func TestCrossRate(t *testing.T) {
	cases := []struct {
		refToA, refToB, out float64
	}{
		{1400, 32, 43.75}, // KRW per USD / TWD per USD = KRW per TWD
		{1400, 0, 0},      // zero divisor is defined as zero
		{0, 32, 0},
	}
	for _, tc := range cases {
		if got := CrossRate(tc.refToA, tc.refToB); got != tc.out {
			t.Fatalf("CrossRate(%v, %v) expected %v, got %v", tc.refToA, tc.refToB, tc.out, got)
		}
	}
}

func TestTotalInBase(t *testing.T) {
	snap := Snapshot{Base: "KRW", Rates: map[string]float64{"USD": 1400, "TWD": 43}}
	balances := map[string]int64{"KRW": 488000, "USD": 100, "TWD": 0}

	total := TotalInBase(balances, snap)
	if total != 488000+100*1400 {
		t.Fatalf("expected 628000, got %v", total)
	}

	// A currency without a rate contributes nothing.
	balances["JPY"] = 5000
	if got := TotalInBase(balances, snap); got != total {
		t.Fatalf("unknown currency changed the total: %v != %v", got, total)
	}
}

func TestTotalInZeroSafety(t *testing.T) {
	snap := Snapshot{Base: "KRW", Rates: map[string]float64{"USD": 1400, "TWD": 0}}

	if got := TotalIn(628000, "USD", snap); got != 628000.0/1400 {
		t.Fatalf("unexpected USD total: %v", got)
	}
	if got := TotalIn(628000, "TWD", snap); got != 0 {
		t.Fatalf("zero rate must yield 0, got %v", got)
	}
	if got := TotalIn(628000, "JPY", snap); got != 0 {
		t.Fatalf("missing rate must yield 0, got %v", got)
	}
	if got := TotalIn(628000, "KRW", snap); got != 628000 {
		t.Fatalf("base re-expression must be identity, got %v", got)
	}
}
