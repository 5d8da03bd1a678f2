package core

// Snapshot is a set of exchange rates expressed as units of Base per one
// unit of the keyed currency. Base itself is always 1:1.
type Snapshot struct {
	Base  string
	Rates map[string]float64
}

// RateToBase returns the rate for the given currency, 1 for the base
// itself, and 0 when the currency is unknown.
func (s Snapshot) RateToBase(currency string) float64 {
	if currency == s.Base {
		return 1
	}
	return s.Rates[currency]
}

// CrossRate derives A-to-B from two quotes against a common reference:
// units of A per reference divided by units of B per reference. A zero
// divisor yields 0, never a division error.
func CrossRate(refToA, refToB float64) float64 {
	if refToB == 0 {
		return 0
	}
	return refToA / refToB
}

// TotalInBase converts per-currency net balances into a single base-
// denominated total. A currency without a rate contributes nothing.
func TotalInBase(balances map[string]int64, snap Snapshot) float64 {
	var total float64
	for currency, net := range balances {
		total += float64(net) * snap.RateToBase(currency)
	}
	return total
}

// TotalIn re-expresses a base-denominated total in another tracked
// currency. A zero or missing rate yields 0.
func TotalIn(totalBase float64, currency string, snap Snapshot) float64 {
	rate := snap.RateToBase(currency)
	if rate == 0 {
		return 0
	}
	return totalBase / rate
}
