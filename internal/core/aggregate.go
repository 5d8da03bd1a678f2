package core

import "sort"

type (
	// Flow is the income/expense pair for one period.
	Flow struct {
		Income  int64
		Expense int64
	}

	// MonthFlow is the flow for one month of a selected year.
	MonthFlow struct {
		Month int // 1-12
		Flow
	}

	// YearFlow is the flow for one calendar year.
	YearFlow struct {
		Year int
		Flow
	}

	// CategoryAmount is an expense total for one category.
	CategoryAmount struct {
		Name   string
		Amount int64
	}
)

// NetBalance is cumulative income minus cumulative expense over the whole
// ledger, independent of any report filter.
func NetBalance(l Ledger) int64 {
	var net int64
	for _, r := range l.Rows {
		switch r.Kind {
		case Income:
			net += r.Amount
		case Expense:
			net -= r.Amount
		}
	}
	return net
}

// MonthlyFlows aggregates the given year into a complete twelve-month
// axis. Months without activity are present with zero values; chart
// consumers rely on a gap-free axis.
func MonthlyFlows(l Ledger, year int) []MonthFlow {
	out := make([]MonthFlow, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, r := range l.Rows {
		if r.Date.Year() != year {
			continue
		}
		m := &out[r.Date.Month()-1]
		switch r.Kind {
		case Income:
			m.Income += r.Amount
		case Expense:
			m.Expense += r.Amount
		}
	}
	return out
}

// YearlyFlows aggregates the whole ledger per year. The axis is the
// contiguous range from the earliest to the latest observed year, filled
// with zeros where a year has no activity. An empty ledger yields nil.
func YearlyFlows(l Ledger) []YearFlow {
	if len(l.Rows) == 0 {
		return nil
	}
	minYear, maxYear := l.Rows[0].Date.Year(), l.Rows[0].Date.Year()
	for _, r := range l.Rows[1:] {
		y := r.Date.Year()
		if y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	out := make([]YearFlow, maxYear-minYear+1)
	for i := range out {
		out[i].Year = minYear + i
	}
	for _, r := range l.Rows {
		y := &out[r.Date.Year()-minYear]
		switch r.Kind {
		case Income:
			y.Income += r.Amount
		case Expense:
			y.Expense += r.Amount
		}
	}
	return out
}

// ExpenseByCategory sums expense rows of the given year per category.
// Unlike the time axes, categories with no expense are omitted. Order is
// amount descending, name ascending on ties.
func ExpenseByCategory(l Ledger, year int) []CategoryAmount {
	totals := map[string]int64{}
	for _, r := range l.Rows {
		if r.Kind != Expense || r.Date.Year() != year {
			continue
		}
		totals[r.Category] += r.Amount
	}
	out := make([]CategoryAmount, 0, len(totals))
	for name, amount := range totals {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Years lists the distinct years present in the ledger, newest first.
// Used to populate the report year selector.
func Years(l Ledger) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, r := range l.Rows {
		y := r.Date.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
