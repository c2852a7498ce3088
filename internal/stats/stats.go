// Package stats is the aggregation engine: pure functions that filter,
// group and sum transaction records into chart-ready series and scalar
// statistics. Nothing here holds state between calls; every function
// operates on the snapshot it is given.
//
// Unless stated otherwise, functions expect to be fed a single flag
// partition (only income or only expenditure records); Partition gives
// callers the two sides. Amounts that failed numeric coercion are
// excluded from every sum, never treated as zero contributions, and a
// sum over zero numeric values is zero.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"moneysaver/internal/core"
)

// Point is one entry of an ordered series destined for charting: a
// grouping key (day, category or month) and the summed amount.
type Point struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// Partition splits records into the income and expenditure sides by
// flag. Records with an out-of-domain flag are dropped.
func Partition(records []core.Record) (income, expenditure []core.Record) {
	for _, r := range records {
		switch r.Flag {
		case core.FlagIncome:
			income = append(income, r)
		case core.FlagExpenditure:
			expenditure = append(expenditure, r)
		}
	}
	return income, expenditure
}

// FilterByCategory keeps only records whose category equals the given
// label. The ALL directive passes the set through unfiltered. Unknown
// labels are legitimate filters; they simply select their own group.
func FilterByCategory(records []core.Record, category string) []core.Record {
	if category == core.CategoryAll {
		return records
	}
	var out []core.Record
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// DailyTotals sums amounts per calendar day, ordered ascending by full
// date. The day key collapses the year (DD.MM), so two records a year
// apart on the same day and month merge into one bucket positioned at
// the earlier date.
func DailyTotals(records []core.Record) []Point {
	sorted := make([]core.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})
	return groupBy(sorted, func(r core.Record) string { return r.Date.DayMonth() })
}

// CategoryTotals sums amounts per category. Group order is the
// insertion order of each category's first occurrence, not sorted.
func CategoryTotals(records []core.Record) []Point {
	return groupBy(records, func(r core.Record) string { return r.Category })
}

// MonthlyTotals sums amounts per month, ordered ascending by the
// two-digit month key. The year collapses exactly as in DailyTotals.
func MonthlyTotals(records []core.Record) []Point {
	out := groupBy(records, func(r core.Record) string { return r.Date.MonthKey() })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// MonthlyBalance takes the full record set, partitions it by flag and
// returns income minus expenditure per month over the union of months
// present on either side. A month missing from one side contributes
// zero for that side, never an error.
func MonthlyBalance(records []core.Record) []Point {
	income, expenditure := Partition(records)
	in := MonthlyTotals(income)
	ex := MonthlyTotals(expenditure)

	exByMonth := make(map[string]decimal.Decimal, len(ex))
	for _, p := range ex {
		exByMonth[p.Key] = p.Value
	}
	seen := make(map[string]bool, len(in))
	out := make([]Point, 0, len(in)+len(ex))
	for _, p := range in {
		out = append(out, Point{Key: p.Key, Value: p.Value.Sub(exByMonth[p.Key])})
		seen[p.Key] = true
	}
	for _, p := range ex {
		if !seen[p.Key] {
			out = append(out, Point{Key: p.Key, Value: p.Value.Neg()})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// MaxOf returns the series entry with the largest sum. Ties go to the
// first entry in series order, which the grouping functions keep
// deterministic (earliest day or month, first-seen category). An empty
// series yields ErrNoData.
func MaxOf(series []Point) (Point, error) {
	if len(series) == 0 {
		return Point{}, core.ErrNoData
	}
	max := series[0]
	for _, p := range series[1:] {
		if p.Value.GreaterThan(max.Value) {
			max = p
		}
	}
	return max, nil
}

// MaxByDay returns the day with the largest summed amount.
func MaxByDay(records []core.Record) (Point, error) {
	return MaxOf(DailyTotals(records))
}

// MaxByCategory returns the category with the largest summed amount.
func MaxByCategory(records []core.Record) (Point, error) {
	return MaxOf(CategoryTotals(records))
}

// MaxByMonth returns the month with the largest summed amount.
func MaxByMonth(records []core.Record) (Point, error) {
	return MaxOf(MonthlyTotals(records))
}

// AvgPerMonth is the arithmetic mean of the per-month sums, not the
// per-transaction mean, rounded to the nearest integer (half away from
// zero). Records spanning no month at all yield ErrNoData.
func AvgPerMonth(records []core.Record) (decimal.Decimal, error) {
	months := MonthlyTotals(records)
	if len(months) == 0 {
		return decimal.Zero, core.ErrNoData
	}
	sum := decimal.Zero
	for _, p := range months {
		sum = sum.Add(p.Value)
	}
	return sum.Div(decimal.NewFromInt(int64(len(months)))).Round(0), nil
}

// Total sums the coerced amounts across the given set.
func Total(records []core.Record) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		if r.Amount.Valid() {
			sum = sum.Add(r.Amount.Decimal())
		}
	}
	return sum
}

// groupBy buckets records by key in first-occurrence order, adding only
// amounts that coerced to a number. A bucket whose every amount is
// invalid still appears, with a zero sum.
func groupBy(records []core.Record, key func(core.Record) string) []Point {
	index := make(map[string]int)
	var out []Point
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Point{Key: k, Value: decimal.Zero})
		}
		if r.Amount.Valid() {
			out[i].Value = out[i].Value.Add(r.Amount.Decimal())
		}
	}
	return out
}
