package format

import (
	"github.com/shopspring/decimal"

	"moneysaver/internal/core"
	"moneysaver/internal/stats"
)

// NoData is the placeholder shown for a statistic computed over zero
// eligible records.
const NoData = "no data"

// Summary is the statistics panel: the six scalar statistics recomputed
// whenever the active ledger or filter changes, already rendered as
// label text.
type Summary struct {
	Expenditure SideSummary `json:"expenditure"`
	Income      SideSummary `json:"income"`
}

// SideSummary carries the statistics of one flag partition. MaxByDay
// and MaxByCategory are only populated on the expenditure side,
// MaxByMonth only on the income side, mirroring the panel layout.
type SideSummary struct {
	MaxByDay      string `json:"max_by_day,omitempty"`
	MaxByCategory string `json:"max_by_category,omitempty"`
	MaxByMonth    string `json:"max_by_month,omitempty"`
	MonthlyAvg    string `json:"monthly_avg"`
	Total         string `json:"total"`
}

// NewSummary computes the full panel from an unpartitioned record set.
// Empty partitions produce the NoData placeholder, never an error.
func NewSummary(records []core.Record) Summary {
	income, expenditure := stats.Partition(records)

	s := Summary{
		Expenditure: SideSummary{
			MaxByDay:      maxLabel(stats.MaxByDay(expenditure)),
			MaxByCategory: maxLabel(stats.MaxByCategory(expenditure)),
			MonthlyAvg:    avgLabel(stats.AvgPerMonth(expenditure)),
			Total:         Currency(stats.Total(expenditure)),
		},
		Income: SideSummary{
			MaxByMonth: maxLabel(stats.MaxByMonth(income)),
			MonthlyAvg: avgLabel(stats.AvgPerMonth(income)),
			Total:      Currency(stats.Total(income)),
		},
	}
	return s
}

func maxLabel(p stats.Point, err error) string {
	if err != nil {
		return NoData
	}
	return Label(p.Value, p.Key)
}

func avgLabel(v decimal.Decimal, err error) string {
	if err != nil {
		return NoData
	}
	return Currency(v)
}
