package format

import (
	"testing"

	"moneysaver/internal/core"
)

func record(t *testing.T, date, category, amount string, flag core.Flag) core.Record {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date %q: %v", date, err)
	}
	return core.Record{Date: d, Category: category, Amount: core.ParseAmount(amount), Flag: flag}
}

func TestNewSummary(t *testing.T) {
	records := []core.Record{
		record(t, "05.01.2025", core.CategoryIncome, "30000", core.FlagIncome),
		record(t, "10.01.2025", "Rent", "12000", core.FlagExpenditure),
		record(t, "10.01.2025", "Food", "500", core.FlagExpenditure),
		record(t, "11.02.2025", "Food", "4000", core.FlagExpenditure),
	}
	s := NewSummary(records)

	if s.Expenditure.MaxByDay != "12 500 Kč (10.01)" {
		t.Errorf("MaxByDay = %q", s.Expenditure.MaxByDay)
	}
	if s.Expenditure.MaxByCategory != "12 000 Kč (Rent)" {
		t.Errorf("MaxByCategory = %q", s.Expenditure.MaxByCategory)
	}
	// Month sums 12500 and 4000, mean 8250.
	if s.Expenditure.MonthlyAvg != "8 250 Kč" {
		t.Errorf("MonthlyAvg = %q", s.Expenditure.MonthlyAvg)
	}
	if s.Expenditure.Total != "16 500 Kč" {
		t.Errorf("Total = %q", s.Expenditure.Total)
	}
	if s.Income.MaxByMonth != "30 000 Kč (01)" {
		t.Errorf("income MaxByMonth = %q", s.Income.MaxByMonth)
	}
	if s.Income.Total != "30 000 Kč" {
		t.Errorf("income Total = %q", s.Income.Total)
	}
}

func TestNewSummaryEmpty(t *testing.T) {
	s := NewSummary(nil)
	for _, got := range []string{
		s.Expenditure.MaxByDay,
		s.Expenditure.MaxByCategory,
		s.Expenditure.MonthlyAvg,
		s.Income.MaxByMonth,
		s.Income.MonthlyAvg,
	} {
		if got != NoData {
			t.Errorf("empty statistic = %q, want %q", got, NoData)
		}
	}
	// Totals over zero records are a rendered zero, always displayable.
	if s.Expenditure.Total != "0 Kč" || s.Income.Total != "0 Kč" {
		t.Errorf("empty totals = %q / %q", s.Expenditure.Total, s.Income.Total)
	}
}
