package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"1000", "1 000 Kč"},
		{"0", "0 Kč"},
		{"-2500", "-2 500 Kč"},
		{"999", "999 Kč"},
		{"1234567", "1 234 567 Kč"},
		{"100", "100 Kč"},
		{"-7", "-7 Kč"},
		{"8500.5", "8 501 Kč"}, // pre-rounded, half away from zero
		{"-1499.5", "-1 500 Kč"},
		{"12.3", "12 Kč"},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("bad test input %q: %v", tc.in, err)
		}
		if got := Currency(d); got != tc.out {
			t.Errorf("Currency(%s) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestLabel(t *testing.T) {
	got := Label(decimal.NewFromInt(12000), "Rent")
	if got != "12 000 Kč (Rent)" {
		t.Fatalf("Label = %q", got)
	}
}
