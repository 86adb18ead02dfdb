package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUnitPrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		mrp      string
		discount string
		want     string
	}{
		{"ten percent off", "15", "10", "13.5"},
		{"fifteen percent off", "12", "15", "10.2"},
		{"no discount", "99.99", "0", "99.99"},
		{"full discount", "50", "100", "0"},
		{"fractional discount", "10", "12.5", "8.75"},
		{"zero mrp", "0", "40", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := UnitPrice(decimal.RequireFromString(tc.mrp), decimal.RequireFromString(tc.discount))
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("UnitPrice(%s, %s) = %s, want %s", tc.mrp, tc.discount, got, tc.want)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	t.Parallel()

	got := LineTotal(decimal.RequireFromString("15"), decimal.RequireFromString("10"), 2)
	if !got.Equal(decimal.RequireFromString("27")) {
		t.Fatalf("expected 27, got %s", got)
	}

	got = LineTotal(decimal.RequireFromString("12"), decimal.RequireFromString("15"), 2)
	if !got.Equal(decimal.RequireFromString("20.4")) {
		t.Fatalf("expected 20.4, got %s", got)
	}
}

func TestGrossLineTotal(t *testing.T) {
	t.Parallel()

	got := GrossLineTotal(decimal.RequireFromString("12.5"), 4)
	if !got.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected 50, got %s", got)
	}
}
