package trade

import (
	"math"
	"testing"
)

func TestMaxProfit(t *testing.T) {
	cases := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{"history", []float64{0.8092, 0.8304, 0.8182, 0.8650, 0.8852, 0.8939, 0.9170}, 0.1078},
		{"single price", []float64{10}, 0},
		{"empty", nil, 0},
		{"falling", []float64{5, 4, 3, 1}, 0},
		{"flat", []float64{2, 2, 2}, 0},
		{"dip then rise", []float64{7, 1, 5, 3, 6, 4}, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MaxProfit(tc.prices)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestBestTrade(t *testing.T) {
	buy, sell, profit := BestTrade([]float64{7, 1, 5, 3, 6, 4})
	if buy != 1 || sell != 4 || profit != 5 {
		t.Errorf("Expected buy 1 sell 4 profit 5, got %d %d %v", buy, sell, profit)
	}

	buy, sell, profit = BestTrade([]float64{3, 2, 1})
	if buy != -1 || sell != -1 || profit != 0 {
		t.Errorf("Expected no trade, got %d %d %v", buy, sell, profit)
	}
}
