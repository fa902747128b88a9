// Package trade computes trading statistics over price series.
package trade

// MaxProfit returns the best gain from one buy followed by one later sell.
// It is 0 when prices never rise or there are fewer than two prices.
func MaxProfit(prices []float64) float64 {
	best := 0.0
	if len(prices) < 2 {
		return best
	}
	low := prices[0]
	for _, p := range prices[1:] {
		if p > low {
			if gain := p - low; gain > best {
				best = gain
			}
		} else {
			low = p
		}
	}
	return best
}

// BestTrade is MaxProfit that also reports the buy and sell indexes. Both
// are -1 when no profitable trade exists.
func BestTrade(prices []float64) (buy, sell int, profit float64) {
	buy, sell = -1, -1
	if len(prices) < 2 {
		return buy, sell, 0
	}
	low := 0
	for i := 1; i < len(prices); i++ {
		if prices[i] > prices[low] {
			if gain := prices[i] - prices[low]; gain > profit {
				buy, sell, profit = low, i, gain
			}
		} else {
			low = i
		}
	}
	return buy, sell, profit
}
