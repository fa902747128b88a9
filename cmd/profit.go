package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/user/codereview-adk/pkg/trade"
)

var profitCmd = &cobra.Command{
	Use:   "profit <price>...",
	Short: "Best single buy-then-sell profit over a price history",
	RunE: func(cmd *cobra.Command, args []string) error {
		prices := make([]float64, 0, len(args))
		for _, a := range args {
			p, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", a, err)
			}
			prices = append(prices, p)
		}

		out := cmd.OutOrStdout()
		if days, _ := cmd.Flags().GetBool("days"); !days {
			fmt.Fprintf(out, "%.4f\n", trade.MaxProfit(prices))
			return nil
		}

		buy, sell, profit := trade.BestTrade(prices)
		if buy < 0 {
			fmt.Fprintln(out, "No profitable trade.")
			return nil
		}
		fmt.Fprintf(out, "Buy at %g (index %d), sell at %g (index %d): profit %.4f\n",
			prices[buy], buy, prices[sell], sell, profit)
		return nil
	},
}

func init() {
	profitCmd.Flags().Bool("days", false, "Also report the 0-based buy and sell indices")
	rootCmd.AddCommand(profitCmd)
}
