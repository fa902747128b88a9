package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/user/codereview-adk/pkg/config"
	"github.com/user/codereview-adk/pkg/engine"
	"github.com/user/codereview-adk/pkg/logging"
	"github.com/user/codereview-adk/pkg/wrappers"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run the configured static-analysis tools and store their issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		baselinePath, _ := cmd.Flags().GetString("baseline")
		snapshotPath, _ := cmd.Flags().GetString("save-snapshot")
		showReport, _ := cmd.Flags().GetBool("report")
		replay, _ := cmd.Flags().GetBool("replay")

		c := &wrappers.Collector{
			Linters: buildLinters(cfg, replay),
			Store:   st,
			Set:     engine.NewIssueSet(),
			Out:     cmd.OutOrStdout(),
		}
		runID := uuid.NewString()
		logging.Logger.Infow("Starting collection", "run_id", runID, "tools", len(c.Linters), "db", cfg.Database)

		summary, err := c.CollectAll(ctx)
		if err != nil {
			return err
		}
		logging.Logger.Infow("Collection finished", "run_id", runID, "total", summary.Total)

		out := cmd.OutOrStdout()
		if showReport {
			fmt.Fprintln(out)
			fmt.Fprint(out, c.Set.Report())
		}

		if baselinePath != "" {
			baseline := engine.NewIssueSet()
			if err := baseline.LoadSnapshot(baselinePath); err != nil {
				return fmt.Errorf("error loading baseline: %w", err)
			}
			diff := c.Set.CompareSnapshot(baseline)
			fmt.Fprintf(out, "\nCompared with %s: %d new, %d fixed, %d unchanged\n",
				baselinePath, len(diff.New), len(diff.Fixed), len(diff.Unchanged))
			for _, is := range diff.New {
				fmt.Fprintf(out, "  + %s:%d [%s] %s\n", is.File, is.Line, is.Tool, is.Message)
			}
			for _, is := range diff.Fixed {
				fmt.Fprintf(out, "  - %s:%d [%s] %s\n", is.File, is.Line, is.Tool, is.Message)
			}
		}

		if snapshotPath != "" {
			if err := c.Set.SaveSnapshot(snapshotPath); err != nil {
				return fmt.Errorf("error saving snapshot: %w", err)
			}
			fmt.Fprintf(out, "Snapshot saved to %s\n", snapshotPath)
		}
		return nil
	},
}

// buildLinters turns the configured tool list into runnable linters.
func buildLinters(cfg *config.Config, replay bool) []wrappers.Linter {
	timeout := cfg.ToolTimeoutDuration()
	linters := make([]wrappers.Linter, 0, len(cfg.Tools))
	for _, t := range cfg.Tools {
		linters = append(linters, wrappers.Linter{
			Name:    t.Name,
			Command: t.Command,
			Format:  t.Format,
			RawDir:  cfg.ReportDir,
			Timeout: timeout,
			Replay:  replay,
		})
	}
	return linters
}

func init() {
	collectCmd.Flags().String("baseline", "", "Compare this run against a saved snapshot")
	collectCmd.Flags().String("save-snapshot", "", "Write this run's issues to a snapshot file (e.g. "+engine.DefaultSnapshotPath+")")
	collectCmd.Flags().Bool("report", false, "Print the deduplicated issues of this run")
	collectCmd.Flags().Bool("replay", false, "Load the raw reports saved by an earlier run instead of running the tools")
	rootCmd.AddCommand(collectCmd)
}
