package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/codereview-adk/pkg/logging"
	"github.com/user/codereview-adk/pkg/store"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Normalize severities and remove duplicate issues in the database",
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

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Starting preprocessing...")

		updated, err := st.NormalizeSeverities(ctx)
		logStep(ctx, st, "normalize_severity", err)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Severity normalized for %d issues.\n", updated)

		removed, err := st.Deduplicate(ctx)
		logStep(ctx, st, "deduplicate", err)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d duplicate issues.\n", removed)

		fmt.Fprintln(out, "Preprocessing completed.")
		return nil
	},
}

// logStep records a step in preprocessing_log. A failed write is only a warning.
func logStep(ctx context.Context, st *store.Store, step string, stepErr error) {
	status := "ok"
	if stepErr != nil {
		status = "error"
	}
	if err := st.LogStep(ctx, step, status); err != nil {
		logging.Logger.Warnw("Could not record preprocessing step", "step", step, "error", err)
	}
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
}
