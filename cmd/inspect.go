package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/user/codereview-adk/pkg/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the database tables and sample issue rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if _, err := os.Stat(cfg.Database); os.IsNotExist(err) {
			fmt.Fprintf(out, "Database file '%s' not found\n", cfg.Database)
			return nil
		}

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		tables, err := st.Tables(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Tables in the database: %s\n", strings.Join(tables, ", "))

		sum, err := st.Summary(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d issues, %d cached reviews\n", sum.Total, sum.Cached)
		for tool, n := range sum.ByTool {
			fmt.Fprintf(out, "  %-10s %d\n", tool, n)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		tool, _ := cmd.Flags().GetString("tool")
		issues, err := st.ListIssues(ctx, store.IssueFilter{Tool: tool, Limit: limit})
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Fprintln(out, "\nNo issues recorded yet.")
			return nil
		}

		fmt.Fprintln(out, "\nSample data from 'lint_issues':")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOOL\tFILE\tLINE\tCODE\tSEVERITY\tMESSAGE")
		for _, is := range issues {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n", is.ID, is.Tool, is.File, is.Line, is.Code, is.Severity, truncate(is.Message, 60))
		}
		return w.Flush()
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	inspectCmd.Flags().Int("limit", 9, "Number of sample rows")
	inspectCmd.Flags().String("tool", "", "Only show issues from this tool")
	rootCmd.AddCommand(inspectCmd)
}
