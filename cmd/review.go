package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/codereview-adk/pkg/adk"
	"github.com/user/codereview-adk/pkg/config"
	"github.com/user/codereview-adk/pkg/feedback"
	"github.com/user/codereview-adk/pkg/store"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <file>",
	Short: "Ask the configured model to review a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		code, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading %s: %w", args[0], err)
		}

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		findingsPath, _ := cmd.Flags().GetString("findings")
		fromDB, _ := cmd.Flags().GetBool("from-db")
		saveAs, _ := cmd.Flags().GetString("save-as")

		var findings []feedback.Finding
		if findingsPath != "" {
			if findings, err = readFindings(findingsPath); err != nil {
				return err
			}
		}
		if fromDB {
			issues, err := st.ListIssues(ctx, store.IssueFilter{File: args[0]})
			if err != nil {
				return fmt.Errorf("error reading stored issues: %w", err)
			}
			for _, is := range issues {
				findings = append(findings, is.Finding())
			}
		}

		gen, closeProvider, err := newGenerator(ctx, cfg, st)
		if err != nil {
			return err
		}
		defer closeProvider()

		res, err := gen.Generate(ctx, string(code), findings)
		if err != nil {
			return err
		}
		if res.Cached {
			fmt.Fprintf(cmd.ErrOrStderr(), "Using cached feedback (%s)\n", res.Key)
		}
		if saveAs != "" {
			path, err := feedback.SaveResult(cfg.ResultsDir, saveAs, gen.Provider.Model(), res.Review)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Feedback saved to %s\n", path)
		}
		return printJSON(cmd, res.Review)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Merge rule-based issues with AI suggestions, grouped by category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		code, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading %s: %w", args[0], err)
		}

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		issues, _ := cmd.Flags().GetStringArray("issue")
		fromDB, _ := cmd.Flags().GetBool("from-db")
		if fromDB {
			stored, err := st.ListIssues(ctx, store.IssueFilter{File: args[0]})
			if err != nil {
				return fmt.Errorf("error reading stored issues: %w", err)
			}
			for _, is := range stored {
				issues = append(issues, fmt.Sprintf("%s (%s line %d)", is.Message, is.Tool, is.Line))
			}
		}

		gen, closeProvider, err := newGenerator(ctx, cfg, st)
		if err != nil {
			return err
		}
		defer closeProvider()

		analyzer := &feedback.Analyzer{Generator: gen}
		result, err := analyzer.Analyze(ctx, string(code), issues)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

// newGenerator builds the model provider and a generator that caches in st.
func newGenerator(ctx context.Context, cfg *config.Config, st *store.Store) (*feedback.Generator, func(), error) {
	provider, err := adk.NewProvider(ctx, cfg.SelectedProvider, cfg.GetAPIKey(cfg.SelectedProvider), cfg.SelectedModel)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing provider: %w", err)
	}
	closeFn := func() {}
	if c, ok := provider.(interface{ Close() }); ok {
		closeFn = c.Close
	}

	gen := feedback.NewGenerator(provider, st, feedback.NewAuditLog(cfg.AuditLog))
	gen.Temperature = cfg.Temperature
	return gen, closeFn, nil
}

// readFindings loads a JSON array of finding objects. Plain strings become
// {"message": text}.
func readFindings(path string) ([]feedback.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading findings: %w", err)
	}
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("findings file must be a JSON array: %w", err)
	}
	findings := make([]feedback.Finding, 0, len(raw))
	for _, el := range raw {
		switch v := el.(type) {
		case map[string]any:
			findings = append(findings, v)
		case string:
			findings = append(findings, feedback.Finding{"message": v})
		default:
			return nil, fmt.Errorf("unsupported finding %v in %s", el, path)
		}
	}
	return findings, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func init() {
	feedbackCmd.Flags().String("findings", "", "JSON file with tool findings to include in the prompt")
	feedbackCmd.Flags().Bool("from-db", false, "Include the stored lint issues for this file")
	feedbackCmd.Flags().String("save-as", "", "Also save the review under this id in the results directory")

	analyzeCmd.Flags().StringArrayP("issue", "i", nil, "Rule-based issue text (repeatable)")
	analyzeCmd.Flags().Bool("from-db", false, "Add the stored lint issues for this file as rule-based issues")

	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(analyzeCmd)
}
