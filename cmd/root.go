package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/codereview-adk/pkg/config"
	"github.com/user/codereview-adk/pkg/logging"
	"github.com/user/codereview-adk/pkg/store"
)

var rootCmd = &cobra.Command{
	Use:   "codereview-adk",
	Short: "Static analysis collection with AI-assisted code review",
	Long: `codereview-adk runs Python linters, normalizes their reports into a
local SQLite database and asks a language model for a prioritized review
of a source file, caching every answer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitLogger(DebugMode)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

var (
	DebugMode  bool
	ConfigFile string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default ~/.codereview-adk/config.yaml)")
}

// loadConfig resolves the runtime configuration: file, then .env, then environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("error opening database %s: %w", cfg.Database, err)
	}
	return st, nil
}
