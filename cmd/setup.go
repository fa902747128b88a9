package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/codereview-adk/pkg/adk"
	"github.com/user/codereview-adk/pkg/config"
)

// wizard reads one answer per prompt from in.
type wizard struct {
	in  *bufio.Scanner
	out io.Writer
}

func (w wizard) ask(prompt string) string {
	fmt.Fprint(w.out, prompt)
	if !w.in.Scan() {
		return ""
	}
	return strings.TrimSpace(w.in.Text())
}

func pickProvider(choice string) string {
	choice = strings.ToLower(choice)
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(adk.Providers) {
		return adk.Providers[n-1]
	}
	for _, p := range adk.Providers {
		if p == choice {
			return p
		}
	}
	return ""
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := wizard{in: bufio.NewScanner(os.Stdin), out: cmd.OutOrStdout()}
		ctx := cmd.Context()

		cfg, err := config.LoadConfig(ConfigFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		fmt.Fprintln(w.out, "codereview-adk setup")
		fmt.Fprintln(w.out, "--------------------")

		fmt.Fprintln(w.out, "Step 1: Model provider")
		for i, p := range adk.Providers {
			fmt.Fprintf(w.out, "%d. %s\n", i+1, p)
		}
		provider := pickProvider(w.ask("Enter number or name > "))
		if provider == "" {
			return fmt.Errorf("invalid provider choice")
		}

		fmt.Fprintf(w.out, "\nStep 2: API key for %s\n", provider)
		apiKey := w.ask("> ")
		if apiKey == "" {
			return fmt.Errorf("API key cannot be empty")
		}

		fmt.Fprintln(w.out, "\nStep 3: Fetching available models...")
		p, err := adk.NewProvider(ctx, provider, apiKey, "")
		if err != nil {
			return fmt.Errorf("error initializing provider: %w", err)
		}
		if g, ok := p.(*adk.GeminiProvider); ok {
			defer g.Close()
		}

		model := ""
		models, err := p.ListModels(ctx)
		if err == nil && len(models) == 0 {
			err = fmt.Errorf("no models returned")
		}
		if err != nil {
			fmt.Fprintf(w.out, "Could not fetch models: %v\n", err)
			model = w.ask("Model name (empty for the provider default) > ")
		} else {
			for i, m := range models {
				fmt.Fprintf(w.out, "%d. %s\n", i+1, m)
			}
			idx, err := strconv.Atoi(w.ask("Select model (number) > "))
			if err != nil || idx < 1 || idx > len(models) {
				fmt.Fprintln(w.out, "Invalid selection, using the first model.")
				idx = 1
			}
			model = models[idx-1]
		}

		fmt.Fprintf(w.out, "\nStep 4: Review database [%s]\n", cfg.Database)
		if db := w.ask("> "); db != "" {
			cfg.Database = db
		}

		fmt.Fprintln(w.out, "\nStep 5: Checking linters")
		for _, t := range cfg.Tools {
			status := "missing"
			if len(t.Command) > 0 {
				if _, err := exec.LookPath(t.Command[0]); err == nil {
					status = "ok"
				}
			}
			fmt.Fprintf(w.out, "  %-8s %s\n", t.Name, status)
		}

		cfg.SelectedProvider = provider
		cfg.SelectedModel = model
		cfg.SetAPIKey(provider, apiKey)
		if err := config.SaveConfig(cfg); err != nil {
			return fmt.Errorf("error saving config: %w", err)
		}

		fmt.Fprintln(w.out, "--------------------")
		fmt.Fprintf(w.out, "Saved to %s\n", cfg.Path())
		fmt.Fprintf(w.out, "Provider: %s\nModel:    %s\n", provider, model)
		fmt.Fprintln(w.out, "Next: 'codereview-adk collect' then 'codereview-adk feedback <file>'")
		return nil
	},
}

func init() {
	configCmd.AddCommand(setupCmd)
}
