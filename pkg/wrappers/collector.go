package wrappers

import (
	"context"
	"fmt"
	"io"

	"github.com/user/codereview-adk/pkg/engine"
	"github.com/user/codereview-adk/pkg/logging"
)

// IssueWriter persists normalized issues.
type IssueWriter interface {
	InsertIssues(ctx context.Context, issues []engine.Issue) (int, error)
}

// Collector runs every configured linter in order and persists what each
// one reports. Tools never run concurrently.
type Collector struct {
	Linters []Linter
	Store   IssueWriter
	Set     *engine.IssueSet // in-memory view of the run, used for reports and snapshots
	Out     io.Writer
}

// CollectSummary is the result of a full collection run.
type CollectSummary struct {
	Total    int
	Outcomes []Outcome
}

// CollectAll invokes each linter, normalizes its output and appends the rows
// to the store. A tool that is missing or fails contributes zero issues; a
// store error aborts the run.
func (c *Collector) CollectAll(ctx context.Context) (CollectSummary, error) {
	var summary CollectSummary
	if c.Set == nil {
		c.Set = engine.NewIssueSet()
	}
	out := c.Out
	if out == nil {
		out = io.Discard
	}

	fmt.Fprintln(out, "Running static analysis tools...")
	for _, l := range c.Linters {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		fmt.Fprintf(out, "> Running %s...\n", l.Name)

		outcome := l.Collect(ctx)
		summary.Outcomes = append(summary.Outcomes, outcome)
		c.Set.Add(outcome.Issues)

		if len(outcome.Issues) == 0 {
			fmt.Fprintf(out, "  No results to save for %s (%s).\n", l.Name, outcome.Status)
			continue
		}

		n, err := c.Store.InsertIssues(ctx, outcome.Issues)
		if err != nil {
			return summary, fmt.Errorf("failed to save %s issues: %w", l.Name, err)
		}
		summary.Total += n
		logging.Logger.Infow("Saved issues", "tool", l.Name, "count", n, "status", outcome.Status.String())
		fmt.Fprintf(out, "  %d issues saved from %s.\n", n, l.Name)
	}

	fmt.Fprintf(out, "Done - %d total issues recorded.\n", summary.Total)
	return summary, nil
}
