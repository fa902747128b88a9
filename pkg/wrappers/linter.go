package wrappers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/codereview-adk/pkg/engine"
	"github.com/user/codereview-adk/pkg/logging"
)

// Status classifies a tool invocation.
type Status int

const (
	StatusOK Status = iota
	StatusUnavailable
	StatusFailed
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusFailed:
		return "failed"
	case StatusMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Outcome is what one linter run produced. Issues may be non-empty for
// StatusMalformed (line fallback); it is always empty for Unavailable and Failed.
type Outcome struct {
	Tool     string
	Status   Status
	Issues   []engine.Issue
	ExitCode int
	RawPath  string
	Err      error
}

// Linter is one configured external analysis tool.
type Linter struct {
	Name    string
	Command []string // executable followed by its arguments
	Format  string   // "json" or "text"; json output that fails to parse is reported as malformed
	Dir     string   // working directory, empty for the current one
	RawDir  string   // when set, raw stdout is written here for audit
	Timeout time.Duration
	Replay  bool // normalize the report saved in RawDir instead of running the tool
}

// Collect runs the linter and normalizes its stdout. It never returns an
// error: a missing executable or a crashed tool yields zero issues and a
// logged warning.
func (l Linter) Collect(ctx context.Context) Outcome {
	out := Outcome{Tool: l.Name}
	if l.Replay {
		return l.replay()
	}
	if len(l.Command) == 0 {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("no command configured for %s", l.Name)
		logging.Logger.Warnw("Tool has no command", "tool", l.Name)
		return out
	}

	if _, err := exec.LookPath(l.Command[0]); err != nil {
		out.Status = StatusUnavailable
		out.ExitCode = ExitNotFound
		out.Err = err
		logging.Logger.Warnw("Tool not installed or not found in PATH", "tool", l.Name, "executable", l.Command[0])
		return out
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	logging.Logger.Debugf("Running %s: %s", l.Name, strings.Join(l.Command, " "))
	res, err := Run(ctx, l.Command[0], l.Command[1:], l.Dir)
	out.ExitCode = res.ExitCode

	// Linters exit non-zero when they find problems; only a process that
	// could not run to completion is a failure.
	var exitErr *exec.ExitError
	if (err != nil && !errors.As(err, &exitErr)) || res.ExitCode == ExitTimeout {
		out.Status = StatusFailed
		out.Err = err
		if res.ExitCode == ExitNotFound {
			out.Status = StatusUnavailable
		}
		logging.Logger.Warnw("Tool run failed", "tool", l.Name, "exit_code", res.ExitCode, "error", err)
		return out
	}
	if res.ExitCode != 0 {
		logging.Logger.Debugf("%s exited with code %d", l.Name, res.ExitCode)
	}

	out.RawPath = l.saveRaw(res.Stdout)
	l.normalize(&out, res.Stdout)
	return out
}

func (l Linter) normalize(out *Outcome, stdout string) {
	issues, structured := engine.NormalizeDetailed(l.Name, stdout, time.Now())
	out.Issues = issues
	out.Status = StatusOK
	if l.Format == "json" && !structured {
		out.Status = StatusMalformed
		logging.Logger.Warnw("Tool output is not valid JSON, parsed line by line", "tool", l.Name, "issues", len(issues))
	}
}

// replay normalizes the raw report an earlier run left in RawDir.
func (l Linter) replay() Outcome {
	out := Outcome{Tool: l.Name, RawPath: l.rawPath()}
	if out.RawPath == "" {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("no report directory configured for %s", l.Name)
		return out
	}
	data, err := os.ReadFile(out.RawPath)
	if err != nil {
		out.Status = StatusUnavailable
		out.Err = err
		logging.Logger.Warnw("No saved report for tool", "tool", l.Name, "path", out.RawPath)
		return out
	}
	l.normalize(&out, string(data))
	return out
}

func (l Linter) rawPath() string {
	if l.RawDir == "" {
		return ""
	}
	ext := ".txt"
	if l.Format == "json" {
		ext = ".json"
	}
	return filepath.Join(l.RawDir, l.Name+ext)
}

func (l Linter) saveRaw(stdout string) string {
	path := l.rawPath()
	if path == "" {
		return ""
	}
	if err := os.MkdirAll(l.RawDir, 0755); err != nil {
		logging.Logger.Warnw("Could not create raw report directory", "dir", l.RawDir, "error", err)
		return ""
	}
	if err := os.WriteFile(path, []byte(stdout), 0644); err != nil {
		logging.Logger.Warnw("Could not save raw output", "tool", l.Name, "path", path, "error", err)
		return ""
	}
	return path
}
