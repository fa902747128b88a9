package wrappers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCollect_MissingExecutable(t *testing.T) {
	l := Linter{Name: "ghostlint", Command: []string{"nonexistentcommand12345", "--json"}, Format: "json"}

	out := l.Collect(context.Background())

	if out.Status != StatusUnavailable {
		t.Errorf("Expected unavailable, got %s", out.Status)
	}
	if len(out.Issues) != 0 {
		t.Errorf("Expected no issues, got %d", len(out.Issues))
	}
}

func TestCollect_NoCommand(t *testing.T) {
	out := Linter{Name: "empty"}.Collect(context.Background())
	if out.Status != StatusFailed || out.Err == nil {
		t.Errorf("Expected failed outcome with error, got %+v", out)
	}
}

func TestCollect_NonZeroExitStillParsed(t *testing.T) {
	script := `echo '[{"path":"a.py","message":"bad style","type":"convention","line":4,"symbol":"C0103"}]'; exit 16`
	raw := t.TempDir()
	l := Linter{Name: "pylint", Command: []string{"sh", "-c", script}, Format: "json", RawDir: raw}

	out := l.Collect(context.Background())

	if out.Status != StatusOK {
		t.Fatalf("Expected ok, got %s (%v)", out.Status, out.Err)
	}
	if out.ExitCode != 16 {
		t.Errorf("Expected exit code 16, got %d", out.ExitCode)
	}
	if len(out.Issues) != 1 || out.Issues[0].Severity != "warning" {
		t.Fatalf("Expected one pylint warning, got %+v", out.Issues)
	}

	saved, err := os.ReadFile(filepath.Join(raw, "pylint.json"))
	if err != nil {
		t.Fatalf("Expected raw output to be saved: %v", err)
	}
	if out.RawPath != filepath.Join(raw, "pylint.json") || len(saved) == 0 {
		t.Errorf("Unexpected raw path %q", out.RawPath)
	}
}

func TestCollect_Malformed(t *testing.T) {
	l := Linter{Name: "flake8", Command: []string{"sh", "-c", "echo 'Traceback (most recent call last):'; echo 'boom'"}, Format: "json"}

	out := l.Collect(context.Background())

	if out.Status != StatusMalformed {
		t.Errorf("Expected malformed, got %s", out.Status)
	}
	if len(out.Issues) != 2 {
		t.Errorf("Expected line fallback issues, got %d", len(out.Issues))
	}
}

func TestCollect_TextTool(t *testing.T) {
	l := Linter{Name: "mypy", Command: []string{"sh", "-c", "echo 'src/a.py:3: error: Name \"x\" is not defined'"}, Format: "text"}

	out := l.Collect(context.Background())

	if out.Status != StatusOK {
		t.Errorf("Expected ok for text tool, got %s", out.Status)
	}
	if len(out.Issues) != 1 || out.Issues[0].File != "src/a.py" || out.Issues[0].Line != 3 {
		t.Errorf("Unexpected issues: %+v", out.Issues)
	}
}

func TestCollect_Timeout(t *testing.T) {
	l := Linter{Name: "slow", Command: []string{"sleep", "2"}, Timeout: 100 * time.Millisecond}

	out := l.Collect(context.Background())

	if out.Status == StatusUnavailable {
		t.Skip("sleep command not found")
	}
	if out.Status != StatusFailed {
		t.Errorf("Expected failed on timeout, got %s", out.Status)
	}
	if len(out.Issues) != 0 {
		t.Errorf("Expected no issues, got %d", len(out.Issues))
	}
}

func TestCollect_Replay(t *testing.T) {
	raw := t.TempDir()
	report := `{"results":[{"filename":"src/db.py","line_number":14,"issue_severity":"HIGH","issue_text":"Possible SQL injection vector","test_id":"B608"}]}`
	if err := os.WriteFile(filepath.Join(raw, "bandit.json"), []byte(report), 0644); err != nil {
		t.Fatal(err)
	}

	// The command would fail if it ran.
	l := Linter{Name: "bandit", Command: []string{"nonexistentcommand12345"}, Format: "json", RawDir: raw, Replay: true}
	out := l.Collect(context.Background())

	if out.Status != StatusOK {
		t.Fatalf("Expected ok, got %s (%v)", out.Status, out.Err)
	}
	if len(out.Issues) != 1 || out.Issues[0].Code != "B608" {
		t.Errorf("Expected saved bandit issue, got %+v", out.Issues)
	}

	missing := Linter{Name: "pylint", Format: "json", RawDir: raw, Replay: true}.Collect(context.Background())
	if missing.Status != StatusUnavailable {
		t.Errorf("Expected unavailable for missing report, got %s", missing.Status)
	}
}
