package wrappers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/user/codereview-adk/pkg/engine"
)

type memoryStore struct {
	rows []engine.Issue
	err  error
}

func (m *memoryStore) InsertIssues(ctx context.Context, issues []engine.Issue) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.rows = append(m.rows, issues...)
	return len(issues), nil
}

func TestCollectAll(t *testing.T) {
	store := &memoryStore{}
	var out bytes.Buffer
	c := &Collector{
		Linters: []Linter{
			{Name: "pylint", Command: []string{"sh", "-c", `echo '[{"path":"a.py","message":"m1","line":1},{"path":"a.py","message":"m1","line":1}]'`}, Format: "json"},
			{Name: "missing", Command: []string{"nonexistentcommand12345"}},
			{Name: "mypy", Command: []string{"sh", "-c", "echo 'b.py:2: error: boom'"}, Format: "text"},
		},
		Store: store,
		Out:   &out,
	}

	summary, err := c.CollectAll(context.Background())
	if err != nil {
		t.Fatalf("CollectAll failed: %v", err)
	}

	// Rows are appended as reported; duplicates are removed by a later pass.
	if summary.Total != 3 || len(store.rows) != 3 {
		t.Errorf("Expected 3 stored issues, got total %d rows %d", summary.Total, len(store.rows))
	}
	if c.Set.Len() != 2 {
		t.Errorf("Expected 2 distinct issues in run view, got %d", c.Set.Len())
	}
	if len(summary.Outcomes) != 3 || summary.Outcomes[1].Status != StatusUnavailable {
		t.Errorf("Expected missing tool to be unavailable, got %+v", summary.Outcomes)
	}
	if !strings.Contains(out.String(), "3 total issues recorded") {
		t.Errorf("Expected final count in output, got:\n%s", out.String())
	}
}

func TestCollectAll_StoreError(t *testing.T) {
	c := &Collector{
		Linters: []Linter{{Name: "echo", Command: []string{"sh", "-c", "echo problem"}}},
		Store:   &memoryStore{err: errors.New("disk full")},
	}

	if _, err := c.CollectAll(context.Background()); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Expected store error to propagate, got %v", err)
	}
}

func TestCollectAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Collector{Linters: []Linter{{Name: "echo", Command: []string{"sh", "-c", "echo x"}}}, Store: &memoryStore{}}

	if _, err := c.CollectAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
