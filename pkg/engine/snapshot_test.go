package engine

import (
	"path/filepath"
	"testing"
)

func TestSnapshotOperations(t *testing.T) {
	// 1. Setup baseline
	baseline := NewIssueSet()
	baseline.Add([]Issue{
		{File: "a.py", Tool: "pylint", Line: 1, Message: "Finding 1", Timestamp: "old"}, // Will be UNCHANGED
		{File: "a.py", Tool: "pylint", Line: 2, Message: "Finding 2"},                   // Will be FIXED
	})

	// 2. Save snapshot
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := baseline.SaveSnapshot(path); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	// 3. Current run
	current := NewIssueSet()
	current.Add([]Issue{
		{File: "a.py", Tool: "pylint", Line: 1, Message: "Finding 1", Timestamp: "new"},
		{File: "b.py", Tool: "flake8", Line: 3, Message: "Finding 3"}, // NEW
	})

	// 4. Load baseline from file
	loaded := NewIssueSet()
	if err := loaded.LoadSnapshot(path); err != nil {
		t.Fatalf("Failed to load snapshot: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("Expected 2 issues in loaded baseline, got %d", loaded.Len())
	}

	// 5. Compare
	diff := current.CompareSnapshot(loaded)

	if len(diff.Unchanged) != 1 || diff.Unchanged[0].Message != "Finding 1" {
		t.Errorf("Expected Finding 1 unchanged, got %+v", diff.Unchanged)
	}
	if len(diff.New) != 1 || diff.New[0].File != "b.py" {
		t.Errorf("Expected b.py new, got %+v", diff.New)
	}
	if len(diff.Fixed) != 1 || diff.Fixed[0].Line != 2 {
		t.Errorf("Expected line 2 fixed, got %+v", diff.Fixed)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	set := NewIssueSet()
	if err := set.LoadSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing snapshot")
	}
}
