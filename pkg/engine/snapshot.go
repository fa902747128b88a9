package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const DefaultSnapshotPath = ".codereview-snapshot.json"

type snapshotFile struct {
	CreatedAt string  `json:"created_at"`
	Issues    []Issue `json:"issues"`
}

// SnapshotDiff is the result of comparing a run against a baseline.
type SnapshotDiff struct {
	New       []Issue
	Fixed     []Issue
	Unchanged []Issue
}

// SaveSnapshot writes the current issues to path as JSON.
func (s *IssueSet) SaveSnapshot(path string) error {
	s.mu.RLock()
	snap := snapshotFile{
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Issues:    append([]Issue(nil), s.Issues...),
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSnapshot adds the issues stored at path to the set.
func (s *IssueSet) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	s.Add(snap.Issues)
	return nil
}

// CompareSnapshot classifies issues as new (only in s), fixed (only in
// baseline) or unchanged (in both). Timestamps are ignored.
func (s *IssueSet) CompareSnapshot(baseline *IssueSet) SnapshotDiff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	baseline.mu.RLock()
	defer baseline.mu.RUnlock()

	var diff SnapshotDiff
	for _, is := range s.Issues {
		if _, ok := baseline.seen[is.Key()]; ok {
			diff.Unchanged = append(diff.Unchanged, is)
		} else {
			diff.New = append(diff.New, is)
		}
	}
	for _, is := range baseline.Issues {
		if _, ok := s.seen[is.Key()]; !ok {
			diff.Fixed = append(diff.Fixed, is)
		}
	}
	return diff
}
