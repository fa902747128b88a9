package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultResultsDir holds per-snippet review files written by SaveResult.
const DefaultResultsDir = "data/feedback_results"

// ErrNoResult is returned by LoadResult when nothing was saved for an id.
var ErrNoResult = errors.New("no saved feedback")

// SavedResult is a review stored under a caller-chosen id.
type SavedResult struct {
	CodeID    string `json:"code_id"`
	ModelName string `json:"model_name"`
	Timestamp string `json:"timestamp"`
	Feedback  Review `json:"feedback"`
}

// SaveResult writes <dir>/<codeID>.json, replacing any earlier file.
func SaveResult(dir, codeID, model string, review Review) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results dir: %w", err)
	}
	rec := SavedResult{
		CodeID:    codeID,
		ModelName: model,
		Timestamp: time.Now().Format(time.RFC3339),
		Feedback:  review,
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, codeID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result: %w", err)
	}
	return path, nil
}

// LoadResult reads a result saved by SaveResult.
func LoadResult(dir, codeID string) (*SavedResult, error) {
	data, err := os.ReadFile(filepath.Join(dir, codeID+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for %s", ErrNoResult, codeID)
	}
	if err != nil {
		return nil, err
	}
	var rec SavedResult
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	return &rec, nil
}
