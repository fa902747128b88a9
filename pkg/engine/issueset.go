package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// IssueSet holds the normalized issues of one collection run, deduplicated
// on Issue.Key. The first occurrence of a key is kept.
type IssueSet struct {
	Issues []Issue
	seen   map[string]struct{}
	mu     sync.RWMutex
}

// NewIssueSet creates an empty set
func NewIssueSet() *IssueSet {
	return &IssueSet{
		Issues: make([]Issue, 0),
		seen:   make(map[string]struct{}),
	}
}

// Add ingests issues and returns the ones that were not already present.
func (s *IssueSet) Add(issues []Issue) []Issue {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []Issue
	for _, is := range issues {
		if is.Line < 0 {
			is.Line = 0
		}
		key := is.Key()
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		s.Issues = append(s.Issues, is)
		added = append(added, is)
	}
	return added
}

// Len returns the number of distinct issues.
func (s *IssueSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Issues)
}

// CountByTool returns the number of issues per tool.
func (s *IssueSet) CountByTool() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, is := range s.Issues {
		counts[is.Tool]++
	}
	return counts
}

// Report returns a text summary grouped by tool, worst bucket first.
func (s *IssueSet) Report() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byTool := make(map[string][]Issue)
	var tools []string
	for _, is := range s.Issues {
		if _, ok := byTool[is.Tool]; !ok {
			tools = append(tools, is.Tool)
		}
		byTool[is.Tool] = append(byTool[is.Tool], is)
	}
	sort.Strings(tools)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Lint issues (%d):\n", len(s.Issues)))
	sb.WriteString("--------------------------------------------------\n")
	for _, tool := range tools {
		issues := byTool[tool]
		sort.SliceStable(issues, func(i, j int) bool {
			return Rank(NormalizeSeverity(issues[i].Severity)) > Rank(NormalizeSeverity(issues[j].Severity))
		})
		sb.WriteString(fmt.Sprintf("%s (%d)\n", tool, len(issues)))
		for _, is := range issues {
			loc := fmt.Sprintf("%s:%d", is.File, is.Line)
			if is.Column != nil {
				loc += fmt.Sprintf(":%d", *is.Column)
			}
			code := ""
			if is.Code != "" {
				code = " [" + is.Code + "]"
			}
			sb.WriteString(fmt.Sprintf("  [%s] %s%s %s\n", NormalizeSeverity(is.Severity), loc, code, is.Message))
		}
	}
	return sb.String()
}
