package feedback

import (
	"context"
	"fmt"

	"github.com/user/codereview-adk/pkg/engine"
	"github.com/user/codereview-adk/pkg/logging"
)

const (
	SourceRuleBased = "rule_based"
	SourceAI        = "ai"
)

// CategorizedSuggestion is one merged rule-based or AI suggestion.
type CategorizedSuggestion struct {
	Source   string `json:"source"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Fix      string `json:"fix,omitempty"`
}

// Analysis groups every suggestion by category.
type Analysis struct {
	Summary            string                             `json:"summary"`
	GroupedSuggestions map[string][]CategorizedSuggestion `json:"grouped_suggestions"`
}

// Analyzer merges plain-text rule-based issues with the model's review.
type Analyzer struct {
	Generator *Generator
}

// Analyze asks the generator for a review of code with issues as findings,
// then categorizes the issues and the review's suggestions.
func (a *Analyzer) Analyze(ctx context.Context, code string, issues []string) (*Analysis, error) {
	logging.Logger.Info("Running AI analyzer...")

	findings := make([]Finding, 0, len(issues))
	for _, issue := range issues {
		findings = append(findings, Finding{"text": issue, "severity": engine.SeverityMedium})
	}

	res, err := a.Generator.Generate(ctx, code, findings)
	if err != nil {
		return nil, err
	}

	var all []CategorizedSuggestion
	for _, issue := range issues {
		all = append(all, CategorizedSuggestion{
			Source:   SourceRuleBased,
			Text:     issue,
			Category: engine.Categorize(issue),
			Severity: engine.SeverityMedium,
		})
	}

	review := res.Review
	if review.Suggestions != nil {
		for _, s := range review.Suggestions {
			sev := s.Severity
			if sev == "" {
				sev = engine.SeverityLow
			}
			all = append(all, CategorizedSuggestion{
				Source:   SourceAI,
				Text:     s.Explanation,
				Category: engine.Categorize(s.Explanation),
				Severity: sev,
				Fix:      s.Fix,
			})
		}
	} else {
		all = append(all, CategorizedSuggestion{
			Source:   SourceAI,
			Text:     review.Feedback,
			Category: engine.Categorize(review.Feedback),
			Severity: engine.SeverityLow,
		})
	}

	grouped := make(map[string][]CategorizedSuggestion)
	for _, s := range all {
		grouped[s.Category] = append(grouped[s.Category], s)
	}

	logging.Logger.Info("AI analysis complete.")
	return &Analysis{
		Summary:            fmt.Sprintf("Analyzed %d rule-based issues + AI feedback.", len(issues)),
		GroupedSuggestions: grouped,
	}, nil
}
