package engine

import "strings"

// Suggestion categories.
const (
	CategoryReadability    = "readability"
	CategoryPerformance    = "performance"
	CategorySecurity       = "security"
	CategoryDesignPatterns = "design_pattern_violations"
	CategoryGeneral        = "general"
)

type categoryRule struct {
	category string
	keywords []string
}

// Evaluated in order; the first category with a matching keyword wins.
var categoryRules = []categoryRule{
	{CategoryReadability, []string{"readability", "naming", "comment", "docstring", "format", "pep8"}},
	{CategoryPerformance, []string{"optimize", "performance", "efficiency", "speed", "memory"}},
	{CategorySecurity, []string{"security", "vulnerability", "injection", "auth", "encrypt"}},
	{CategoryDesignPatterns, []string{"pattern", "architecture", "design", "structure"}},
}

// Categorize assigns free text to one category by case-insensitive keyword match.
func Categorize(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, k := range rule.keywords {
			if strings.Contains(lower, k) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}
