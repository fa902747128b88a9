package adk

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/system_prompt.md
var systemPrompt string

//go:embed prompts/review.tmpl
var reviewPrompt string

// ReviewTemplate renders the user prompt. It expects a value with a Code
// string and a Findings slice of pre-rendered lines.
var ReviewTemplate = template.Must(template.New("review").Parse(reviewPrompt))

// GetSystemPrompt returns the default system prompt for the reviewer
func GetSystemPrompt() string {
	return systemPrompt
}
