package feedback

import (
	"strings"

	"github.com/user/codereview-adk/pkg/adk"
)

// BuildPrompt renders the review prompt for code and its findings. Each
// finding becomes one bullet holding its canonical JSON form.
func BuildPrompt(code string, findings []Finding) (string, error) {
	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		b, err := canonicalJSON(f)
		if err != nil {
			return "", err
		}
		lines = append(lines, string(b))
	}

	var sb strings.Builder
	err := adk.ReviewTemplate.Execute(&sb, struct {
		Code     string
		Findings []string
	}{Code: code, Findings: lines})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
