package engine

import "fmt"

// Issue represents one normalized finding reported by a lint tool
type Issue struct {
	File      string `json:"file"`
	Tool      string `json:"tool"`
	Message   string `json:"message"`
	Type      string `json:"type,omitempty"` // raw tool category, e.g. pylint "convention"
	Severity  string `json:"severity"`
	Line      int    `json:"line"`
	Column    *int   `json:"column,omitempty"`
	Code      string `json:"code,omitempty"` // rule id / symbol
	Timestamp string `json:"timestamp"`
}

// Key identifies an issue for deduplication: (file, tool, line, column, code, message).
func (i Issue) Key() string {
	col := "-"
	if i.Column != nil {
		col = fmt.Sprint(*i.Column)
	}
	return fmt.Sprintf("%s\x00%s\x00%d\x00%s\x00%s\x00%s", i.File, i.Tool, i.Line, col, i.Code, i.Message)
}

// Finding renders the issue as the loose record handed to the feedback generator.
func (i Issue) Finding() map[string]any {
	f := map[string]any{
		"file":     i.File,
		"tool":     i.Tool,
		"line":     i.Line,
		"severity": i.Severity,
		"message":  i.Message,
	}
	if i.Code != "" {
		f["code"] = i.Code
	}
	if i.Column != nil {
		f["column"] = *i.Column
	}
	return f
}
