package engine

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultFile     = "unknown_file"
	DefaultSeverity = "info"
)

// Candidate source keys per normalized attribute, in priority order.
var (
	fileKeys      = []string{"path", "filename", "file", "filePath", "File"}
	lineKeys      = []string{"line", "line_number", "lineno", "StartLine"}
	columnKeys    = []string{"column", "col", "col_offset", "column_number"}
	codeKeys      = []string{"symbol", "rule_id", "code", "message-id", "test_id", "RuleID"}
	severityKeys  = []string{"type", "severity", "issue_severity"}
	typeKeys      = []string{"type", "category"}
	messageKeys   = []string{"message", "text", "issue_text", "Description"}
	timestampKeys = []string{"timestamp"}
)

// Profile carries the tool-specific parts of normalization. Tools without a
// profile go through the generic alias tables only.
type Profile struct {
	// Flatten unwraps a tool's JSON envelope into entries. It reports false
	// when the document does not have the expected shape.
	Flatten func(doc any) ([]map[string]any, bool)
	// Adjust runs on every normalized issue.
	Adjust func(is *Issue)
}

var profiles = map[string]Profile{
	"pylint": {Adjust: pylintSeverity},
	"flake8": {Flatten: flattenByFile, Adjust: flake8Severity},
	"bandit": {Flatten: flattenResults},
}

// RegisterProfile adds or replaces the profile used for a tool name.
func RegisterProfile(tool string, p Profile) {
	profiles[tool] = p
}

// Normalize parses one tool invocation's raw output into issues. It never
// fails: malformed JSON falls back to one issue per line, missing or
// mistyped fields get defaults.
func Normalize(tool, raw string) []Issue {
	return NormalizeAt(tool, raw, time.Now())
}

// NormalizeAt is Normalize with an explicit timestamp.
func NormalizeAt(tool, raw string, now time.Time) []Issue {
	output := strings.TrimSpace(raw)
	if output == "" {
		return nil
	}
	ts := now.UTC().Format(time.RFC3339Nano)
	profile := profiles[tool]

	entries, ok := parseJSONEntries(output, profile)
	if !ok {
		return parseLines(tool, output, ts, profile)
	}

	issues := make([]Issue, 0, len(entries))
	for _, entry := range entries {
		is := fromEntry(tool, entry, ts)
		if profile.Adjust != nil {
			profile.Adjust(&is)
		}
		issues = append(issues, is)
	}
	return issues
}

func parseJSONEntries(output string, profile Profile) ([]map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(output))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, false
	}
	// Trailing garbage after a valid document means this was not JSON output.
	if dec.More() {
		return nil, false
	}

	if profile.Flatten != nil {
		if entries, ok := profile.Flatten(doc); ok {
			return entries, true
		}
	}

	switch v := doc.(type) {
	case map[string]any:
		return []map[string]any{v}, true
	case []any:
		entries := make([]map[string]any, 0, len(v))
		for _, el := range v {
			entries = append(entries, asEntry(el))
		}
		return entries, true
	default:
		return nil, false
	}
}

// asEntry turns a non-object array element into an entry carrying it as the message.
func asEntry(el any) map[string]any {
	switch v := el.(type) {
	case map[string]any:
		return v
	case nil:
		return map[string]any{}
	case string:
		return map[string]any{"message": v}
	default:
		b, _ := json.Marshal(v)
		return map[string]any{"message": string(b)}
	}
}

var linePosition = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?:\s*(.*)$`)

func parseLines(tool, output, ts string, profile Profile) []Issue {
	var issues []Issue
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		is := Issue{
			File:      DefaultFile,
			Tool:      tool,
			Message:   line,
			Severity:  DefaultSeverity,
			Timestamp: ts,
		}
		if m := linePosition.FindStringSubmatch(line); m != nil && !strings.Contains(m[1], " ") {
			is.File = m[1]
			is.Line, _ = strconv.Atoi(m[2])
			if m[3] != "" {
				col, _ := strconv.Atoi(m[3])
				is.Column = &col
			}
			is.Severity = textSeverity(m[4])
		}
		if profile.Adjust != nil {
			profile.Adjust(&is)
		}
		issues = append(issues, is)
	}
	return issues
}

// textSeverity reads "error: ..." style prefixes used by mypy and friends.
func textSeverity(rest string) string {
	for _, level := range []string{"error", "warning", "note"} {
		if strings.HasPrefix(rest, level+":") {
			return level
		}
	}
	return DefaultSeverity
}

func fromEntry(tool string, entry map[string]any, ts string) Issue {
	is := Issue{
		File:      stringField(entry, fileKeys, DefaultFile),
		Tool:      tool,
		Message:   strings.TrimSpace(stringField(entry, messageKeys, "")),
		Type:      stringField(entry, typeKeys, ""),
		Severity:  strings.ToLower(stringField(entry, severityKeys, DefaultSeverity)),
		Code:      stringField(entry, codeKeys, ""),
		Timestamp: stringField(entry, timestampKeys, ts),
	}
	if line, ok := intField(entry, lineKeys); ok && line > 0 {
		is.Line = line
	}
	if col, ok := intField(entry, columnKeys); ok {
		is.Column = &col
	}
	return is
}

// stringField returns the first non-empty string-like value among keys.
func stringField(entry map[string]any, keys []string, def string) string {
	for _, k := range keys {
		switch v := entry[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return def
}

func intField(entry map[string]any, keys []string) (int, bool) {
	for _, k := range keys {
		switch v := entry[k].(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return int(n), true
			}
			if f, err := v.Float64(); err == nil {
				return int(f), true
			}
		case float64:
			return int(v), true
		case int:
			return v, true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// flattenByFile unwraps flake8's {"path": [entries...]} document.
func flattenByFile(doc any) ([]map[string]any, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	// flake8 prints {} for a clean run.
	entries := []map[string]any{}
	for path, v := range obj {
		list, ok := v.([]any)
		if !ok {
			return nil, false
		}
		for _, el := range list {
			entry := asEntry(el)
			if _, has := entry["filename"]; !has {
				entry["filename"] = path
			}
			entries = append(entries, entry)
		}
	}
	sortEntries(entries)
	return entries, true
}

// flattenResults unwraps {"results": [...]} documents (bandit, semgrep).
func flattenResults(doc any) ([]map[string]any, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	list, ok := obj["results"].([]any)
	if !ok {
		return nil, false
	}
	entries := make([]map[string]any, 0, len(list))
	for _, el := range list {
		entries = append(entries, asEntry(el))
	}
	return entries, true
}

// sortEntries orders flattened entries by file then line so map iteration
// order never leaks into stored row order.
func sortEntries(entries []map[string]any) {
	sort.SliceStable(entries, func(i, j int) bool {
		fi, fj := stringField(entries[i], fileKeys, ""), stringField(entries[j], fileKeys, "")
		if fi != fj {
			return fi < fj
		}
		li, _ := intField(entries[i], lineKeys)
		lj, _ := intField(entries[j], lineKeys)
		return li < lj
	})
}

// pylintSeverity keeps only conventions below error.
func pylintSeverity(is *Issue) {
	switch strings.ToLower(is.Type) {
	case "":
	case "convention":
		is.Severity = "warning"
	default:
		is.Severity = "error"
	}
}

func flake8Severity(is *Issue) {
	if is.Code == "" || is.Severity != DefaultSeverity {
		return
	}
	switch is.Code[0] {
	case 'E', 'F':
		is.Severity = "error"
	case 'W', 'C':
		is.Severity = "warning"
	}
}

// NormalizeDetailed is NormalizeAt that also reports whether the output was
// structured JSON (false means the per-line fallback was used).
func NormalizeDetailed(tool, raw string, now time.Time) ([]Issue, bool) {
	output := strings.TrimSpace(raw)
	if output == "" {
		return nil, true
	}
	_, structured := parseJSONEntries(output, profiles[tool])
	return NormalizeAt(tool, raw, now), structured
}
