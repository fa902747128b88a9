package engine

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeJSONArray(t *testing.T) {
	raw := `[
		{"path": "a.py", "message": "bad style", "type": "convention", "line": 4, "column": 1, "symbol": "C0103"},
		{"filename": "b.py", "message": "  unused import  ", "severity": "warning", "line": 2, "rule_id": "W0611"},
		{}
	]`

	issues := NormalizeAt("generic", raw, fixedNow)

	if len(issues) != 3 {
		t.Fatalf("Expected 3 issues, got %d", len(issues))
	}

	first := issues[0]
	if first.File != "a.py" || first.Line != 4 || first.Code != "C0103" || first.Severity != "convention" {
		t.Errorf("Unexpected first issue: %+v", first)
	}
	if first.Column == nil || *first.Column != 1 {
		t.Errorf("Expected column 1, got %v", first.Column)
	}

	second := issues[1]
	if second.File != "b.py" || second.Severity != "warning" || second.Code != "W0611" {
		t.Errorf("Unexpected second issue: %+v", second)
	}
	if second.Message != "unused import" {
		t.Errorf("Expected trimmed message, got %q", second.Message)
	}
	if second.Column != nil {
		t.Errorf("Expected no column, got %d", *second.Column)
	}

	// Every field falls back to its default.
	empty := issues[2]
	if empty.File != DefaultFile {
		t.Errorf("Expected default file %q, got %q", DefaultFile, empty.File)
	}
	if empty.Severity != DefaultSeverity {
		t.Errorf("Expected default severity %q, got %q", DefaultSeverity, empty.Severity)
	}
	if empty.Line != 0 || empty.Message != "" || empty.Code != "" {
		t.Errorf("Expected zero defaults, got %+v", empty)
	}
	if empty.Tool != "generic" {
		t.Errorf("Expected tool generic, got %q", empty.Tool)
	}
	if empty.Timestamp != "2025-03-01T12:00:00Z" {
		t.Errorf("Expected normalization timestamp, got %q", empty.Timestamp)
	}
}

func TestNormalizePylintConvention(t *testing.T) {
	raw := `[{"path":"a.py","message":"bad style","type":"convention","line":4,"column":1,"symbol":"C0103"}]`

	issues := NormalizeAt("pylint", raw, fixedNow)

	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}
	is := issues[0]
	if is.File != "a.py" {
		t.Errorf("Expected file a.py, got %q", is.File)
	}
	if is.Severity != "warning" {
		t.Errorf("Expected convention to map to warning, got %q", is.Severity)
	}
	if is.Type != "convention" {
		t.Errorf("Expected raw type convention, got %q", is.Type)
	}
	if is.Line != 4 || is.Code != "C0103" {
		t.Errorf("Expected line 4 code C0103, got line %d code %q", is.Line, is.Code)
	}
}

func TestNormalizePylintError(t *testing.T) {
	for _, typ := range []string{"error", "fatal", "refactor", "warning", "info"} {
		raw := `[{"path":"a.py","message":"m","type":"` + typ + `","line":1,"symbol":"X0001"}]`
		issues := NormalizeAt("pylint", raw, fixedNow)
		if len(issues) != 1 || issues[0].Severity != "error" {
			t.Errorf("Expected pylint %s to map to error, got %+v", typ, issues)
		}
	}
}

func TestNormalizePylintUntyped(t *testing.T) {
	issues := NormalizeAt("pylint", `[{"path":"a.py","message":"m","line":1}]`, fixedNow)
	if len(issues) != 1 || issues[0].Severity != DefaultSeverity {
		t.Errorf("Expected untyped entry to keep %q, got %+v", DefaultSeverity, issues)
	}
}

func TestNormalizeSingleObject(t *testing.T) {
	raw := `{"file": "c.py", "message": "only one", "line": "7"}`

	issues := NormalizeAt("generic", raw, fixedNow)

	if len(issues) != 1 {
		t.Fatalf("Expected single object to yield 1 issue, got %d", len(issues))
	}
	if issues[0].File != "c.py" || issues[0].Line != 7 {
		t.Errorf("Unexpected issue: %+v", issues[0])
	}
}

func TestNormalizePlainText(t *testing.T) {
	raw := "first problem\n\n   \nsecond problem\r\n"

	issues := NormalizeAt("generic", raw, fixedNow)

	if len(issues) != 2 {
		t.Fatalf("Expected 2 issues, got %d", len(issues))
	}
	if issues[0].Message != "first problem" || issues[1].Message != "second problem" {
		t.Errorf("Expected verbatim line messages, got %q and %q", issues[0].Message, issues[1].Message)
	}
	for _, is := range issues {
		if is.File != DefaultFile || is.Severity != DefaultSeverity {
			t.Errorf("Expected defaults for plain text issue, got %+v", is)
		}
	}
}

func TestNormalizeTextPositions(t *testing.T) {
	line := "src/app.py:12:5: error: Incompatible types in assignment  [assignment]"

	issues := NormalizeAt("mypy", line+"\nSuccess: no issues found in 1 source file", fixedNow)

	if len(issues) != 2 {
		t.Fatalf("Expected 2 issues, got %d", len(issues))
	}
	is := issues[0]
	if is.Message != line {
		t.Errorf("Expected message to be the whole line, got %q", is.Message)
	}
	if is.File != "src/app.py" || is.Line != 12 {
		t.Errorf("Expected src/app.py:12, got %s:%d", is.File, is.Line)
	}
	if is.Column == nil || *is.Column != 5 {
		t.Errorf("Expected column 5, got %v", is.Column)
	}
	if is.Severity != "error" {
		t.Errorf("Expected error severity, got %q", is.Severity)
	}
	if issues[1].File != DefaultFile {
		t.Errorf("Expected summary line to keep default file, got %q", issues[1].File)
	}
}

func TestNormalizeMalformedJSON(t *testing.T) {
	raw := `[{"path": "a.py", "message": "truncated"`

	issues := NormalizeAt("pylint", raw, fixedNow)

	if len(issues) != 1 {
		t.Fatalf("Expected line fallback to yield 1 issue, got %d", len(issues))
	}
	if issues[0].Message != raw {
		t.Errorf("Expected raw line as message, got %q", issues[0].Message)
	}
}

func TestNormalizeTypeMismatch(t *testing.T) {
	raw := `[{"path": 42, "line": "not a number", "column": true, "message": ["x"], "type": null}]`

	issues := NormalizeAt("generic", raw, fixedNow)

	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}
	is := issues[0]
	if is.File != "42" {
		t.Errorf("Expected numeric path to be stringified, got %q", is.File)
	}
	if is.Line != 0 || is.Column != nil || is.Message != "" || is.Severity != DefaultSeverity {
		t.Errorf("Expected defaults for mistyped fields, got %+v", is)
	}
}

func TestNormalizeNegativeLine(t *testing.T) {
	issues := NormalizeAt("generic", `[{"line": -3}]`, fixedNow)
	if issues[0].Line != 0 {
		t.Errorf("Expected negative line to clamp to 0, got %d", issues[0].Line)
	}
}

func TestNormalizeEmptyOutput(t *testing.T) {
	if issues := NormalizeAt("pylint", "  \n ", fixedNow); len(issues) != 0 {
		t.Errorf("Expected no issues, got %d", len(issues))
	}
	if issues := NormalizeAt("pylint", "[]", fixedNow); len(issues) != 0 {
		t.Errorf("Expected no issues for empty array, got %d", len(issues))
	}
}

func TestNormalizeFlake8(t *testing.T) {
	raw := `{
		"src/b.py": [{"code": "W291", "line_number": 3, "column_number": 10, "text": "trailing whitespace"}],
		"src/a.py": [
			{"code": "E501", "filename": "src/a.py", "line_number": 9, "column_number": 80, "text": "line too long"},
			{"code": "F401", "line_number": 1, "column_number": 1, "text": "'os' imported but unused"}
		]
	}`

	issues := NormalizeAt("flake8", raw, fixedNow)

	if len(issues) != 3 {
		t.Fatalf("Expected 3 issues, got %d", len(issues))
	}
	// Sorted by file then line.
	if issues[0].File != "src/a.py" || issues[0].Line != 1 || issues[0].Code != "F401" {
		t.Errorf("Unexpected first issue: %+v", issues[0])
	}
	if issues[0].Severity != "error" {
		t.Errorf("Expected F code to be error, got %q", issues[0].Severity)
	}
	if issues[2].File != "src/b.py" || issues[2].Severity != "warning" {
		t.Errorf("Expected injected filename and warning severity, got %+v", issues[2])
	}
	if issues[2].Column == nil || *issues[2].Column != 10 {
		t.Errorf("Expected column 10, got %v", issues[2].Column)
	}

	if clean := NormalizeAt("flake8", "{}", fixedNow); len(clean) != 0 {
		t.Errorf("Expected clean flake8 run to yield no issues, got %d", len(clean))
	}
}

func TestNormalizeBandit(t *testing.T) {
	raw := `{"errors": [], "results": [
		{"filename": "src/db.py", "line_number": 14, "col_offset": 4, "issue_severity": "HIGH",
		 "issue_text": "Possible SQL injection vector", "test_id": "B608"}
	]}`

	issues := NormalizeAt("bandit", raw, fixedNow)

	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}
	is := issues[0]
	if is.File != "src/db.py" || is.Line != 14 || is.Code != "B608" || is.Severity != "high" {
		t.Errorf("Unexpected bandit issue: %+v", is)
	}
	if is.Message != "Possible SQL injection vector" {
		t.Errorf("Unexpected message %q", is.Message)
	}
}

func TestNormalizeArrayOfStrings(t *testing.T) {
	issues := NormalizeAt("generic", `["one", "two"]`, fixedNow)
	if len(issues) != 2 || issues[1].Message != "two" {
		t.Errorf("Expected one issue per array element, got %+v", issues)
	}
}

func TestRegisterProfile(t *testing.T) {
	RegisterProfile("custom", Profile{Adjust: func(is *Issue) { is.Severity = "critical" }})
	defer delete(profiles, "custom")

	issues := NormalizeAt("custom", `[{"message": "x"}]`, fixedNow)
	if issues[0].Severity != "critical" {
		t.Errorf("Expected custom profile to apply, got %q", issues[0].Severity)
	}
}
