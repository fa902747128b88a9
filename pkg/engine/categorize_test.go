package engine

import "testing"

func TestCategorize(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Code does not follow PEP8 naming conventions.", CategoryReadability},
		{"Inefficient iteration; optimize the loop", CategoryPerformance},
		{"Possible SQL INJECTION", CategorySecurity},
		{"Violates the layered architecture", CategoryDesignPatterns},
		{"Possible bug if data contains non-numeric types.", CategoryGeneral},
		{"", CategoryGeneral},
	}
	for _, tc := range cases {
		if got := Categorize(tc.text); got != tc.want {
			t.Errorf("Categorize(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestCategorizePrecedence(t *testing.T) {
	// Matches every keyword set; readability comes first.
	text := "naming, memory, security and design"
	if got := Categorize(text); got != CategoryReadability {
		t.Errorf("Expected readability to win, got %q", got)
	}
	if got := Categorize("memory leak and auth bypass"); got != CategoryPerformance {
		t.Errorf("Expected performance over security, got %q", got)
	}
	if got := Categorize("auth check breaks the structure"); got != CategorySecurity {
		t.Errorf("Expected security over design, got %q", got)
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	text := "Add a docstring and encrypt the token"
	first := Categorize(text)
	for i := 0; i < 10; i++ {
		if got := Categorize(text); got != first {
			t.Fatalf("Expected stable result %q, got %q", first, got)
		}
	}
}
