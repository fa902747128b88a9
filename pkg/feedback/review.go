package feedback

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Suggestion is one actionable item from the model.
type Suggestion struct {
	Explanation string `json:"explanation"`
	Fix         string `json:"fix"`
	Severity    string `json:"severity,omitempty"`
}

// Review is the model's structured reply. Suggestions stays nil when the
// reply carried no suggestions key at all.
type Review struct {
	Feedback    string       `json:"feedback"`
	Summary     string       `json:"summary,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseReply turns raw model text into a Review. It tries the whole text as
// a JSON object, then a fenced code block, then the outermost brace span.
// Anything else becomes a Review whose Feedback is the raw text.
func ParseReply(raw string) Review {
	text := strings.TrimSpace(raw)
	if r, ok := decodeReview(text); ok {
		return r
	}
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if r, ok := decodeReview(m[1]); ok {
			return r
		}
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if r, ok := decodeReview(text[start : end+1]); ok {
			return r
		}
	}
	return Review{Feedback: raw}
}

// UnmarshalJSON accepts scalars of any type for the text fields and a single
// suggestion in place of a list.
func (r *Review) UnmarshalJSON(b []byte) error {
	var aux struct {
		Feedback    json.RawMessage `json:"feedback"`
		Summary     json.RawMessage `json:"summary"`
		Suggestions json.RawMessage `json:"suggestions"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = Review{Feedback: looseText(aux.Feedback), Summary: looseText(aux.Summary)}
	if len(aux.Suggestions) == 0 || string(aux.Suggestions) == "null" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(aux.Suggestions, &items); err != nil {
		items = []json.RawMessage{aux.Suggestions}
	}
	r.Suggestions = make([]Suggestion, 0, len(items))
	for _, item := range items {
		var s Suggestion
		if err := json.Unmarshal(item, &s); err != nil {
			return err
		}
		r.Suggestions = append(r.Suggestions, s)
	}
	return nil
}

// UnmarshalJSON reads an object leniently. A bare string or number becomes
// the explanation.
func (s *Suggestion) UnmarshalJSON(b []byte) error {
	var aux struct {
		Explanation json.RawMessage `json:"explanation"`
		Fix         json.RawMessage `json:"fix"`
		Severity    json.RawMessage `json:"severity"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		*s = Suggestion{Explanation: looseText(b)}
		return nil
	}
	*s = Suggestion{
		Explanation: looseText(aux.Explanation),
		Fix:         looseText(aux.Fix),
		Severity:    looseText(aux.Severity),
	}
	return nil
}

// looseText renders a JSON value as text: strings unquoted, null empty and
// anything else as its compact JSON form.
func looseText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func decodeReview(s string) (Review, bool) {
	var r Review
	if !strings.HasPrefix(s, "{") {
		return r, false
	}
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return r, false
	}
	return r, true
}
