package feedback

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Finding is one tool or rule-based finding passed to the model.
type Finding = map[string]any

// CacheKey hashes the code together with its findings. The JSON encoding is
// canonical (map keys sorted, no HTML escaping) so equal inputs always map
// to the same key.
func CacheKey(code string, findings []Finding) (string, error) {
	if findings == nil {
		findings = []Finding{}
	}
	b, err := canonicalJSON(map[string]any{
		"code":          code,
		"tool_findings": findings,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key input: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
