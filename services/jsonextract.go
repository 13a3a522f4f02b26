package services

import (
	"encoding/json"
	"fmt"
)

// ExtractFirstJSONObject locates the first balanced {...} span in free-form
// model output and returns it verbatim. Models are instructed to answer in
// raw JSON but routinely wrap it in prose or markdown fencing, so the whole
// text cannot be assumed to parse. Braces inside string literals are
// ignored; the first balanced span wins even if later spans exist.
func ExtractFirstJSONObject(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("no JSON object found in model response")
}

// UnmarshalFirstJSONObject extracts and decodes into v in one step.
func UnmarshalFirstJSONObject(text string, v interface{}) error {
	span, err := ExtractFirstJSONObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return nil
}
