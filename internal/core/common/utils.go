package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON cleans and unmarshals a JSON object string into a type T.
// It handles common LLM quirks like surrounding markdown or extra text.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	jsonStr, err := clip(response, '{', '}')
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}
	return result, nil
}

// ParseJSONList is ParseJSON for a top-level JSON array. If the model wrapped
// the array in an object, the first array inside it is used instead.
func ParseJSONList[T any](response string) ([]T, error) {
	jsonStr, err := clip(response, '[', ']')
	if err != nil {
		return nil, err
	}

	var result []T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON list: %w\nData: %s", err, jsonStr)
	}
	return result, nil
}

func clip(s string, open, close byte) (string, error) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON found in response (missing '%c')", open)
	}
	return s[start : end+1], nil
}
