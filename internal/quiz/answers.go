package quiz

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EncodeAnswers serializes an AnswerMap into the stored text form used by
// Quiz.LastAnswers: a JSON object keyed by question id.
func EncodeAnswers(answers AnswerMap) (string, error) {
	encoded := make(map[string]string, len(answers))
	for id, text := range answers {
		encoded[strconv.Itoa(id)] = text
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return "", fmt.Errorf("encode answers: %w", err)
	}
	return string(data), nil
}

// DecodeAnswers parses the stored text form back into an AnswerMap. The
// empty string decodes to an empty map so a quiz without a stored attempt
// needs no special casing.
func DecodeAnswers(stored string) (AnswerMap, error) {
	if stored == "" {
		return AnswerMap{}, nil
	}
	var encoded map[string]string
	if err := json.Unmarshal([]byte(stored), &encoded); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	answers := make(AnswerMap, len(encoded))
	for key, text := range encoded {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("decode answers: bad question id %q", key)
		}
		answers[id] = text
	}
	return answers, nil
}
