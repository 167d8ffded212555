package domain

import (
	"encoding/json"
	"fmt"
)

// Exchange is one prior question/answer pair of a conversation.
// On the wire it is a two-element JSON array: ["question", "answer"].
type Exchange struct {
	Question string
	Answer   string
}

// MarshalJSON encodes the exchange as ["question", "answer"].
func (e Exchange) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal([2]string{e.Question, e.Answer})
	if err != nil {
		return nil, fmt.Errorf("marshal exchange: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes a two-element JSON array into the exchange.
func (e *Exchange) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("unmarshal exchange: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("chat history entry must be a [question, answer] pair, got %d elements", len(pair))
	}
	e.Question = pair[0]
	e.Answer = pair[1]
	return nil
}
