// Package agent drives the workflow from free-form requests: the model
// picks tools one step at a time until it gives a final answer.
package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// FinalAnswer is the action name that ends the loop.
const FinalAnswer = "Final Answer"

// Clarification is the answer used when a reply carries neither an action
// nor a final answer.
const Clarification = "I understand your request. Please proceed with the next step."

var (
	actionPattern      = regexp.MustCompile(`\{[^{}]*"action"[^{}]*\}`)
	finalAnswerPattern = regexp.MustCompile(`(?s)Final Answer[:\s]*(.+)`)
)

// Action is one decision by the model: a tool to call with its input, or
// the final answer.
type Action struct {
	Name  string `json:"action"`
	Input string `json:"action_input"`
}

// Final reports whether the action ends the loop.
func (a Action) Final() bool {
	return a.Name == FinalAnswer
}

// ParseAction reads a model reply. It looks for an embedded
// {"action": ..., "action_input": ...} object, then for a "Final Answer"
// marker, and otherwise answers with Clarification. It never fails.
func ParseAction(text string) Action {
	var decodeErr error
	if m := actionPattern.FindString(text); m != "" {
		a, err := decodeAction(m)
		if err == nil {
			return a
		}
		decodeErr = err
	}

	if m := finalAnswerPattern.FindStringSubmatch(text); m != nil {
		if answer := strings.TrimSpace(m[1]); answer != "" {
			return Action{Name: FinalAnswer, Input: answer}
		}
	}

	if decodeErr != nil {
		return Action{Name: FinalAnswer, Input: fmt.Sprintf("Parsing error occurred: %v. Please try again.", decodeErr)}
	}
	return Action{Name: FinalAnswer, Input: Clarification}
}

func decodeAction(s string) (Action, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return Action{}, err
	}
	name, _ := raw["action"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return Action{}, fmt.Errorf("action name is empty")
	}

	var input string
	switch v := raw["action_input"].(type) {
	case nil:
	case string:
		input = v
	default:
		// Inputs are meant to be plain strings; keep anything else as JSON.
		b, _ := json.Marshal(v)
		input = string(b)
	}
	return Action{Name: name, Input: input}, nil
}
