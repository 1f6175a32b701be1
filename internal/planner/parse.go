package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prakritea/decomposr/internal/apperr"
)

// ParsePlan extracts a Plan from raw model output. Models routinely wrap
// JSON in markdown fences or add prose around it despite instructions, so
// the fences are stripped and the first balanced object is taken.
func ParsePlan(raw string) (*Plan, error) {
	cleaned := stripCodeFences(raw)
	jsonStr := extractJSONBlock(cleaned)

	if jsonStr == "" {
		return nil, apperr.InvalidAIResponse("AI response contained no JSON object")
	}

	var plan Plan

	if err := json.Unmarshal([]byte(jsonStr), &plan); err != nil {
		return nil, apperr.InvalidAIResponse(fmt.Sprintf("AI response is not valid JSON: %v", err))
	}

	if err := validatePlan(&plan); err != nil {
		return nil, err
	}

	return &plan, nil
}

func validatePlan(plan *Plan) error {
	if len(plan.Epics) < minEpics {
		return apperr.InvalidAIResponse(fmt.Sprintf("AI plan has %d epics, need at least %d", len(plan.Epics), minEpics))
	}

	for _, epic := range plan.Epics {
		if strings.TrimSpace(epic.Name) == "" {
			return apperr.InvalidAIResponse("AI plan contains an epic without a name")
		}

		if len(epic.Tasks) < minTasksPerEpic {
			return apperr.InvalidAIResponse(fmt.Sprintf("epic %q has no tasks", epic.Name))
		}

		for _, task := range epic.Tasks {
			if strings.TrimSpace(task.Title) == "" {
				return apperr.InvalidAIResponse(fmt.Sprintf("epic %q contains a task without a title", epic.Name))
			}
		}
	}

	return nil
}

// stripCodeFences removes markdown code fences (```json ... ``` or ``` ... ```).
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	var result []string

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

// extractJSONBlock finds the first balanced { ... } block, ignoring braces
// inside string values.
func extractJSONBlock(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
