package planner

import "fmt"

// minEpics and minTasksPerEpic are the floor the prompt demands and the
// parser enforces. A response below the floor is rejected as invalid.
const (
	minEpics        = 3
	minTasksPerEpic = 1
)

const promptTemplate = `You are a senior technical program manager. Decompose the following software project into a delivery plan.

Project name: %s
Project description: %s

Respond with ONLY a JSON object, no prose before or after, matching exactly this schema:
{
  "summary": "one-paragraph summary of the project",
  "architecture": "short description of a sensible high-level architecture",
  "timeline": "rough delivery timeline",
  "epics": [
    {
      "name": "epic name",
      "description": "what this epic covers",
      "tasks": [
        {
          "title": "task title",
          "description": "what to do",
          "priority": "low | medium | high | urgent",
          "category": "e.g. backend, frontend, infra, design, qa",
          "effort": "rough effort estimate, e.g. 2d",
          "dependencies": "free-text note on ordering, or empty string"
        }
      ]
    }
  ]
}

Requirements:
- At least %d epics, each with at least %d task.
- Every task must have a title and a priority from the listed values.
- Do not wrap the JSON in markdown code fences.`

func BuildPrompt(name, description string) string {
	return fmt.Sprintf(promptTemplate, name, description, minEpics, minTasksPerEpic)
}
