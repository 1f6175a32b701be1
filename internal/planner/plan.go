// Package planner turns a project description into epics and tasks with a
// single call to an external language model.
package planner

// Plan is the decomposition schema the model is asked to produce.
type Plan struct {
	Summary      string     `json:"summary"`
	Architecture string     `json:"architecture"`
	Timeline     string     `json:"timeline"`
	Epics        []EpicPlan `json:"epics"`
}

type EpicPlan struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tasks       []TaskPlan `json:"tasks"`
}

type TaskPlan struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Priority     string `json:"priority"`
	Category     string `json:"category"`
	Effort       string `json:"effort"`
	Dependencies string `json:"dependencies"`
}
