package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/prakritea/decomposr/internal/apperr"
	"github.com/prakritea/decomposr/internal/models"
	"github.com/prakritea/decomposr/internal/notify"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// dueDateOffset is the default due date applied to every generated task.
const dueDateOffset = 7 * 24 * time.Hour

type Service struct {
	db       *gorm.DB
	llm      Generator
	notifier *notify.Dispatcher
}

func NewService(db *gorm.DB, llm Generator, notifier *notify.Dispatcher) *Service {
	return &Service{db: db, llm: llm, notifier: notifier}
}

// Generate runs the decomposition for a project: one model call, parse,
// then a single transaction applying the metadata and the epic/task rows.
// A parse failure commits nothing. The call is not retried; on throttling
// or provider failure the PM re-invokes.
func (s *Service) Generate(ctx context.Context, projectID uint) (*models.Project, error) {
	var project models.Project

	if err := s.db.Preload("Room").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Project not found")
		}
		return nil, err
	}

	prompt := BuildPrompt(project.Name, project.Description)

	raw, err := s.llm.Complete(ctx, prompt)

	if err != nil {
		return nil, err
	}

	plan, err := ParsePlan(raw)

	if err != nil {
		return nil, err
	}

	if err := s.apply(&project, plan); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		link := fmt.Sprintf("/rooms/%d/projects/%d", project.RoomID, project.ID)
		_, err := s.notifier.Dispatch(
			project.Room.CreatorID,
			&project.RoomID,
			models.NotificationPlanGenerated,
			"Plan generated",
			fmt.Sprintf("An AI plan was generated for project %q", project.Name),
			link,
		)
		if err != nil {
			log.Printf("Failed to dispatch plan_generated notification: %v", err)
		}
	}

	var result models.Project

	if err := s.db.
		Preload("Epics.Tasks").
		Preload("Tasks").
		First(&result, project.ID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) apply(project *models.Project, plan *Plan) error {
	snapshot, err := json.Marshal(plan)

	if err != nil {
		return err
	}

	dueDate := time.Now().Add(dueDateOffset)

	return s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"summary":              plan.Summary,
			"architecture":         plan.Architecture,
			"timeline":             plan.Timeline,
			"is_ai_plan_generated": true,
			"plan_snapshot":        datatypes.JSON(snapshot),
		}

		if err := tx.Model(project).Updates(updates).Error; err != nil {
			return err
		}

		for _, epicPlan := range plan.Epics {
			epic := models.Epic{
				ProjectID:   project.ID,
				Name:        epicPlan.Name,
				Description: epicPlan.Description,
			}

			if err := tx.Create(&epic).Error; err != nil {
				return err
			}

			tasks := make([]models.Task, 0, len(epicPlan.Tasks))

			for _, taskPlan := range epicPlan.Tasks {
				epicID := epic.ID
				due := dueDate

				tasks = append(tasks, models.Task{
					ProjectID:    project.ID,
					EpicID:       &epicID,
					Title:        taskPlan.Title,
					Description:  taskPlan.Description,
					Status:       models.StatusTodo,
					Priority:     normalizePriority(taskPlan.Priority),
					Category:     taskPlan.Category,
					Effort:       taskPlan.Effort,
					Dependencies: taskPlan.Dependencies,
					DueDate:      &due,
				})
			}

			if err := tx.Create(&tasks).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// normalizePriority lower-cases the model's priority value and falls back
// to medium for anything outside the known set.
func normalizePriority(p string) string {
	normalized := strings.ToLower(strings.TrimSpace(p))

	if models.ValidPriority(normalized) {
		return normalized
	}

	return models.PriorityMedium
}
