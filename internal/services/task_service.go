// internal/services/task_service.go
package services

import (
	"context"
	"strings"
	"time"

	"taskmaster/internal/apperrors"
	"taskmaster/internal/models"
	"taskmaster/internal/repositories"
)

// TaskCreate carries the caller-settable fields of a new task. Everything
// else (status, archived, created_at, completed_at, owner) is assigned by
// the service.
type TaskCreate struct {
	Title       string
	Description string
	Tags        []string
	DueDate     *time.Time
}

// TaskUpdate is a merge-patch: only non-nil (or explicitly Set) fields are
// applied, everything else keeps its current value. Done is accepted for
// older clients but ignored; Status is authoritative and Done is derived
// from it.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Done        *bool
	Archived    *bool
	DueDate     *time.Time
	DueDateSet  bool // request supplied due_date (nil DueDate then clears it)
	Tags        []string
	TagsSet     bool
}

// TaskService owns task lifecycle rules: creation defaults, merge-patch
// semantics, completion side effects and search. Every operation is scoped
// to an explicit owner id; a task belonging to another owner is
// indistinguishable from a missing one.
type TaskService interface {
	Create(ctx context.Context, ownerID int64, in TaskCreate) (*models.Task, error)
	GetByID(ctx context.Context, ownerID, id int64) (*models.Task, error)
	List(ctx context.Context, ownerID int64, archived bool) ([]models.Task, error)
	Update(ctx context.Context, ownerID, id int64, patch TaskUpdate) (*models.Task, error)
	Archive(ctx context.Context, ownerID, id int64, archived bool) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id int64) (*models.Task, error)
	Search(ctx context.Context, ownerID int64, filter models.TaskFilter) ([]models.Task, error)
}

type taskService struct {
	repo repositories.TaskRepository
	now  func() time.Time
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo repositories.TaskRepository) TaskService {
	return &taskService{repo: repo, now: time.Now}
}

// tags persist as a comma-joined column, so a comma inside a tag would split
// it into two on the next load.
func validateTags(tags []string) error {
	for _, tag := range tags {
		if strings.Contains(tag, ",") {
			return apperrors.Validationf("tag %q must not contain a comma", tag)
		}
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, ownerID int64, in TaskCreate) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.Validationf("title is required")
	}
	if err := validateTags(in.Tags); err != nil {
		return nil, err
	}

	task := &models.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: in.Description,
		Tags:        models.NormalizeTags(in.Tags),
		Status:      models.StatusTodo,
		Archived:    false,
		CreatedAt:   s.now().UTC(),
		DueDate:     in.DueDate,
	}
	task.SyncDone()

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	return s.repo.FindByID(ctx, id, ownerID)
}

func (s *taskService) List(ctx context.Context, ownerID int64, archived bool) ([]models.Task, error) {
	return s.repo.FindAll(ctx, ownerID, archived)
}

func (s *taskService) Update(ctx context.Context, ownerID, id int64, patch TaskUpdate) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperrors.Validationf("title must not be empty")
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.TagsSet {
		if err := validateTags(patch.Tags); err != nil {
			return nil, err
		}
		task.Tags = models.NormalizeTags(patch.Tags)
	}
	if patch.DueDateSet {
		task.DueDate = patch.DueDate
	}
	if patch.Archived != nil {
		task.Archived = *patch.Archived
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return nil, apperrors.Validationf("unknown status %q", *patch.Status)
		}
		task.Status = *patch.Status
		if task.Status == models.StatusDone {
			now := s.now().UTC()
			task.CompletedAt = &now
		}
		// completed_at survives a transition away from done; it records that
		// the task was completed at some point.
	}
	task.SyncDone()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Archive toggles archived only, independent of status.
func (s *taskService) Archive(ctx context.Context, ownerID, id int64, archived bool) (*models.Task, error) {
	return s.Update(ctx, ownerID, id, TaskUpdate{Archived: &archived})
}

func (s *taskService) Delete(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Search(ctx context.Context, ownerID int64, filter models.TaskFilter) ([]models.Task, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, apperrors.Validationf("unknown status %q", *filter.Status)
	}
	if err := validateTags(filter.Tags); err != nil {
		return nil, err
	}
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Tags = models.NormalizeTags(filter.Tags)
	return s.repo.Search(ctx, ownerID, filter)
}
