package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskmaster/internal/apperrors"
	"taskmaster/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id, ownerID int64) (*models.Task, error)
	FindAll(ctx context.Context, ownerID int64, archived bool) ([]models.Task, error)
	Search(ctx context.Context, ownerID int64, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id, ownerID int64) error

	ListDueForReminder(ctx context.Context, dueBefore time.Time, limit int) ([]models.Task, error)
	SetReminderFired(ctx context.Context, id int64) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, owner_id, title, description, tags, status, archived, created_at, due_date, completed_at, reminded_at`

func scanTask(row interface{ Scan(...interface{}) error }) (*models.Task, error) {
	t := &models.Task{}
	var tags string
	if err := row.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &tags,
		&t.Status, &t.Archived, &t.CreatedAt, &t.DueDate, &t.CompletedAt, &t.RemindedAt,
	); err != nil {
		return nil, err
	}
	t.Tags = models.SplitTags(tags)
	t.SyncDone()
	return t, nil
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (owner_id, title, description, tags, status, archived, created_at, due_date, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		task.OwnerID, task.Title, task.Description, models.JoinTags(task.Tags),
		task.Status, task.Archived, task.CreatedAt, task.DueDate, task.CompletedAt,
	).Scan(&task.ID, &task.CreatedAt)
}

// FindByID is scoped by owner: a task that exists but belongs to another
// owner is reported as not found.
func (r *taskRepository) FindByID(ctx context.Context, id, ownerID int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFoundf("task %d", id)
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, ownerID int64, archived bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE owner_id = $1 AND archived = $2
		ORDER BY created_at DESC, id DESC`
	return r.queryTasks(ctx, query, ownerID, archived)
}

// buildSearchQuery compiles a filter into one SQL statement: every present
// filter field contributes one AND-ed predicate on top of the owner scope.
// A task with NULL due_date matches neither due-date bound. Tag membership
// is exact and case-insensitive against the stored comma-delimited set, one
// predicate per requested tag.
func buildSearchQuery(ownerID int64, filter models.TaskFilter) (string, []interface{}) {
	conditions := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	argID := 2

	if filter.Archived != nil {
		conditions = append(conditions, fmt.Sprintf("archived = $%d", argID))
		args = append(args, *filter.Archived)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.DueDateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("due_date >= $%d", argID))
		args = append(args, *filter.DueDateFrom)
		argID++
	}
	if filter.DueDateTo != nil {
		conditions = append(conditions, fmt.Sprintf("due_date <= $%d", argID))
		args = append(args, *filter.DueDateTo)
		argID++
	}
	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argID, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}
	for _, tag := range models.NormalizeTags(filter.Tags) {
		conditions = append(conditions, fmt.Sprintf("LOWER($%d) = ANY(string_to_array(LOWER(tags), ','))", argID))
		args = append(args, tag)
		argID++
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY created_at DESC, id DESC`
	return query, args
}

func (r *taskRepository) Search(ctx context.Context, ownerID int64, filter models.TaskFilter) ([]models.Task, error) {
	query, args := buildSearchQuery(ownerID, filter)
	return r.queryTasks(ctx, query, args...)
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET
			title=$1, description=$2, tags=$3, status=$4, archived=$5,
			due_date=$6, completed_at=$7
		WHERE id=$8 AND owner_id=$9`
	res, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, models.JoinTags(task.Tags), task.Status, task.Archived,
		task.DueDate, task.CompletedAt, task.ID, task.OwnerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFoundf("task %d", task.ID)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFoundf("task %d", id)
	}
	return nil
}

// ListDueForReminder returns open tasks whose due date falls before the
// cutoff and that have not been reminded about yet.
func (r *taskRepository) ListDueForReminder(ctx context.Context, dueBefore time.Time, limit int) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE due_date IS NOT NULL
		  AND due_date <= $1
		  AND status <> 'done'
		  AND archived = FALSE
		  AND reminded_at IS NULL
		ORDER BY due_date ASC
		LIMIT $2`
	return r.queryTasks(ctx, query, dueBefore, limit)
}

func (r *taskRepository) SetReminderFired(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET reminded_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
