package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"taskmaster/internal/apperrors"
	"taskmaster/internal/models"
)

// fakeTaskRepo is an in-memory TaskRepository with the same owner scoping
// the SQL implementation enforces.
type fakeTaskRepo struct {
	nextID     int64
	tasks      map[int64]models.Task
	lastFilter *models.TaskFilter
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{nextID: 1, tasks: make(map[int64]models.Task)}
}

func (r *fakeTaskRepo) Store(_ context.Context, task *models.Task) error {
	task.ID = r.nextID
	r.nextID++
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id, ownerID int64) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, apperrors.NotFoundf("task %d", id)
	}
	cp := t
	return &cp, nil
}

func (r *fakeTaskRepo) FindAll(_ context.Context, ownerID int64, archived bool) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID && t.Archived == archived {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *fakeTaskRepo) Search(_ context.Context, ownerID int64, filter models.TaskFilter) ([]models.Task, error) {
	r.lastFilter = &filter
	var out []models.Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	cur, ok := r.tasks[task.ID]
	if !ok || cur.OwnerID != task.OwnerID {
		return apperrors.NotFoundf("task %d", task.ID)
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id, ownerID int64) error {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return apperrors.NotFoundf("task %d", id)
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) ListDueForReminder(_ context.Context, _ time.Time, _ int) ([]models.Task, error) {
	return nil, nil
}

func (r *fakeTaskRepo) SetReminderFired(_ context.Context, _ int64) error { return nil }

func newTestService(repo *fakeTaskRepo, now time.Time) *taskService {
	return &taskService{repo: repo, now: func() time.Time { return now }}
}

func strPtr(s string) *string                        { return &s }
func boolPtr(b bool) *bool                           { return &b }
func statusPtr(s models.TaskStatus) *models.TaskStatus { return &s }

func TestCreateDefaults(t *testing.T) {
	repo := newFakeTaskRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	ctx := context.Background()

	task, err := svc.Create(ctx, 7, TaskCreate{Title: "Buy milk", Tags: []string{"errand", " home "}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.ID == 0 {
		t.Error("Create() did not assign an id")
	}
	if task.OwnerID != 7 {
		t.Errorf("OwnerID = %d, want 7", task.OwnerID)
	}
	if task.Status != models.StatusTodo {
		t.Errorf("Status = %q, want todo", task.Status)
	}
	if task.Done {
		t.Error("Done = true for a new task")
	}
	if task.Archived {
		t.Error("Archived = true for a new task")
	}
	if task.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", task.CompletedAt)
	}
	if !task.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", task.CreatedAt, now)
	}
	if len(task.Tags) != 2 || task.Tags[0] != "errand" || task.Tags[1] != "home" {
		t.Errorf("Tags = %v, want [errand home]", task.Tags)
	}
}

func TestCreateEmptyTitle(t *testing.T) {
	svc := newTestService(newFakeTaskRepo(), time.Now())

	tests := []struct {
		name  string
		title string
	}{
		{name: "empty", title: ""},
		{name: "whitespace only", title: "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, TaskCreate{Title: tt.title})
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("Create(%q) error = %v, want ErrValidation", tt.title, err)
			}
		})
	}
}

func TestTagsRejectCommas(t *testing.T) {
	svc := newTestService(newFakeTaskRepo(), time.Now())
	ctx := context.Background()

	// a comma inside a tag would split into two tags after a persist/load
	// round-trip, so it is rejected wherever tags enter
	if _, err := svc.Create(ctx, 1, TaskCreate{Title: "x", Tags: []string{"a,b"}}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Create() error = %v, want ErrValidation", err)
	}
	if _, err := svc.Search(ctx, 1, models.TaskFilter{Tags: []string{"a,b"}}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Search() error = %v, want ErrValidation", err)
	}
}

func TestUpdateMergePatch(t *testing.T) {
	repo := newFakeTaskRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	ctx := context.Background()

	due := now.Add(48 * time.Hour)
	created, err := svc.Create(ctx, 1, TaskCreate{
		Title:       "Write report",
		Description: "quarterly numbers",
		Tags:        []string{"work"},
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// patch only the title; everything else must survive
	updated, err := svc.Update(ctx, 1, created.ID, TaskUpdate{Title: strPtr("Write Q1 report")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Write Q1 report" {
		t.Errorf("Title = %q", updated.Title)
	}
	if updated.Description != "quarterly numbers" {
		t.Errorf("Description changed: %q", updated.Description)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Errorf("DueDate changed: %v", updated.DueDate)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "work" {
		t.Errorf("Tags changed: %v", updated.Tags)
	}
	if updated.Status != models.StatusTodo {
		t.Errorf("Status changed: %q", updated.Status)
	}

	// explicit due_date clear
	updated, err = svc.Update(ctx, 1, created.ID, TaskUpdate{DueDateSet: true})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.DueDate != nil {
		t.Errorf("DueDate = %v after clear, want nil", updated.DueDate)
	}
}

func TestUpdateStatusDoneForcesCompletion(t *testing.T) {
	repo := newFakeTaskRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, TaskCreate{Title: "Buy milk"})

	// caller lies about done; status wins
	updated, err := svc.Update(ctx, 1, created.ID, TaskUpdate{
		Status: statusPtr(models.StatusDone),
		Done:   boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.Done {
		t.Error("Done = false after status=done")
	}
	if updated.CompletedAt == nil {
		t.Fatal("CompletedAt = nil after status=done")
	}
	if updated.CompletedAt.Before(now) {
		t.Errorf("CompletedAt = %v, before update time %v", updated.CompletedAt, now)
	}
}

func TestUpdateLeavingDoneKeepsCompletedAt(t *testing.T) {
	repo := newFakeTaskRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, TaskCreate{Title: "Buy milk"})
	done, _ := svc.Update(ctx, 1, created.ID, TaskUpdate{Status: statusPtr(models.StatusDone)})
	if done.CompletedAt == nil {
		t.Fatal("CompletedAt = nil after status=done")
	}

	reopened, err := svc.Update(ctx, 1, created.ID, TaskUpdate{Status: statusPtr(models.StatusTodo)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if reopened.Done {
		t.Error("Done = true after reopening")
	}
	if reopened.CompletedAt == nil {
		t.Error("CompletedAt cleared on leaving done; it must be preserved")
	}
}

func TestUpdateDoneAloneIsIgnored(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestService(repo, time.Now())
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, TaskCreate{Title: "Buy milk"})
	updated, err := svc.Update(ctx, 1, created.ID, TaskUpdate{Done: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Status != models.StatusTodo {
		t.Errorf("Status = %q, want todo (done is derived, not writable)", updated.Status)
	}
	if updated.Done {
		t.Error("Done = true without a status transition")
	}
	if updated.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", updated.CompletedAt)
	}
}

func TestUpdateRejectsInvalidInput(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestService(repo, time.Now())
	ctx := context.Background()
	created, _ := svc.Create(ctx, 1, TaskCreate{Title: "Buy milk"})

	tests := []struct {
		name  string
		patch TaskUpdate
	}{
		{name: "empty title", patch: TaskUpdate{Title: strPtr("  ")}},
		{name: "unknown status", patch: TaskUpdate{Status: statusPtr("cancelled")}},
		{name: "tag with comma", patch: TaskUpdate{Tags: []string{"a,b"}, TagsSet: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Update(ctx, 1, created.ID, tt.patch); !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("Update() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestOwnerScoping(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestService(repo, time.Now())
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, TaskCreate{Title: "mine"})

	if _, err := svc.GetByID(ctx, 2, created.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetByID by other owner: error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, 2, created.ID, TaskUpdate{Title: strPtr("stolen")}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Update by other owner: error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Delete(ctx, 2, created.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Delete by other owner: error = %v, want ErrNotFound", err)
	}

	// and the task is still intact for its owner
	got, err := svc.GetByID(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "mine" {
		t.Errorf("Title = %q after cross-owner attempts", got.Title)
	}
}

func TestArchiveTogglesListVisibility(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestService(repo, time.Now())
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, TaskCreate{Title: "old chore"})

	if _, err := svc.Archive(ctx, 1, created.ID, true); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	active, _ := svc.List(ctx, 1, false)
	for _, task := range active {
		if task.ID == created.ID {
			t.Error("archived task returned by List(archived=false)")
		}
	}

	archived, _ := svc.List(ctx, 1, true)
	found := false
	for _, task := range archived {
		if task.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Error("archived task missing from List(archived=true)")
	}

	// archiving is independent of status
	got, _ := svc.GetByID(ctx, 1, created.ID)
	if got.Status != models.StatusTodo {
		t.Errorf("Status = %q after archive, want todo", got.Status)
	}
}

func TestDeleteReturnsRemovedTask(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestService(repo, time.Now())
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, TaskCreate{Title: "temp"})
	removed, err := svc.Delete(ctx, 1, created.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if removed.ID != created.ID || removed.Title != "temp" {
		t.Errorf("Delete() returned %+v", removed)
	}
	if _, err := svc.GetByID(ctx, 1, created.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetByID after delete: error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Delete(ctx, 1, created.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("second Delete: error = %v, want ErrNotFound", err)
	}
}

func TestSearchNormalizesFilter(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestService(repo, time.Now())
	ctx := context.Background()

	_, err := svc.Search(ctx, 1, models.TaskFilter{
		Query: "  milk  ",
		Tags:  []string{" errand ", ""},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if repo.lastFilter == nil {
		t.Fatal("filter never reached the store")
	}
	if repo.lastFilter.Query != "milk" {
		t.Errorf("Query = %q, want %q", repo.lastFilter.Query, "milk")
	}
	if len(repo.lastFilter.Tags) != 1 || repo.lastFilter.Tags[0] != "errand" {
		t.Errorf("Tags = %v, want [errand]", repo.lastFilter.Tags)
	}
}

func TestSearchRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(newFakeTaskRepo(), time.Now())
	bad := models.TaskStatus("bogus")
	if _, err := svc.Search(context.Background(), 1, models.TaskFilter{Status: &bad}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Search() error = %v, want ErrValidation", err)
	}
}
