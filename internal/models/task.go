// internal/models/task.go
package models

import (
	"strings"
	"time"
)

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusArchived   TaskStatus = "archived"
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

// Task represents a single task owned by exactly one user.
//
// Status is the single source of truth for completion; Done is a derived
// legacy mirror (Done == (Status == StatusDone)) kept for older clients and
// recomputed via SyncDone wherever a task is loaded or its status changes.
// CompletedAt is stamped on every transition to done and is never
// cleared afterwards, even if the task later leaves done.
type Task struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Status      TaskStatus `json:"status"`
	Done        bool       `json:"done"`
	Archived    bool       `json:"archived"`
	CreatedAt   time.Time  `json:"created_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RemindedAt  *time.Time `json:"-"`
}

// SyncDone recomputes the derived Done mirror from Status.
func (t *Task) SyncDone() {
	t.Done = t.Status == StatusDone
}

// TaskFilter defines the available parameters for searching tasks.
// Every present field narrows the result; an empty filter matches all of
// the owner's tasks regardless of archived state.
type TaskFilter struct {
	Query       string
	Status      *TaskStatus
	Archived    *bool
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Tags        []string
}

// JoinTags serializes a tag set into the comma-delimited form stored in the
// tags column.
func JoinTags(tags []string) string {
	return strings.Join(NormalizeTags(tags), ",")
}

// SplitTags parses the stored comma-delimited form back into a tag set.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims whitespace and drops empty entries, preserving order.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}
