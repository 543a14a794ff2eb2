// internal/models/task.go
package models

import "time"

// TaskStatus is stored as a small integer: 1=pending, 2=completed, 3=cancelled.
type TaskStatus int

const (
	StatusPending   TaskStatus = 1
	StatusCompleted TaskStatus = 2
	StatusCancelled TaskStatus = 3
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined out of s.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s TaskStatus) Label() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Task represents a unit of work with a lifecycle status, an optional
// assignee and optional dependency edges to other tasks.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     time.Time  `json:"due_date"`
	AssigneeID  *int64     `json:"assignee_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`

	// Dependencies are the tasks this task depends on. Loaded on demand;
	// soft-deleted dependencies are filtered out at lookup time.
	Dependencies []Task `json:"dependencies,omitempty"`
}

// TaskFilter defines the available parameters for filtering task listings.
type TaskFilter struct {
	Status     *TaskStatus
	DueFrom    *time.Time
	DueTo      *time.Time
	TextSearch *string
	AssigneeID *int64

	Page    int
	PerPage int
}

// TaskPage is one page of a filtered task listing.
type TaskPage struct {
	Tasks   []Task `json:"tasks"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// TaskSummary holds per-status task counts for reporting.
type TaskSummary struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"`
}
