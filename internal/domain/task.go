package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/blizx/zenith/internal/platform/errors"
	"github.com/blizx/zenith/internal/platform/id"
)

// Category groups tasks and priority items by life area.
type Category string

const (
	CategoryWork    Category = "Work"
	CategoryProject Category = "Project"
	CategoryPrivate Category = "Private"
)

// Categories lists all valid categories in display order.
func Categories() []Category {
	return []Category{CategoryWork, CategoryProject, CategoryPrivate}
}

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryProject, CategoryPrivate:
		return true
	}
	return false
}

// TaskPriority is the urgency tier of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// Valid reports whether the priority is one of the known values.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

var (
	// ErrTaskEmptyTitle indicates a missing task title.
	ErrTaskEmptyTitle = apperrors.New(apperrors.CodeTaskEmptyTitle, "task title is required")
	// ErrTaskInvalidDate indicates a day string that is not YYYY-MM-DD.
	ErrTaskInvalidDate = apperrors.New(apperrors.CodeTaskInvalidDate, "task date must be YYYY-MM-DD")
	// ErrTaskInvalidCategory indicates an unknown category value.
	ErrTaskInvalidCategory = apperrors.New(apperrors.CodeTaskInvalidCategory, "task category is not recognized")
	// ErrTaskInvalidPriority indicates an unknown priority value.
	ErrTaskInvalidPriority = apperrors.New(apperrors.CodeTaskInvalidPriority, "task priority is not recognized")
	// ErrTaskInvalidStatus indicates an unknown status value.
	ErrTaskInvalidStatus = apperrors.New(apperrors.CodeTaskInvalidStatus, "task status is not recognized")
)

// DateLayout is the calendar-day format used by the planner.
const DateLayout = "2006-01-02"

// Task is a planner intention bound to a calendar day.
type Task struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	Title         string       `json:"title"`
	Date          string       `json:"date"`
	Category      Category     `json:"category"`
	Priority      TaskPriority `json:"priority"`
	Status        TaskStatus   `json:"status"`
	RemindEnabled bool         `json:"remind_enabled"`
	CreatedAt     time.Time    `json:"created_at"`
}

// CreateTaskInput describes the metadata needed to create a task.
// Zero-valued Category, Priority, and Status fall back to the planner
// defaults (Work, Medium, todo).
type CreateTaskInput struct {
	UserID        string
	Title         string
	Date          string
	Category      Category
	Priority      TaskPriority
	Status        TaskStatus
	RemindEnabled bool
}

// NormalizeCreateTaskInput trims strings, applies defaults, and validates.
func NormalizeCreateTaskInput(input CreateTaskInput) (CreateTaskInput, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Title = strings.TrimSpace(input.Title)
	input.Date = strings.TrimSpace(input.Date)

	if input.Title == "" {
		return CreateTaskInput{}, ErrTaskEmptyTitle
	}
	if _, err := time.Parse(DateLayout, input.Date); err != nil {
		return CreateTaskInput{}, ErrTaskInvalidDate
	}
	if input.Category == "" {
		input.Category = CategoryWork
	}
	if !input.Category.Valid() {
		return CreateTaskInput{}, ErrTaskInvalidCategory
	}
	if input.Priority == "" {
		input.Priority = TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return CreateTaskInput{}, ErrTaskInvalidPriority
	}
	if input.Status == "" {
		input.Status = TaskStatusTodo
	}
	if !input.Status.Valid() {
		return CreateTaskInput{}, ErrTaskInvalidStatus
	}
	return input, nil
}

// CreateTask builds a task with a generated identifier and creation time.
func CreateTask(input CreateTaskInput, now func() time.Time, idGenerator func() (string, error)) (Task, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateTaskInput(input)
	if err != nil {
		return Task{}, err
	}

	taskID, err := idGenerator()
	if err != nil {
		return Task{}, fmt.Errorf("generate task id: %w", err)
	}

	return Task{
		ID:            taskID,
		UserID:        normalized.UserID,
		Title:         normalized.Title,
		Date:          normalized.Date,
		Category:      normalized.Category,
		Priority:      normalized.Priority,
		Status:        normalized.Status,
		RemindEnabled: normalized.RemindEnabled,
		CreatedAt:     now().UTC(),
	}, nil
}

// ToggledStatus returns the status after a checkbox toggle: done flips back
// to todo, anything else completes to done.
func (t Task) ToggledStatus() TaskStatus {
	if t.Status == TaskStatusDone {
		return TaskStatusTodo
	}
	return TaskStatusDone
}
