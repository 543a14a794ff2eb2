// internal/services/task_service.go
package services

import (
	"context"
	"time"
	"unicode/utf8"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

const (
	titleMinLen = 5
	titleMaxLen = 255
	descMaxLen  = 1000

	defaultPerPage = 10
	maxPerPage     = 100
)

// TaskInput carries the writable task fields for create and update.
type TaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
}

// TaskService defines the task-related business logic. Every call receives
// the acting identity explicitly; access scope is resolved here, not in the
// transport layer.
type TaskService interface {
	Create(ctx context.Context, actor models.Actor, input TaskInput) (*models.Task, error)
	Update(ctx context.Context, actor models.Actor, id int64, input TaskInput) (*models.Task, error)
	Delete(ctx context.Context, actor models.Actor, id int64) error
	Get(ctx context.Context, actor models.Actor, id int64) (*models.Task, error)
	List(ctx context.Context, actor models.Actor, filter models.TaskFilter) (*models.TaskPage, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id int64, to models.TaskStatus) (*models.Task, error)
	AssignUser(ctx context.Context, actor models.Actor, id, userID int64) (*models.Task, error)
}

type taskService struct {
	repo  repositories.TaskRepository
	users repositories.UserRepository
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo repositories.TaskRepository, users repositories.UserRepository) TaskService {
	return &taskService{repo: repo, users: users}
}

func (s *taskService) Create(ctx context.Context, actor models.Actor, input TaskInput) (*models.Task, error) {
	if !actor.IsManager() {
		return nil, errKind(ErrNotAuthorized, "You are not authorized to perform this action")
	}
	if verrs := validateTaskInput(input); len(verrs) > 0 {
		return nil, verrs
	}

	now := time.Now()
	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.StatusPending,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, actor models.Actor, id int64, input TaskInput) (*models.Task, error) {
	if !actor.IsManager() {
		return nil, errKind(ErrNotAuthorized, "You are not authorized to perform this action")
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errKind(ErrNotFound, "Task not found")
	}
	if verrs := validateTaskInput(input); len(verrs) > 0 {
		return nil, verrs
	}

	task.Title = input.Title
	task.Description = input.Description
	task.DueDate = input.DueDate
	task.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if !actor.IsManager() {
		return errKind(ErrNotAuthorized, "You are not authorized to perform this action")
	}
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errKind(ErrNotFound, "Task not found")
	}
	return nil
}

// Get applies the caller's access scope to a single fetch. A task outside
// the scope reads as absent so that non-owners cannot probe for existence.
func (s *taskService) Get(ctx context.Context, actor models.Actor, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errKind(ErrNotFound, "Task not found")
	}
	if actor.Role == models.RoleUser && (task.AssigneeID == nil || *task.AssigneeID != actor.ID) {
		return nil, errKind(ErrNotFound, "Task not found")
	}

	deps, err := s.repo.ListDependencies(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	task.Dependencies = deps
	return task, nil
}

func (s *taskService) List(ctx context.Context, actor models.Actor, filter models.TaskFilter) (*models.TaskPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}

	// The assignee filter is manager-only; a regular user always sees
	// exactly their own tasks.
	if actor.Role == models.RoleUser {
		id := actor.ID
		filter.AssigneeID = &id
	}

	tasks, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &models.TaskPage{
		Tasks:   tasks,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, actor models.Actor, id int64, to models.TaskStatus) (*models.Task, error) {
	if !to.Valid() {
		return nil, ValidationErrors{"The selected status is invalid."}
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errKind(ErrNotFound, "Task not found")
	}
	if task.AssigneeID == nil || *task.AssigneeID != actor.ID {
		return nil, errKind(ErrNotAuthorized, "You are not authorized to update this task")
	}
	if to == task.Status {
		return nil, errKind(ErrInvalidTransition, "Task status cannot be the same")
	}
	if !canTransition(task.Status, to) {
		return nil, errKind(ErrInvalidTransition, "Task status cannot be changed from "+task.Status.Label()+" to "+to.Label())
	}
	if to == models.StatusCompleted {
		deps, err := s.repo.ListDependencies(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		if !dependenciesCompleted(deps) {
			return nil, errKind(ErrBlockedByDependencies, "Cannot complete this task until all dependencies are completed")
		}
	}

	ok, err := s.repo.UpdateStatus(ctx, id, task.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost a race against a concurrent mutation on the same task
		return nil, errKind(ErrConflict, "Task was modified concurrently")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) AssignUser(ctx context.Context, actor models.Actor, id, userID int64) (*models.Task, error) {
	if !actor.IsManager() {
		return nil, errKind(ErrNotAuthorized, "You are not authorized to perform this action")
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errKind(ErrNotFound, "Task not found")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Role != models.RoleUser {
		// managers cannot be assignees
		return nil, ValidationErrors{"The selected user is invalid."}
	}
	if task.Status != models.StatusPending {
		return nil, errKind(ErrConflict, "Task cannot be assigned to a user when it is not pending")
	}

	ok, err := s.repo.UpdateAssignee(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errKind(ErrConflict, "Task cannot be assigned to a user when it is not pending")
	}
	return s.repo.FindByID(ctx, id)
}

func validateTaskInput(input TaskInput) ValidationErrors {
	var verrs ValidationErrors
	if n := utf8.RuneCountInString(input.Title); n < titleMinLen || n > titleMaxLen {
		verrs = append(verrs, "The title must be between 5 and 255 characters.")
	}
	if utf8.RuneCountInString(input.Description) > descMaxLen {
		verrs = append(verrs, "The description may not be greater than 1000 characters.")
	}
	if input.DueDate.IsZero() {
		verrs = append(verrs, "The due date field is required.")
	} else if !input.DueDate.After(time.Now()) {
		verrs = append(verrs, "The due date must be a date after now.")
	}
	return verrs
}
