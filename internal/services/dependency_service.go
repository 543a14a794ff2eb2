// internal/services/dependency_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// DependencyService validates and mutates the dependency edges of a task.
// Edges are directed: the task depends on each of its dependencies.
type DependencyService interface {
	AddDependencies(ctx context.Context, actor models.Actor, taskID int64, dependencyIDs []int64) (*models.Task, error)
	RemoveDependency(ctx context.Context, actor models.Actor, taskID, dependencyID int64) (*models.Task, error)

	// DependenciesCompleted is the strict predicate that gates completion:
	// a Cancelled dependency blocks just like a Pending one.
	DependenciesCompleted(ctx context.Context, taskID int64) (bool, error)
	// DependenciesResolved also accepts Cancelled dependencies. It is not
	// wired into the transition engine; callers that want to unblock on
	// cancellation use it directly.
	DependenciesResolved(ctx context.Context, taskID int64) (bool, error)
}

type dependencyService struct {
	repo repositories.TaskRepository
}

func NewDependencyService(repo repositories.TaskRepository) DependencyService {
	return &dependencyService{repo: repo}
}

// AddDependencies validates the whole batch before writing anything. Every
// violating candidate is reported, positional and 1-indexed; within one
// candidate validation stops at its first failing rule. On success all edges
// are inserted in a single transaction.
func (s *dependencyService) AddDependencies(ctx context.Context, actor models.Actor, taskID int64, dependencyIDs []int64) (*models.Task, error) {
	if !actor.IsManager() {
		return nil, errKind(ErrNotAuthorized, "You are not authorized to perform this action")
	}
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errKind(ErrNotFound, "Task not found")
	}
	if len(dependencyIDs) == 0 {
		return nil, ValidationErrors{"The dependency ids field is required."}
	}

	statuses, err := s.repo.FindStatusByIDs(ctx, dependencyIDs)
	if err != nil {
		return nil, err
	}
	existingIDs, err := s.repo.ListDependencyIDs(ctx, taskID)
	if err != nil {
		return nil, err
	}
	existing := make(map[int64]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	var verrs ValidationErrors
	seen := make(map[int64]bool, len(dependencyIDs))
	for i, depID := range dependencyIDs {
		pos := i + 1
		status, found := statuses[depID]
		switch {
		case !found || status == models.StatusCancelled:
			// a cancelled task cannot be depended upon
			verrs = append(verrs, fmt.Sprintf("Dependency #%d is invalid or does not exist.", pos))
		case depID == taskID:
			verrs = append(verrs, fmt.Sprintf("Dependency #%d is invalid or repeated.", pos))
		case existing[depID] || seen[depID]:
			verrs = append(verrs, fmt.Sprintf("Dependency #%d is invalid or repeated.", pos))
		default:
			seen[depID] = true
		}
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	if err := s.repo.AttachEdges(ctx, taskID, dependencyIDs); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEdge) {
			return nil, errKind(ErrConflict, "This dependency already exists")
		}
		return nil, err
	}

	task.Dependencies, err = s.repo.ListDependencies(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *dependencyService) RemoveDependency(ctx context.Context, actor models.Actor, taskID, dependencyID int64) (*models.Task, error) {
	if !actor.IsManager() {
		return nil, errKind(ErrNotAuthorized, "You are not authorized to perform this action")
	}
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errKind(ErrNotFound, "Task not found")
	}

	ok, err := s.repo.DetachEdge(ctx, taskID, dependencyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errKind(ErrNotFound, "This dependency does not exist")
	}

	task.Dependencies, err = s.repo.ListDependencies(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *dependencyService) DependenciesCompleted(ctx context.Context, taskID int64) (bool, error) {
	deps, err := s.repo.ListDependencies(ctx, taskID)
	if err != nil {
		return false, err
	}
	return dependenciesCompleted(deps), nil
}

func (s *dependencyService) DependenciesResolved(ctx context.Context, taskID int64) (bool, error) {
	deps, err := s.repo.ListDependencies(ctx, taskID)
	if err != nil {
		return false, err
	}
	return dependenciesResolved(deps), nil
}

// dependenciesCompleted is true iff deps is empty or every dependency is
// Completed. Pending and Cancelled dependencies both block.
func dependenciesCompleted(deps []models.Task) bool {
	for _, d := range deps {
		if d.Status != models.StatusCompleted {
			return false
		}
	}
	return true
}

// dependenciesResolved is true iff every dependency is Completed or Cancelled.
func dependenciesResolved(deps []models.Task) bool {
	for _, d := range deps {
		if d.Status != models.StatusCompleted && d.Status != models.StatusCancelled {
			return false
		}
	}
	return true
}
