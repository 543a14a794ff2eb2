package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

func TestAddDependencies(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches a valid batch", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})
		d1 := repo.seed(models.Task{Title: "First dep"})
		d2 := repo.seed(models.Task{Title: "Second dep", Status: models.StatusCompleted})

		got, err := svc.AddDependencies(ctx, manager, task.ID, []int64{d1.ID, d2.ID})
		require.NoError(t, err)
		assert.Len(t, got.Dependencies, 2)
		assert.ElementsMatch(t, []int64{d1.ID, d2.ID}, repo.edges[task.ID])
	})

	t.Run("requires manager", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})

		_, err := svc.AddDependencies(ctx, regular, task.ID, []int64{1})
		require.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("task not found", func(t *testing.T) {
		svc := NewDependencyService(newFakeTaskRepo())
		_, err := svc.AddDependencies(ctx, manager, 42, []int64{1})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty batch", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})

		_, err := svc.AddDependencies(ctx, manager, task.ID, nil)
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "The dependency ids field is required.")
	})

	t.Run("self dependency", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})

		_, err := svc.AddDependencies(ctx, manager, task.ID, []int64{task.ID})
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, ValidationErrors{"Dependency #1 is invalid or repeated."}, verrs)
	})

	t.Run("missing ids are reported per position", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})

		_, err := svc.AddDependencies(ctx, manager, task.ID, []int64{5, 5})
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, ValidationErrors{
			"Dependency #1 is invalid or does not exist.",
			"Dependency #2 is invalid or does not exist.",
		}, verrs)
	})

	t.Run("cancelled task cannot be a dependency", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})
		dep := repo.seed(models.Task{Title: "Cancelled dep", Status: models.StatusCancelled})

		_, err := svc.AddDependencies(ctx, manager, task.ID, []int64{dep.ID})
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, ValidationErrors{"Dependency #1 is invalid or does not exist."}, verrs)
	})

	t.Run("duplicate within the batch", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})
		dep := repo.seed(models.Task{Title: "Valid dep"})

		_, err := svc.AddDependencies(ctx, manager, task.ID, []int64{dep.ID, dep.ID})
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, ValidationErrors{"Dependency #2 is invalid or repeated."}, verrs)
	})

	t.Run("already attached", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})
		dep := repo.seed(models.Task{Title: "Valid dep"})
		repo.edges[task.ID] = []int64{dep.ID}

		_, err := svc.AddDependencies(ctx, manager, task.ID, []int64{dep.ID})
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, ValidationErrors{"Dependency #1 is invalid or repeated."}, verrs)
	})

	t.Run("violations leave the graph untouched", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})
		dep := repo.seed(models.Task{Title: "Valid dep"})

		_, err := svc.AddDependencies(ctx, manager, task.ID, []int64{dep.ID, 9999})
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, ValidationErrors{"Dependency #2 is invalid or does not exist."}, verrs)
		assert.Empty(t, repo.edges[task.ID])
	})

	t.Run("racing insert surfaces as conflict", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})
		dep := repo.seed(models.Task{Title: "Valid dep"})

		// the same edge lands between the validation reads and the insert
		repo.beforeAttachEdges = func() {
			repo.edges[task.ID] = []int64{dep.ID}
		}
		_, err := svc.AddDependencies(ctx, manager, task.ID, []int64{dep.ID})
		require.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, "This dependency already exists", err.Error())
	})
}

func TestRemoveDependency(t *testing.T) {
	ctx := context.Background()

	t.Run("detaches an existing edge", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})
		dep := repo.seed(models.Task{Title: "Dep task"})
		repo.edges[task.ID] = []int64{dep.ID}

		got, err := svc.RemoveDependency(ctx, manager, task.ID, dep.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Dependencies)
		assert.Empty(t, repo.edges[task.ID])
	})

	t.Run("missing edge", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})

		_, err := svc.RemoveDependency(ctx, manager, task.ID, 9999)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "This dependency does not exist", err.Error())
	})

	t.Run("task not found", func(t *testing.T) {
		svc := NewDependencyService(newFakeTaskRepo())
		_, err := svc.RemoveDependency(ctx, manager, 42, 1)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "Task not found", err.Error())
	})

	t.Run("requires manager", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewDependencyService(repo)
		task := repo.seed(models.Task{Title: "Parent task"})

		_, err := svc.RemoveDependency(ctx, regular, task.ID, 1)
		require.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestDependencyPredicates(t *testing.T) {
	tests := []struct {
		name          string
		deps          []models.Task
		wantCompleted bool
		wantResolved  bool
	}{
		{"no dependencies", nil, true, true},
		{"all completed", []models.Task{{Status: models.StatusCompleted}}, true, true},
		{"pending blocks both", []models.Task{{Status: models.StatusCompleted}, {Status: models.StatusPending}}, false, false},
		{"cancelled blocks completion only", []models.Task{{Status: models.StatusCompleted}, {Status: models.StatusCancelled}}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCompleted, dependenciesCompleted(tt.deps))
			assert.Equal(t, tt.wantResolved, dependenciesResolved(tt.deps))
		})
	}
}

func TestDependencyPredicatesOverGraph(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := NewDependencyService(repo)
	ctx := context.Background()

	task := repo.seed(models.Task{Title: "Parent task"})
	done := repo.seed(models.Task{Title: "Done dep", Status: models.StatusCompleted})
	cancelled := repo.seed(models.Task{Title: "Cancelled dep", Status: models.StatusCancelled})
	repo.edges[task.ID] = []int64{done.ID, cancelled.ID}

	completed, err := svc.DependenciesCompleted(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, completed)

	resolved, err := svc.DependenciesResolved(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, resolved)
}

func TestStatusTransitionTable(t *testing.T) {
	assert.True(t, canTransition(models.StatusPending, models.StatusCompleted))
	assert.True(t, canTransition(models.StatusPending, models.StatusCancelled))
	assert.False(t, canTransition(models.StatusCompleted, models.StatusPending))
	assert.False(t, canTransition(models.StatusCompleted, models.StatusCancelled))
	assert.False(t, canTransition(models.StatusCancelled, models.StatusPending))
	assert.False(t, canTransition(models.StatusCancelled, models.StatusCompleted))

	// the table and the Terminal predicate must agree
	for st, nexts := range TaskTransitions {
		assert.Equal(t, st.Terminal(), len(nexts) == 0)
	}
}
