package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"taskboard/internal/models"
)

// ErrDuplicateEdge is returned when an edge insert hits the composite
// primary key on task_dependencies.
var ErrDuplicateEdge = fmt.Errorf("dependency edge already exists")

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
	Update(ctx context.Context, task *models.Task) error
	SoftDelete(ctx context.Context, id int64) (bool, error)
	CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error)

	// Conditional writes: both guard on the current row state so that two
	// concurrent mutations on one task serialize instead of interleaving.
	UpdateStatus(ctx context.Context, id int64, from, to models.TaskStatus) (bool, error)
	UpdateAssignee(ctx context.Context, id, assigneeID int64) (bool, error)

	// Dependency edges. task_id depends on dependency_id.
	ListDependencies(ctx context.Context, taskID int64) ([]models.Task, error)
	ListDependencyIDs(ctx context.Context, taskID int64) ([]int64, error)
	FindStatusByIDs(ctx context.Context, ids []int64) (map[int64]models.TaskStatus, error)
	AttachEdges(ctx context.Context, taskID int64, dependencyIDs []int64) error
	DetachEdge(ctx context.Context, taskID, dependencyID int64) (bool, error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, description, status, due_date, assignee_id, created_at, updated_at`

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (title, description, status, due_date, assignee_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, task.DueDate, task.AssigneeID,
		task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

// FindByID returns nil when the task is absent or soft-deleted.
func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND deleted_at IS NULL`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.Title, &task.Description, &task.Status,
		&task.DueDate, &task.AssigneeID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.DueFrom != nil && filter.DueTo != nil {
		conditions = append(conditions, fmt.Sprintf("due_date BETWEEN $%d AND $%d", argID, argID+1))
		args = append(args, *filter.DueFrom, *filter.DueTo)
		argID += 2
	}
	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", argID))
		args = append(args, *filter.AssigneeID)
		argID++
	}

	selectCols := taskColumns
	orderBy := "created_at DESC"
	if filter.TextSearch != nil && *filter.TextSearch != "" {
		// full-text over title+description, ranked by relevance
		selectCols += fmt.Sprintf(
			", ts_rank(to_tsvector('simple', title || ' ' || description), plainto_tsquery('simple', $%d)) AS relevance", argID)
		conditions = append(conditions, fmt.Sprintf(
			"to_tsvector('simple', title || ' ' || description) @@ plainto_tsquery('simple', $%d)", argID))
		args = append(args, *filter.TextSearch)
		argID++
		orderBy = "relevance DESC"
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + selectCols + ` FROM tasks` + where + ` ORDER BY ` + orderBy
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	hasRank := filter.TextSearch != nil && *filter.TextSearch != ""
	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		dest := []interface{}{
			&t.ID, &t.Title, &t.Description, &t.Status,
			&t.DueDate, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt,
		}
		if hasRank {
			var relevance float64
			dest = append(dest, &relevance)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET title=$1, description=$2, due_date=$3, updated_at=$4
		WHERE id=$5 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.DueDate, task.UpdatedAt, task.ID,
	)
	return err
}

func (r *taskRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *taskRepository) CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE deleted_at IS NULL GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.TaskStatus]int{}
	for rows.Next() {
		var st models.TaskStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

// UpdateStatus only succeeds if the row still carries the expected status;
// the loser of a concurrent transition sees zero rows affected.
func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, from, to models.TaskStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3 AND deleted_at IS NULL`,
		to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateAssignee only succeeds while the task is still pending.
func (r *taskRepository) UpdateAssignee(ctx context.Context, id, assigneeID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET assignee_id=$1, updated_at=NOW() WHERE id=$2 AND status=$3 AND deleted_at IS NULL`,
		assigneeID, id, models.StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *taskRepository) ListDependencies(ctx context.Context, taskID int64) ([]models.Task, error) {
	query := `
		SELECT t.id, t.title, t.description, t.status, t.due_date, t.assignee_id, t.created_at, t.updated_at
		FROM task_dependencies d
		JOIN tasks t ON t.id = d.dependency_id
		WHERE d.task_id = $1 AND t.deleted_at IS NULL
		ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deps []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Status,
			&t.DueDate, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		deps = append(deps, t)
	}
	return deps, rows.Err()
}

func (r *taskRepository) ListDependencyIDs(ctx context.Context, taskID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT dependency_id FROM task_dependencies WHERE task_id = $1`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindStatusByIDs returns the status of every non-deleted task in ids.
// Absent and soft-deleted ids are simply missing from the result.
func (r *taskRepository) FindStatusByIDs(ctx context.Context, ids []int64) (map[int64]models.TaskStatus, error) {
	statuses := make(map[int64]models.TaskStatus, len(ids))
	if len(ids) == 0 {
		return statuses, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, status FROM tasks WHERE id = ANY($1) AND deleted_at IS NULL`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var st models.TaskStatus
		if err := rows.Scan(&id, &st); err != nil {
			return nil, err
		}
		statuses[id] = st
	}
	return statuses, rows.Err()
}

// AttachEdges inserts all edges in one transaction: either every edge lands
// or none does.
func (r *taskRepository) AttachEdges(ctx context.Context, taskID int64, dependencyIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, depID := range dependencyIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO task_dependencies (task_id, dependency_id, created_at) VALUES ($1, $2, NOW())`,
			taskID, depID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return ErrDuplicateEdge
			}
			return err
		}
	}
	return tx.Commit()
}

func (r *taskRepository) DetachEdge(ctx context.Context, taskID, dependencyID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM task_dependencies WHERE task_id = $1 AND dependency_id = $2`,
		taskID, dependencyID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
