package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// fakeTaskRepo is an in-memory TaskRepository with the same conditional-write
// semantics as the SQL implementation.
type fakeTaskRepo struct {
	tasks  map[int64]*models.Task
	edges  map[int64][]int64 // task_id -> dependency ids
	nextID int64

	// called right before a conditional write, to simulate a concurrent
	// mutation between read and write
	beforeUpdateStatus func()
	beforeAttachEdges  func()
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks: map[int64]*models.Task{},
		edges: map[int64][]int64{},
	}
}

func (r *fakeTaskRepo) seed(t models.Task) *models.Task {
	if t.ID == 0 {
		r.nextID++
		t.ID = r.nextID
	} else if t.ID > r.nextID {
		r.nextID = t.ID
	}
	if t.Status == 0 {
		t.Status = models.StatusPending
	}
	r.tasks[t.ID] = &t
	return &t
}

func (r *fakeTaskRepo) Store(_ context.Context, task *models.Task) error {
	r.nextID++
	task.ID = r.nextID
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id int64) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.DeletedAt != nil {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) FindAll(_ context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	var all []models.Task
	for _, t := range r.tasks {
		if t.DeletedAt != nil {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.DueFrom != nil && filter.DueTo != nil {
			if t.DueDate.Before(*filter.DueFrom) || t.DueDate.After(*filter.DueTo) {
				continue
			}
		}
		if filter.TextSearch != nil && *filter.TextSearch != "" {
			needle := strings.ToLower(*filter.TextSearch)
			if !strings.Contains(strings.ToLower(t.Title), needle) &&
				!strings.Contains(strings.ToLower(t.Description), needle) {
				continue
			}
		}
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	start := (filter.Page - 1) * filter.PerPage
	if start > total {
		start = total
	}
	end := start + filter.PerPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	if t, ok := r.tasks[task.ID]; ok && t.DeletedAt == nil {
		cp := *task
		r.tasks[task.ID] = &cp
	}
	return nil
}

func (r *fakeTaskRepo) SoftDelete(_ context.Context, id int64) (bool, error) {
	t, ok := r.tasks[id]
	if !ok || t.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	t.DeletedAt = &now
	return true, nil
}

func (r *fakeTaskRepo) CountByStatus(_ context.Context) (map[models.TaskStatus]int, error) {
	counts := map[models.TaskStatus]int{}
	for _, t := range r.tasks {
		if t.DeletedAt == nil {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id int64, from, to models.TaskStatus) (bool, error) {
	if r.beforeUpdateStatus != nil {
		r.beforeUpdateStatus()
	}
	t, ok := r.tasks[id]
	if !ok || t.DeletedAt != nil || t.Status != from {
		return false, nil
	}
	t.Status = to
	t.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeTaskRepo) UpdateAssignee(_ context.Context, id, assigneeID int64) (bool, error) {
	t, ok := r.tasks[id]
	if !ok || t.DeletedAt != nil || t.Status != models.StatusPending {
		return false, nil
	}
	t.AssigneeID = &assigneeID
	t.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeTaskRepo) ListDependencies(_ context.Context, taskID int64) ([]models.Task, error) {
	var deps []models.Task
	for _, depID := range r.edges[taskID] {
		if t, ok := r.tasks[depID]; ok && t.DeletedAt == nil {
			deps = append(deps, *t)
		}
	}
	return deps, nil
}

func (r *fakeTaskRepo) ListDependencyIDs(_ context.Context, taskID int64) ([]int64, error) {
	return append([]int64(nil), r.edges[taskID]...), nil
}

func (r *fakeTaskRepo) FindStatusByIDs(_ context.Context, ids []int64) (map[int64]models.TaskStatus, error) {
	statuses := map[int64]models.TaskStatus{}
	for _, id := range ids {
		if t, ok := r.tasks[id]; ok && t.DeletedAt == nil {
			statuses[id] = t.Status
		}
	}
	return statuses, nil
}

func (r *fakeTaskRepo) AttachEdges(_ context.Context, taskID int64, dependencyIDs []int64) error {
	if r.beforeAttachEdges != nil {
		r.beforeAttachEdges()
	}
	existing := map[int64]bool{}
	for _, id := range r.edges[taskID] {
		existing[id] = true
	}
	for _, id := range dependencyIDs {
		if existing[id] {
			return repositories.ErrDuplicateEdge
		}
		existing[id] = true
	}
	r.edges[taskID] = append(r.edges[taskID], dependencyIDs...)
	return nil
}

func (r *fakeTaskRepo) DetachEdge(_ context.Context, taskID, dependencyID int64) (bool, error) {
	ids := r.edges[taskID]
	for i, id := range ids {
		if id == dependencyID {
			r.edges[taskID] = append(ids[:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

var _ repositories.TaskRepository = (*fakeTaskRepo)(nil)

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}}
}

func (r *fakeUserRepo) seed(u models.User) *models.User {
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	} else if u.ID > r.nextID {
		r.nextID = u.ID
	}
	r.users[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email && u.DeletedAt == nil {
			return repositories.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]models.User, error) {
	var all []models.User
	for _, u := range r.users {
		if u.DeletedAt == nil {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeUserRepo) UpdateRefresh(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	if u, ok := r.users[userID]; ok {
		u.RefreshToken = &token
		u.RefreshExpiresAt = &expiresAt
		u.RefreshRevoked = false
	}
	return nil
}

func (r *fakeUserRepo) FindByRefreshToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) RotateRefresh(_ context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken && !u.RefreshRevoked && u.DeletedAt == nil {
			u.RefreshToken = &newToken
			u.RefreshExpiresAt = &expiresAt
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) RevokeRefresh(_ context.Context, userID int64) error {
	if u, ok := r.users[userID]; ok {
		u.RefreshRevoked = true
	}
	return nil
}

func (r *fakeUserRepo) GetTelegramChatID(_ context.Context, userID int64) (int64, error) {
	if u, ok := r.users[userID]; ok && u.DeletedAt == nil {
		return u.TelegramChatID, nil
	}
	return 0, nil
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)
