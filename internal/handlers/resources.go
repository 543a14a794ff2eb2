package handlers

import "taskboard/internal/models"

// timeLayout is the wire format for all task timestamps.
const timeLayout = "2006-01-02 15:04"

type enumResource struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

type userResource struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type taskResource struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Status       enumResource   `json:"status"`
	DueDate      string         `json:"due_date"`
	CreatedAt    string         `json:"created_at"`
	AssigneeID   *int64         `json:"assignee_id,omitempty"`
	Assignee     *userResource  `json:"assignee,omitempty"`
	Dependencies []taskResource `json:"dependencies,omitempty"`
}

func newUserResource(u *models.User) *userResource {
	if u == nil {
		return nil
	}
	return &userResource{ID: u.ID, Name: u.Name, Email: u.Email}
}

// newTaskResource shapes a task for the wire. assignee may be nil; the
// dependency list is only rendered when it was loaded.
func newTaskResource(t *models.Task, assignee *models.User) taskResource {
	res := taskResource{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      enumResource{Value: int(t.Status), Label: t.Status.Label()},
		DueDate:     t.DueDate.Format(timeLayout),
		CreatedAt:   t.CreatedAt.Format(timeLayout),
		AssigneeID:  t.AssigneeID,
		Assignee:    newUserResource(assignee),
	}
	for i := range t.Dependencies {
		res.Dependencies = append(res.Dependencies, newTaskResource(&t.Dependencies[i], nil))
	}
	return res
}

func newTaskCollection(tasks []models.Task) []taskResource {
	out := make([]taskResource, 0, len(tasks))
	for i := range tasks {
		out = append(out, newTaskResource(&tasks[i], nil))
	}
	return out
}
