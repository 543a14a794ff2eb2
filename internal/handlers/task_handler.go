package handlers

import (
	"html"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
	"taskboard/internal/services"
)

type TaskHandler struct {
	service services.TaskService
	deps    services.DependencyService

	// telegram notifications to assignees, optional
	tg    *services.TelegramService
	users repositories.UserRepository
}

func NewTaskHandler(service services.TaskService, deps services.DependencyService, tg *services.TelegramService, users repositories.UserRepository) *TaskHandler {
	return &TaskHandler{service: service, deps: deps, tg: tg, users: users}
}

// @Summary      Create a task
// @Description  Creates a pending task. Managers only.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      object  true  "title, description, due_date (YYYY-MM-DD HH:MM)"
// @Success      201   {object}  map[string]interface{}
// @Failure      422   {object}  map[string]interface{}
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	actor := getActor(c)

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		DueDate     string `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][create][bind][err] %v", err)
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	due, err := time.Parse(timeLayout, req.DueDate)
	if err != nil {
		respond(c, http.StatusUnprocessableEntity, "The due date does not match the format "+timeLayout, nil)
		return
	}

	task, err := h.service.Create(c.Request.Context(), actor, services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	log.Printf("[task][create][ok] id=%d by=%d", task.ID, actor.ID)
	respond(c, http.StatusCreated, "Task created successfully", newTaskResource(task, nil))
}

// @Summary      List tasks
// @Description  Lists tasks visible to the caller, with filtering and full-text search.
// @Tags         Tasks
// @Produce      json
// @Param        status       query  int     false  "1=pending, 2=completed, 3=cancelled"
// @Param        start_date   query  string  false  "due-date range start (YYYY-MM-DD)"
// @Param        end_date     query  string  false  "due-date range end (YYYY-MM-DD)"
// @Param        text_search  query  string  false  "search over title and description"
// @Param        assignee_id  query  int     false  "filter by assignee (managers only)"
// @Param        page         query  int     false  "page number"
// @Param        per_page     query  int     false  "page size"
// @Success      200  {object}  map[string]interface{}
// @Router       /tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	actor := getActor(c)

	var filter models.TaskFilter
	if v, ok := c.GetQuery("status"); ok {
		if n, err := strconv.Atoi(v); err == nil && models.TaskStatus(n).Valid() {
			st := models.TaskStatus(n)
			filter.Status = &st
		}
	}
	start, hasStart := c.GetQuery("start_date")
	end, hasEnd := c.GetQuery("end_date")
	if hasStart && hasEnd {
		from, errFrom := time.Parse("2006-01-02", start)
		to, errTo := time.Parse("2006-01-02", end)
		if errFrom == nil && errTo == nil {
			filter.DueFrom = &from
			filter.DueTo = &to
		}
	}
	if v, ok := c.GetQuery("text_search"); ok && v != "" {
		filter.TextSearch = &v
	}
	if v, ok := c.GetQuery("assignee_id"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.AssigneeID = &id
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "10"))

	page, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks retrieved successfully",
		"status":  http.StatusOK,
		"data":    newTaskCollection(page.Tasks),
		"meta": gin.H{
			"total":    page.Total,
			"page":     page.Page,
			"per_page": page.PerPage,
		},
	})
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	actor := getActor(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "Task retrieved successfully", newTaskResource(task, h.lookupAssignee(c, task)))
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	actor := getActor(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		DueDate     string `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	due, err := time.Parse(timeLayout, req.DueDate)
	if err != nil {
		respond(c, http.StatusUnprocessableEntity, "The due date does not match the format "+timeLayout, nil)
		return
	}

	task, err := h.service.Update(c.Request.Context(), actor, id, services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	log.Printf("[task][update][ok] id=%d by=%d", id, actor.ID)
	respond(c, http.StatusOK, "Task updated successfully", newTaskResource(task, nil))
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	actor := getActor(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		abortWithError(c, err)
		return
	}
	log.Printf("[task][delete][ok] id=%d by=%d", id, actor.ID)
	respond(c, http.StatusOK, "Task deleted successfully", nil)
}

// @Summary      Update task status
// @Description  Transitions a task to a new status. Only the assignee may transition; completing requires every dependency to be completed.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id      path  int     true  "task id"
// @Param        status  body  object  true  "status (1=pending, 2=completed, 3=cancelled)"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]interface{}
// @Router       /tasks/{id}/update-status [patch]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	actor := getActor(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status int `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	task, err := h.service.UpdateStatus(c.Request.Context(), actor, id, models.TaskStatus(req.Status))
	if err != nil {
		log.Printf("[task][status][deny] id=%d by=%d to=%d: %v", id, actor.ID, req.Status, err)
		abortWithError(c, err)
		return
	}
	log.Printf("[task][status][ok] id=%d new=%q", id, task.Status.Label())
	respond(c, http.StatusOK, "Task status updated successfully", newTaskResource(task, nil))

	h.notifyAssignee(c, task, "Task status changed to "+task.Status.Label())
}

// POST /tasks/:id/assign { "user_id": 2 }
func (h *TaskHandler) Assign(c *gin.Context) {
	actor := getActor(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	task, err := h.service.AssignUser(c.Request.Context(), actor, id, req.UserID)
	if err != nil {
		log.Printf("[task][assign][deny] id=%d by=%d target=%d: %v", id, actor.ID, req.UserID, err)
		abortWithError(c, err)
		return
	}
	log.Printf("[task][assign][ok] id=%d assignee=%d", id, req.UserID)
	respond(c, http.StatusOK, "Task assigned successfully", newTaskResource(task, h.lookupAssignee(c, task)))

	h.notifyAssignee(c, task, "You have been assigned a task")
}

// POST /tasks/:id/dependencies { "dependency_ids": [2, 3] }
func (h *TaskHandler) AddDependencies(c *gin.Context) {
	actor := getActor(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		DependencyIDs []int64 `json:"dependency_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	task, err := h.deps.AddDependencies(c.Request.Context(), actor, id, req.DependencyIDs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	log.Printf("[task][deps][add][ok] id=%d count=%d", id, len(req.DependencyIDs))
	respond(c, http.StatusOK, "Dependency added successfully", newTaskResource(task, nil))
}

// DELETE /tasks/:id/dependencies/:dependency_id
func (h *TaskHandler) RemoveDependency(c *gin.Context) {
	actor := getActor(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	depID, ok := parseIDParam(c, "dependency_id")
	if !ok {
		return
	}

	task, err := h.deps.RemoveDependency(c.Request.Context(), actor, id, depID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	log.Printf("[task][deps][remove][ok] id=%d dep=%d", id, depID)
	respond(c, http.StatusOK, "Dependency removed successfully", newTaskResource(task, nil))
}

// ---- helpers ----

func (h *TaskHandler) lookupAssignee(c *gin.Context, t *models.Task) *models.User {
	if h.users == nil || t == nil || t.AssigneeID == nil {
		return nil
	}
	user, err := h.users.FindByID(c.Request.Context(), *t.AssigneeID)
	if err != nil {
		log.Printf("[task][assignee][err] id=%d: %v", *t.AssigneeID, err)
		return nil
	}
	return user
}

func (h *TaskHandler) notifyAssignee(c *gin.Context, t *models.Task, prefix string) {
	if h.tg == nil || h.users == nil || t == nil || t.AssigneeID == nil {
		return
	}
	chatID, err := h.users.GetTelegramChatID(c.Request.Context(), *t.AssigneeID)
	if err != nil {
		log.Printf("[task][notify][err] assignee=%d: %v", *t.AssigneeID, err)
		return
	}
	if chatID == 0 {
		return
	}
	_ = h.tg.SendMessage(chatID, formatTaskMessage(prefix, t))
}

func formatTaskMessage(prefix string, t *models.Task) string {
	return prefix + "\n" +
		"<b>" + html.EscapeString(t.Title) + "</b>\n" +
		"Status: <code>" + t.Status.Label() + "</code>\n" +
		"Due: <code>" + t.DueDate.Format(timeLayout) + "</code>"
}
