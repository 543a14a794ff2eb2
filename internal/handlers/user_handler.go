package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	actor := getActor(c)

	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     int    `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	user, err := h.service.Create(c.Request.Context(), actor, services.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.UserRole(req.Role),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	log.Printf("[user][create][ok] id=%d role=%q by=%d", user.ID, user.Role.Label(), actor.ID)
	respond(c, http.StatusCreated, "User created successfully", newUserResource(user))
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	actor := getActor(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	users, err := h.service.List(c.Request.Context(), actor, limit, (page-1)*limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]userResource, 0, len(users))
	for i := range users {
		out = append(out, *newUserResource(&users[i]))
	}
	respond(c, http.StatusOK, "Users retrieved successfully", out)
}
