package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/services"
)

// respond writes the response envelope used across all endpoints.
func respond(c *gin.Context, code int, msg string, data interface{}) {
	body := gin.H{"message": msg, "status": code}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

// getActor reads the authenticated identity placed in the context by the
// auth middleware.
func getActor(c *gin.Context) models.Actor {
	var actor models.Actor
	if v, ok := c.Get("user_id"); ok {
		switch t := v.(type) {
		case int64:
			actor.ID = t
		case int:
			actor.ID = int64(t)
		case float64:
			actor.ID = int64(t)
		}
	}
	if v, ok := c.Get("role"); ok {
		if r, ok := v.(int); ok {
			actor.Role = models.UserRole(r)
		}
	}
	return actor
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		respond(c, http.StatusBadRequest, "Invalid id", nil)
		return 0, false
	}
	return id, true
}

// abortWithError maps a service error kind to an HTTP status. Validation
// failures carry their per-item messages; everything else carries the
// kind's user-facing message.
func abortWithError(c *gin.Context, err error) {
	var verrs services.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"status":  http.StatusUnprocessableEntity,
			"errors":  []string(verrs),
		})
	case errors.Is(err, services.ErrNotFound):
		respond(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrNotAuthorized):
		respond(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidTransition):
		respond(c, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, services.ErrBlockedByDependencies):
		respond(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrConflict):
		respond(c, http.StatusConflict, err.Error(), nil)
	default:
		log.Printf("[http][err] %v", err)
		respond(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
