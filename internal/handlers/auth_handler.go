package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"taskboard/internal/authz"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/services"
	"taskboard/internal/utils"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService

	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthHandler(userService services.UserService, authService services.AuthService, jwtSecret []byte, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		jwtSecret:   jwtSecret,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

// @Summary      Log in
// @Description  Authenticates a user and returns access and refresh tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	email := strings.TrimSpace(req.Email)

	user, err := h.userService.GetByEmail(c.Request.Context(), email)
	if err != nil || user == nil {
		log.Printf("[auth][login][deny] email=%q not found", email)
		respond(c, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	if err := h.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		log.Printf("[auth][login][deny] userID=%d bad password", user.ID)
		respond(c, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	accessToken, err := h.signAccessToken(user)
	if err != nil {
		respond(c, http.StatusInternalServerError, "Failed to generate access token", nil)
		return
	}

	refreshToken, err := utils.NewRefreshToken(32)
	if err != nil {
		respond(c, http.StatusInternalServerError, "Failed to generate refresh token", nil)
		return
	}
	if err := h.userService.StoreRefresh(c.Request.Context(), user.ID, refreshToken, time.Now().Add(h.refreshTTL)); err != nil {
		respond(c, http.StatusInternalServerError, "Failed to store refresh token", nil)
		return
	}

	log.Printf("[auth][login][ok] userID=%d role=%q", user.ID, user.Role.Label())
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"status":  http.StatusOK,
		"data": gin.H{
			"user": newUserResource(user),
			"tokens": gin.H{
				"access_token":  accessToken,
				"refresh_token": refreshToken,
			},
		},
	})
}

// POST /refresh { "refresh_token": "..." }
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	old := strings.TrimSpace(req.RefreshToken)

	user, err := h.userService.GetByRefreshToken(c.Request.Context(), old)
	if err != nil || user == nil || user.RefreshExpiresAt == nil || user.RefreshRevoked {
		respond(c, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}
	if time.Now().After(*user.RefreshExpiresAt) {
		respond(c, http.StatusUnauthorized, "Refresh token expired", nil)
		return
	}

	newToken, err := utils.NewRefreshToken(32)
	if err != nil {
		respond(c, http.StatusInternalServerError, "Failed to rotate refresh token", nil)
		return
	}
	rotated, err := h.userService.RotateRefresh(c.Request.Context(), old, newToken, time.Now().Add(h.refreshTTL))
	if err != nil || rotated == nil {
		respond(c, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}

	accessToken, err := h.signAccessToken(rotated)
	if err != nil {
		respond(c, http.StatusInternalServerError, "Failed to generate access token", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": newToken,
	})
}

// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	actor := getActor(c)
	if err := h.userService.RevokeRefresh(c.Request.Context(), actor.ID); err != nil {
		respond(c, http.StatusInternalServerError, "Failed to log out", nil)
		return
	}
	log.Printf("[auth][logout][ok] userID=%d", actor.ID)
	respond(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) signAccessToken(user *models.User) (string, error) {
	claims := &middleware.Claims{
		UserID:    user.ID,
		Role:      user.Role,
		Abilities: authz.Abilities(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
