package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fantasy-casino-backend/internal/models"
	"fantasy-casino-backend/internal/services"
)

type AuthHandler struct {
	economyService *services.EconomyService
	jwtService     *services.JWTService
}

func NewAuthHandler(economyService *services.EconomyService, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{
		economyService: economyService,
		jwtService:     jwtService,
	}
}

// Login provisions the account on first sight, credits the start bonus
// and returns a signed token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, created, err := h.economyService.EnsureAccount(c.Request.Context(), req.UserID, req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"created": created,
		"user":    user,
	})
}
