package handlers

import (
	"tricy/internal/models"
	"tricy/internal/services"
	"tricy/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates an account and returns its id
func (h *AuthHandler) Register(c *gin.Context) {
	var request models.CreateUserRequest
	if !bindJSON(c, &request) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "User registered successfully", gin.H{"user_id": user.UserID})
}

// Login exchanges credentials for an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var request models.LoginRequest
	if !bindJSON(c, &request) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}
