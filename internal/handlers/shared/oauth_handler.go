package handlers

import (
	"net/http"

	"tricy/internal/services"
	"tricy/internal/utils"

	"github.com/gin-gonic/gin"
)

type OAuthHandler struct {
	oauthService services.OAuthService
}

func NewOAuthHandler(oauthService services.OAuthService) *OAuthHandler {
	return &OAuthHandler{oauthService: oauthService}
}

// Begin returns the provider URL the client should open.
func (h *OAuthHandler) Begin(c *gin.Context) {
	authURL, err := h.oauthService.Begin(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Authorization URL created", gin.H{"auth_url": authURL})
}

func (h *OAuthHandler) Callback(c *gin.Context) {
	if providerErr := c.Query("error"); providerErr != "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, string(utils.KindUnauthorized), "sign-in cancelled: "+providerErr)
		return
	}

	response, err := h.oauthService.Complete(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}
