package handlers

import (
	"tricy/internal/utils"
	"tricy/internal/validators"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the body into req and writes a 400 with per-field
// details when that fails.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ValidationErrorResponse(c, validators.FromError(err).Details())
		return false
	}
	return true
}
