package middleware

import (
	"context"
	"strings"

	"tricy/internal/models"
	"tricy/internal/utils"
	"tricy/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TokenValidator turns a bearer token into claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

// AuthRequired validates the bearer token and sets user context. Browsers
// cannot set headers on websocket upgrades, so a token query parameter is
// accepted as well.
func AuthRequired(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			utils.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Query("token")
}

// AdminRequired middleware ensures user is an admin
func AdminRequired() gin.HandlerFunc {
	return RoleRequired(models.UserRoleAdmin)
}

// DriverRequired lets drivers and admins through.
func DriverRequired() gin.HandlerFunc {
	return RoleRequired(models.UserRoleDriver, models.UserRoleAdmin)
}

func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.UserRole(c.GetString("user_role"))
		if role == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.ForbiddenResponse(c)
		c.Abort()
	}
}

// SelfOrAdmin restricts a route to the user named by the path parameter, or
// an admin.
func SelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		if userID != c.Param(param) && models.UserRole(c.GetString("user_role")) != models.UserRoleAdmin {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
