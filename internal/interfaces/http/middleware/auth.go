package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"planpay/internal/infrastructure/auth"
	"planpay/internal/shared/logger"
	"planpay/internal/shared/utils"
)

// ContextKeyOperatorID is where RequireAuth stores the verified operator id.
const ContextKeyOperatorID = "operator_id"

// ContextKeyOperatorRole is where RequireAuth stores the verified role.
const ContextKeyOperatorRole = "operator_role"

type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		if claims.TokenType != auth.TokenTypeAccess {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid token type")
			c.Abort()
			return
		}

		c.Set(ContextKeyOperatorID, claims.OperatorID)
		c.Set(ContextKeyOperatorRole, string(claims.Role))

		c.Next()
	}
}

// RequireAdmin gates the endpoints that move money or mutate schedules.
// Read-only tokens may still hit list and export endpoints.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextKeyOperatorRole)
		if !exists || role != string(auth.RoleAdmin) {
			utils.ErrorResponse(c, http.StatusForbidden, "admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
