package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shop-backend/internal/shared"
	"shop-backend/internal/shared/response"
	"shop-backend/pkg/jwt"
)

const (
	ContextKeyUserID = "userID"
	ContextKeyRole   = "role"
	ContextKeyEmail  = "email"
)

// AuthMiddleware validates the bearer access token and stores the principal in the context.
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid user ID in token")
			return
		}

		role := shared.Role(strings.ToUpper(claims.Role))
		if !role.IsValid() {
			response.Unauthorized(c, "invalid role in token")
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyRole, role)
		c.Set(ContextKeyEmail, claims.Email)
		c.Next()
	}
}

// RequireRoles allows the request only when the session role is in roles.
func RequireRoles(roles ...shared.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "insufficient permissions")
	}
}

func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func RoleFromContext(c *gin.Context) (shared.Role, bool) {
	v, ok := c.Get(ContextKeyRole)
	if !ok {
		return "", false
	}
	role, ok := v.(shared.Role)
	return role, ok
}

// ActorFromContext describes the caller for audit entries.
func ActorFromContext(c *gin.Context) (shared.Actor, bool) {
	id, ok := UserIDFromContext(c)
	if !ok {
		return shared.Actor{}, false
	}
	role, _ := RoleFromContext(c)
	return shared.Actor{
		ID:        id.String(),
		Role:      role,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}, true
}
