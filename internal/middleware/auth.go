package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skincare/internal/domain"
	"skincare/internal/pkg/jwt"
	"skincare/internal/pkg/response"
)

const ContextActor = "actor"

// JWTAuth validates the bearer token and stores the caller's actor in the
// gin context (and user_id / role for logging).
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			c.Abort()
			return
		}

		tokenStr, ok := strings.CutPrefix(h, "Bearer ")
		tokenStr = strings.TrimSpace(tokenStr)
		if !ok || tokenStr == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Invalid Authorization header")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		actor := claims.Actor()
		c.Set(ContextActor, actor)
		c.Set("user_id", actor.ID)
		c.Set("role", string(actor.Role))

		c.Next()
	}
}

// OptionalJWTAuth sets the actor when a valid token is present and lets
// anonymous requests through.
func OptionalJWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
			if claims, err := jwtService.ValidateToken(strings.TrimSpace(tokenStr)); err == nil {
				actor := claims.Actor()
				c.Set(ContextActor, actor)
				c.Set("user_id", actor.ID)
				c.Set("role", string(actor.Role))
			}
		}
		c.Next()
	}
}

func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}
