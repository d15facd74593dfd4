package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kasuganosora/rpgcore/server/cache"
	"github.com/kasuganosora/rpgcore/server/config"
)

const OperatorKey = "operator"

// SessionKey is the cache key marking tokenID as a live session.
func SessionKey(tokenID string) string { return "session:" + tokenID }

// VerifySession parses tokenStr and checks that its session has not been
// revoked. Used by Auth and by the SSE handler, which takes the token from
// the query string.
func VerifySession(ctx context.Context, sec config.SecurityConfig, c cache.Cache, tokenStr string) (*Claims, bool) {
	claims, err := ParseToken(tokenStr, sec.JWTSecret)
	if err != nil {
		return nil, false
	}
	cacheCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	exists, err := c.Exists(cacheCtx, SessionKey(claims.ID))
	if err != nil || !exists {
		return nil, false
	}
	return claims, true
}

// Auth validates the Bearer token and its cached session.
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, ok := VerifySession(ctx.Request.Context(), sec, c, strings.TrimPrefix(header, "Bearer "))
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}
		ctx.Set(OperatorKey, claims.Subject)
		ctx.Next()
	}
}

// GetOperator returns the authenticated operator name, or "".
func GetOperator(c *gin.Context) string {
	return c.GetString(OperatorKey)
}
