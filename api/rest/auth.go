package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kasuganosora/rpgcore/server/cache"
	"github.com/kasuganosora/rpgcore/server/config"
	mw "github.com/kasuganosora/rpgcore/server/middleware"
)

// AuthHandler exchanges the admin key for operator tokens.
type AuthHandler struct {
	cache cache.Cache
	sec   config.SecurityConfig
}

func NewAuthHandler(c cache.Cache, sec config.SecurityConfig) *AuthHandler {
	return &AuthHandler{cache: c, sec: sec}
}

type tokenRequest struct {
	AdminKey string `json:"admin_key" binding:"required,max=128"`
	Operator string `json:"operator" binding:"max=64"`
}

// Token handles POST /api/auth/token. The key is checked against the
// bcrypt hash in security.admin_key_hash; with no hash configured the
// endpoint is disabled.
func (h *AuthHandler) Token(c *gin.Context) {
	if h.sec.AdminKeyHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "token endpoint disabled: set security.admin_key_hash"})
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.sec.AdminKeyHash), []byte(req.AdminKey)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	operator := req.Operator
	if operator == "" {
		operator = "admin"
	}

	token, err := mw.GenerateToken(operator, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	claims, err := mw.ParseToken(token, h.sec.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.cache.Set(ctx, mw.SessionKey(claims.ID), operator, h.sec.JWTTTLH); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"operator":   operator,
		"expires_at": claims.ExpiresAt.Time,
	})
}

// Logout handles POST /api/auth/logout by dropping the token's session.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, err := mw.ParseToken(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "), h.sec.JWTSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	_ = h.cache.Del(ctx, mw.SessionKey(claims.ID))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
