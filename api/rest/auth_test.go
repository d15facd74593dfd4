package rest_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kasuganosora/rpgcore/server/api/rest"
	"github.com/kasuganosora/rpgcore/server/config"
	mw "github.com/kasuganosora/rpgcore/server/middleware"
	"github.com/kasuganosora/rpgcore/server/testutil"
)

func newAuthRouter(t *testing.T, adminKey string) *gin.Engine {
	t.Helper()
	c, _ := testutil.SetupTestCache(t)
	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: time.Hour}
	if adminKey != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.MinCost)
		require.NoError(t, err)
		sec.AdminKeyHash = string(hash)
	}
	h := rest.NewAuthHandler(c, sec)
	r := gin.New()
	r.POST("/api/auth/token", h.Token)
	r.POST("/api/auth/logout", mw.Auth(sec, c), h.Logout)
	r.GET("/api/ping", mw.Auth(sec, c), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"operator": mw.GetOperator(ctx)})
	})
	return r
}

func TestToken_Disabled(t *testing.T) {
	r := newAuthRouter(t, "")
	w := doJSON(r, http.MethodPost, "/api/auth/token", map[string]string{"admin_key": "anything"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestToken_WrongKey(t *testing.T) {
	r := newAuthRouter(t, "letmein")
	w := doJSON(r, http.MethodPost, "/api/auth/token", map[string]string{"admin_key": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/token", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToken_IssueUseRevoke(t *testing.T) {
	r := newAuthRouter(t, "letmein")
	w := doJSON(r, http.MethodPost, "/api/auth/token", map[string]string{"admin_key": "letmein", "operator": "ops"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]any](t, w)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "ops", resp["operator"])

	bearer := []string{"Authorization", "Bearer " + token}
	w = doJSON(r, http.MethodGet, "/api/ping", nil, bearer...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops", decode[map[string]string](t, w)["operator"])

	w = doJSON(r, http.MethodPost, "/api/auth/logout", nil, bearer...)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/ping", nil, bearer...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToken_DefaultOperator(t *testing.T) {
	r := newAuthRouter(t, "letmein")
	w := doJSON(r, http.MethodPost, "/api/auth/token", map[string]string{"admin_key": "letmein"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode[map[string]any](t, w)["operator"])
}
