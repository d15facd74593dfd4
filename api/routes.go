package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kasuganosora/rpgcore/server/api/rest"
	"github.com/kasuganosora/rpgcore/server/api/sse"
	"github.com/kasuganosora/rpgcore/server/audit"
	"github.com/kasuganosora/rpgcore/server/cache"
	"github.com/kasuganosora/rpgcore/server/config"
	"github.com/kasuganosora/rpgcore/server/game/saving"
	"github.com/kasuganosora/rpgcore/server/game/world"
	mw "github.com/kasuganosora/rpgcore/server/middleware"
	"github.com/kasuganosora/rpgcore/server/scheduler"
)

// Deps is everything the HTTP surface talks to.
type Deps struct {
	World    *world.World
	Weapons  rest.WeaponCatalog
	Saves    *saving.System
	Audit    *audit.Service
	Cache    cache.Cache
	PubSub   cache.PubSub
	Sched    *scheduler.Scheduler
	Security config.SecurityConfig
	Logger   *zap.Logger
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(d Deps) (*gin.Engine, error) {
	adminOnly, err := mw.IPWhitelist(d.Security.AdminCIDRs)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(d.Logger), mw.Recovery(d.Logger))
	r.Use(mw.RateLimit(rate.Limit(d.Security.RateLimitRPS), d.Security.RateLimitBurst))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := rest.NewAuthHandler(d.Cache, d.Security)
	simH := rest.NewSimHandler(d.World, d.Weapons, d.Logger)
	saveH := rest.NewSaveHandler(d.World, d.Saves, d.Audit, d.Logger)
	adminH := rest.NewAdminHandler(d.World, d.Sched)
	auth := mw.Auth(d.Security, d.Cache)

	g := r.Group("/api")
	{
		authG := g.Group("/auth")
		authG.POST("/token", adminOnly, authH.Token)
		authG.POST("/logout", auth, authH.Logout)

		g.GET("/world", auth, simH.World)

		actorsG := g.Group("/actors", auth)
		actorsG.GET("", simH.ListActors)
		actorsG.GET("/:id", simH.Actor)
		actorsG.POST("/:id/attack", simH.Attack)
		actorsG.POST("/:id/move", simH.Move)
		actorsG.POST("/:id/equip", simH.Equip)

		savesG := g.Group("/saves", auth)
		savesG.POST("/:slot", saveH.Save)
		savesG.POST("/:slot/load", saveH.Load)
		savesG.DELETE("/:slot", saveH.Delete)

		adminG := g.Group("/admin", adminOnly, auth)
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	r.GET("/sse", sse.NewHandler(d.PubSub, d.Cache, d.Security, d.Logger).ServeSSE)
	return r, nil
}
