package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasuganosora/rpgcore/server/game/world"
	"github.com/kasuganosora/rpgcore/server/scheduler"
)

// AdminHandler reports on the running server. Routes sit behind the
// IPWhitelist middleware.
type AdminHandler struct {
	world *world.World
	sched *scheduler.Scheduler
}

func NewAdminHandler(w *world.World, sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{world: w, sched: sched}
}

// Metrics handles GET /api/admin/metrics.
func (h *AdminHandler) Metrics(c *gin.Context) {
	snap := h.world.Snapshot()
	alive, ai := 0, 0
	for _, a := range snap.Actors {
		if !a.Dead {
			alive++
		}
		if a.AIState != "" {
			ai++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"sim_time":        snap.Time,
		"actors":          len(snap.Actors),
		"alive":           alive,
		"ai_controlled":   ai,
		"projectiles":     len(snap.Projectiles),
		"effects":         len(snap.Effects),
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

// ListSchedulerTasks handles GET /api/admin/scheduler.
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.ListTickers()})
}
