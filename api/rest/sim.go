package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/world"
	mw "github.com/kasuganosora/rpgcore/server/middleware"
	"github.com/kasuganosora/rpgcore/server/resource"
)

var (
	errAIControlled = errors.New("actor is AI controlled")
	errDead         = errors.New("actor is dead")
	errRejected     = errors.New("command rejected")
)

// WeaponCatalog looks up weapon definitions by ID.
type WeaponCatalog interface {
	WeaponByID(id string) *resource.Weapon
}

// SimHandler exposes the running world: read-only views plus the
// commands a player would issue with the mouse.
type SimHandler struct {
	world   *world.World
	weapons WeaponCatalog
	logger  *zap.Logger
}

func NewSimHandler(w *world.World, weapons WeaponCatalog, logger *zap.Logger) *SimHandler {
	return &SimHandler{world: w, weapons: weapons, logger: logger}
}

// World handles GET /api/world.
func (h *SimHandler) World(c *gin.Context) {
	c.JSON(http.StatusOK, h.world.Snapshot())
}

// ListActors handles GET /api/actors.
func (h *SimHandler) ListActors(c *gin.Context) {
	snap := h.world.Snapshot()
	c.JSON(http.StatusOK, gin.H{"actors": snap.Actors, "count": len(snap.Actors), "time": snap.Time})
}

// Actor handles GET /api/actors/:id.
func (h *SimHandler) Actor(c *gin.Context) {
	view, err := h.world.View(core.ActorID(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type attackRequest struct {
	TargetID string `json:"target_id" binding:"required"`
}

// Attack handles POST /api/actors/:id/attack.
func (h *SimHandler) Attack(c *gin.Context) {
	var req attackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.command(c, "attack", func(a *world.Actor) error {
		if !a.Commands().InteractWithCombat(core.ActorID(req.TargetID)) {
			return errRejected
		}
		return nil
	})
}

type moveRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y float64  `json:"y"`
	Z *float64 `json:"z" binding:"required"`
}

// Move handles POST /api/actors/:id/move.
func (h *SimHandler) Move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dest := core.Vec3{X: *req.X, Y: req.Y, Z: *req.Z}
	h.command(c, "move", func(a *world.Actor) error {
		if !a.Commands().InteractWithMovement(dest) {
			return errRejected
		}
		return nil
	})
}

type equipRequest struct {
	WeaponID string `json:"weapon_id" binding:"required"`
}

// Equip handles POST /api/actors/:id/equip.
func (h *SimHandler) Equip(c *gin.Context) {
	var req equipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	spec := h.weapons.WeaponByID(req.WeaponID)
	if spec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown weapon"})
		return
	}
	h.command(c, "equip", func(a *world.Actor) error {
		if a.Health().IsDead() {
			return errDead
		}
		a.Fighter().EquipWeapon(spec)
		return nil
	})
}

// command runs fn against a player-controlled actor under the world lock
// and answers with the actor's state afterwards.
func (h *SimHandler) command(c *gin.Context, name string, fn func(a *world.Actor) error) {
	id := core.ActorID(c.Param("id"))
	var view world.ActorView
	err := h.world.Exec(func() error {
		a, err := h.world.Actor(id)
		if err != nil {
			return err
		}
		if a.Commands() == nil {
			return errAIControlled
		}
		if err := fn(a); err != nil {
			return err
		}
		view = a.View()
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Debug("command accepted",
		zap.String("command", name),
		zap.String("actor_id", id.String()),
		zap.String("operator", mw.GetOperator(c)),
		zap.String("trace_id", mw.GetTraceID(c)),
	)
	c.JSON(http.StatusOK, view)
}

func (h *SimHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, world.ErrActorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "actor not found"})
	case errors.Is(err, errAIControlled), errors.Is(err, errDead):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("world command failed", zap.Error(err), zap.String("trace_id", mw.GetTraceID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
