package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/audit"
	"github.com/kasuganosora/rpgcore/server/game/saving"
	"github.com/kasuganosora/rpgcore/server/game/world"
	mw "github.com/kasuganosora/rpgcore/server/middleware"
)

const maxSlotLen = 64

// SaveHandler drives the saving system over HTTP. Every call is audited.
type SaveHandler struct {
	world  *world.World
	saves  *saving.System
	audit  *audit.Service
	logger *zap.Logger
}

// NewSaveHandler creates a SaveHandler. auditSvc may be nil.
func NewSaveHandler(w *world.World, saves *saving.System, auditSvc *audit.Service, logger *zap.Logger) *SaveHandler {
	return &SaveHandler{world: w, saves: saves, audit: auditSvc, logger: logger}
}

// validSlot accepts 1-64 characters of [A-Za-z0-9_-].
func validSlot(slot string) bool {
	if slot == "" || len(slot) > maxSlotLen {
		return false
	}
	for _, r := range slot {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func (h *SaveHandler) slot(c *gin.Context) (string, bool) {
	slot := c.Param("slot")
	if !validSlot(slot) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot name"})
		return "", false
	}
	return slot, true
}

// Save handles POST /api/saves/:slot.
func (h *SaveHandler) Save(c *gin.Context) {
	slot, ok := h.slot(c)
	if !ok {
		return
	}
	n, err := h.saves.Save(c.Request.Context(), slot, h.world)
	h.record(c, audit.ActionSave, slot, n, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot, "actors": n})
}

// Load handles POST /api/saves/:slot/load. Restore errors of individual
// components are reported alongside the count of restored actors.
func (h *SaveHandler) Load(c *gin.Context) {
	slot, ok := h.slot(c)
	if !ok {
		return
	}
	n, err := h.saves.Load(c.Request.Context(), slot, h.world)
	h.record(c, audit.ActionLoad, slot, n, err)
	switch {
	case errors.Is(err, saving.ErrSlotNotFound):
		h.fail(c, err)
	case err != nil && n > 0:
		c.JSON(http.StatusMultiStatus, gin.H{"slot": slot, "actors": n, "error": err.Error()})
	case err != nil:
		h.fail(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"slot": slot, "actors": n})
	}
}

// Delete handles DELETE /api/saves/:slot.
func (h *SaveHandler) Delete(c *gin.Context) {
	slot, ok := h.slot(c)
	if !ok {
		return
	}
	err := h.saves.Delete(c.Request.Context(), slot)
	h.record(c, audit.ActionDelete, slot, 0, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *SaveHandler) record(c *gin.Context, action, slot string, actors int, err error) {
	if h.audit == nil {
		return
	}
	e := audit.Entry{
		TraceID: mw.GetTraceID(c),
		Action:  action,
		Slot:    slot,
		SimTime: h.world.Now(),
		Detail:  gin.H{"operator": mw.GetOperator(c), "actors": actors},
		IP:      c.ClientIP(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	h.audit.Log(e)
}

func (h *SaveHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, saving.ErrSlotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "save slot not found"})
		return
	}
	h.logger.Error("save operation failed", zap.Error(err), zap.String("trace_id", mw.GetTraceID(c)))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
