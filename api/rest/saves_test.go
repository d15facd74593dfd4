package rest_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/api/rest"
	"github.com/kasuganosora/rpgcore/server/audit"
	"github.com/kasuganosora/rpgcore/server/game/saving"
	"github.com/kasuganosora/rpgcore/server/model"
	"github.com/kasuganosora/rpgcore/server/scheduler"
	"github.com/kasuganosora/rpgcore/server/testutil"
)

func TestSaveLoadDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sim, _ := newTestWorld(t)
	auditSvc := audit.New(db, zap.NewNop())
	h := rest.NewSaveHandler(sim, saving.NewSystem(saving.NewDBStore(db), zap.NewNop()), auditSvc, zap.NewNop())

	r := gin.New()
	r.POST("/api/saves/:slot", h.Save)
	r.POST("/api/saves/:slot/load", h.Load)
	r.DELETE("/api/saves/:slot", h.Delete)

	w := doJSON(r, http.MethodPost, "/api/saves/bad.slot", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/saves/quick/load", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, "/api/saves/quick", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode[map[string]any](t, w)["actors"])

	require.NoError(t, sim.Exec(func() error {
		hero, err := sim.Actor("hero")
		if err != nil {
			return err
		}
		hero.Health().TakeDamage(nil, 25)
		return nil
	}))

	w = doJSON(r, http.MethodPost, "/api/saves/quick/load", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view, err := sim.View("hero")
	require.NoError(t, err)
	assert.Equal(t, 100.0, view.Health)

	w = doJSON(r, http.MethodDelete, "/api/saves/quick", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodDelete, "/api/saves/quick", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	auditSvc.Stop(context.Background())
	var logs []model.AuditLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Equal(t, []string{
		audit.ActionLoad, audit.ActionSave, audit.ActionLoad, audit.ActionDelete, audit.ActionDelete,
	}, actions)
	assert.NotEmpty(t, logs[0].Error)
	assert.Equal(t, "quick", logs[1].Slot)
}

func TestAdminMetrics(t *testing.T) {
	sim, _ := newTestWorld(t)
	sched := scheduler.New(zap.NewNop())
	t.Cleanup(sched.Stop)
	sched.AddTicker("autosave", time.Hour, func(context.Context) error { return nil })
	h := rest.NewAdminHandler(sim, sched)

	r := gin.New()
	r.GET("/api/admin/metrics", h.Metrics)
	w := doJSON(r, http.MethodGet, "/api/admin/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[map[string]any](t, w)
	assert.EqualValues(t, 3, m["actors"])
	assert.EqualValues(t, 1, m["ai_controlled"])
	assert.Equal(t, []any{"autosave"}, m["scheduler_tasks"])
}
