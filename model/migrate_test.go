package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/kasuganosora/rpgcore/server/model"
	"github.com/kasuganosora/rpgcore/server/testutil"
)

func TestAutoMigrate_SaveSlot(t *testing.T) {
	db := testutil.SetupTestDB(t)

	slot := &model.SaveSlot{Slot: "quick", State: datatypes.JSON(`{"hero":{"health":50}}`), Actors: 1}
	require.NoError(t, db.Create(slot).Error)

	var found model.SaveSlot
	require.NoError(t, db.First(&found, "slot = ?", "quick").Error)
	assert.JSONEq(t, `{"hero":{"health":50}}`, string(found.State))
	assert.False(t, found.UpdatedAt.IsZero())
}

func TestAutoMigrate_AuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	entry := &model.AuditLog{Action: "death", ActorID: "g1", SimTime: 12.5, Detail: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(entry).Error)
	assert.Positive(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestAutoMigrate_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assert.NoError(t, model.AutoMigrate(db))
}
