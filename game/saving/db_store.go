package saving

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kasuganosora/rpgcore/server/model"
)

// DBStore keeps slots in the save_slots table.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore { return &DBStore{db: db} }

func (s *DBStore) Load(ctx context.Context, slot string) (State, error) {
	var row model.SaveSlot
	err := s.db.WithContext(ctx).Where("slot = ?", slot).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	state := State{}
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, err
	}
	return state, nil
}

// Save inserts or replaces the slot.
func (s *DBStore) Save(ctx context.Context, slot string, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	row := &model.SaveSlot{Slot: slot, State: datatypes.JSON(data), Actors: len(state)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "actors", "updated_at"}),
	}).Create(row).Error
}

func (s *DBStore) Delete(ctx context.Context, slot string) error {
	res := s.db.WithContext(ctx).Where("slot = ?", slot).Delete(&model.SaveSlot{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}
