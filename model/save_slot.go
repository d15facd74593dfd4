package model

import (
	"time"

	"gorm.io/datatypes"
)

// SaveSlot stores one named save: a JSON object keyed by actor ID, each
// value holding that actor's captured component states.
type SaveSlot struct {
	Slot      string         `gorm:"primaryKey;size:64" json:"slot"`
	State     datatypes.JSON `json:"state"`
	Actors    int            `json:"actors"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `gorm:"index:idx_save_updated" json:"updated_at"`
}

func (SaveSlot) TableName() string { return "save_slots" }
