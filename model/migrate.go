package model

import "gorm.io/gorm"

var allModels = []any{
	&SaveSlot{},
	&AuditLog{},
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}
