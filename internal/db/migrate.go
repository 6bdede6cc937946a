package db

import (
	"fmt"

	"github.com/grimfell/muster/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.List{},
		&models.Fighter{},
		&models.Assignment{},
		&models.AssignmentProfile{},
		&models.Equipment{},
		&models.WeaponProfile{},
		&models.FighterType{},
		&models.EquipmentListItem{},
		&models.ListAction{},
		&models.RefChange{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// ContentPack is a deserialized reference-data bundle seeded into the
// content tables on init.
type ContentPack struct {
	Equipment      []models.Equipment         `yaml:"equipment"`
	WeaponProfiles []models.WeaponProfile     `yaml:"weapon_profiles"`
	FighterTypes   []models.FighterType       `yaml:"fighter_types"`
	EquipmentLists []models.EquipmentListItem `yaml:"equipment_lists"`
}

// SeedContent upserts reference-data rows. Seeding goes through the normal
// upsert path only; cost changes made by re-seeding do NOT invalidate
// caches — use the roster reference-data setters for live edits.
func SeedContent(db *gorm.DB, pack ContentPack) error {
	for _, e := range pack.Equipment {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "category", "cost"}),
		}).Create(&e)
		if result.Error != nil {
			return fmt.Errorf("db: seed equipment %q: %w", e.ID, result.Error)
		}
	}
	for _, wp := range pack.WeaponProfiles {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"equipment_id", "name", "cost"}),
		}).Create(&wp)
		if result.Error != nil {
			return fmt.Errorf("db: seed weapon profile %q: %w", wp.ID, result.Error)
		}
	}
	for _, ft := range pack.FighterTypes {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "base_cost"}),
		}).Create(&ft)
		if result.Error != nil {
			return fmt.Errorf("db: seed fighter type %q: %w", ft.ID, result.Error)
		}
	}
	for _, eli := range pack.EquipmentLists {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "fighter_type_id"}, {Name: "equipment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"cost"}),
		}).Create(&eli)
		if result.Error != nil {
			return fmt.Errorf("db: seed equipment list %s/%s: %w", eli.FighterTypeID, eli.EquipmentID, result.Error)
		}
	}
	return nil
}
