package roster

import (
	"errors"
	"fmt"

	"github.com/grimfell/muster/internal/dirty"
	"github.com/grimfell/muster/internal/models"
	"gorm.io/gorm"
)

// Reference-data cost setters. Each persists the new cost and enqueues an
// invalidation for the sweeper; dependent caches go stale eventually, not
// inline, trading freshness for edit throughput.

// SetEquipmentCost updates an equipment item's base cost.
func SetEquipmentCost(db *gorm.DB, equipmentID string, newCost int) error {
	if newCost < 0 {
		return fmt.Errorf("roster: equipment cost must be non-negative")
	}
	var eq models.Equipment
	if err := db.Where("id = ?", equipmentID).First(&eq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("roster: equipment not found: %s", equipmentID)
		}
		return fmt.Errorf("roster: get equipment %s: %w", equipmentID, err)
	}
	if err := db.Model(&models.Equipment{}).Where("id = ?", equipmentID).
		Update("cost", newCost).Error; err != nil {
		return fmt.Errorf("roster: update equipment cost: %w", err)
	}
	return dirty.Enqueue(db, dirty.KindEquipment, equipmentID, eq.Cost, newCost)
}

// SetWeaponProfileCost updates a weapon profile's cost.
func SetWeaponProfileCost(db *gorm.DB, profileID string, newCost int) error {
	if newCost < 0 {
		return fmt.Errorf("roster: weapon profile cost must be non-negative")
	}
	var wp models.WeaponProfile
	if err := db.Where("id = ?", profileID).First(&wp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("roster: weapon profile not found: %s", profileID)
		}
		return fmt.Errorf("roster: get weapon profile %s: %w", profileID, err)
	}
	if err := db.Model(&models.WeaponProfile{}).Where("id = ?", profileID).
		Update("cost", newCost).Error; err != nil {
		return fmt.Errorf("roster: update weapon profile cost: %w", err)
	}
	return dirty.Enqueue(db, dirty.KindWeaponProfile, profileID, wp.Cost, newCost)
}

// SetFighterTypeBaseCost updates a fighter type's base cost.
func SetFighterTypeBaseCost(db *gorm.DB, typeID string, newCost int) error {
	if newCost < 0 {
		return fmt.Errorf("roster: base cost must be non-negative")
	}
	var ft models.FighterType
	if err := db.Where("id = ?", typeID).First(&ft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("roster: fighter type not found: %s", typeID)
		}
		return fmt.Errorf("roster: get fighter type %s: %w", typeID, err)
	}
	if err := db.Model(&models.FighterType{}).Where("id = ?", typeID).
		Update("base_cost", newCost).Error; err != nil {
		return fmt.Errorf("roster: update base cost: %w", err)
	}
	return dirty.Enqueue(db, dirty.KindFighterType, typeID, ft.BaseCost, newCost)
}

// SetEquipmentListCost updates (or creates) a per-fighter-type equipment
// cost override.
func SetEquipmentListCost(db *gorm.DB, fighterTypeID, equipmentID string, newCost int) error {
	if newCost < 0 {
		return fmt.Errorf("roster: equipment list cost must be non-negative")
	}

	old := -1 // sentinel: no prior override, always a change
	var eli models.EquipmentListItem
	err := db.Where("fighter_type_id = ? AND equipment_id = ?", fighterTypeID, equipmentID).
		First(&eli).Error
	switch {
	case err == nil:
		old = eli.Cost
		if err := db.Model(&models.EquipmentListItem{}).
			Where("fighter_type_id = ? AND equipment_id = ?", fighterTypeID, equipmentID).
			Update("cost", newCost).Error; err != nil {
			return fmt.Errorf("roster: update equipment list cost: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		eli = models.EquipmentListItem{FighterTypeID: fighterTypeID, EquipmentID: equipmentID, Cost: newCost}
		if err := db.Create(&eli).Error; err != nil {
			return fmt.Errorf("roster: create equipment list item: %w", err)
		}
	default:
		return fmt.Errorf("roster: get equipment list item: %w", err)
	}

	ref := dirty.EquipmentListRef(fighterTypeID, equipmentID)
	return dirty.Enqueue(db, dirty.KindEquipmentListItem, ref, old, newCost)
}
