package models

// Equipment is shared reference data: a purchasable item with a base cost.
// Edits to Cost invalidate every assignment referencing the item.
type Equipment struct {
	ID       string `gorm:"primaryKey;size:32"`
	Name     string `gorm:"not null;index"`
	Category string `gorm:"size:32"`
	Cost     int    `gorm:"default:0"`
}

// WeaponProfile is an optional paid profile on a piece of equipment.
type WeaponProfile struct {
	ID          string `gorm:"primaryKey;size:32"`
	EquipmentID string `gorm:"size:32;index;not null"`
	Name        string `gorm:"not null"`
	Cost        int    `gorm:"default:0"`
}

// FighterType is shared reference data: the template a fighter is hired
// from, carrying its base cost.
type FighterType struct {
	ID       string `gorm:"primaryKey;size:32"`
	Name     string `gorm:"not null;index"`
	BaseCost int    `gorm:"default:0"`
}

// EquipmentListItem overrides an equipment cost for fighters of a given
// type, modelling per-house equipment list pricing.
type EquipmentListItem struct {
	FighterTypeID string `gorm:"primaryKey;size:32"`
	EquipmentID   string `gorm:"primaryKey;size:32"`
	Cost          int    `gorm:"default:0"`
}
