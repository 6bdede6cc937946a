package models

import "time"

// List is a gang roster. RatingCurrent, StashCurrent and CreditsCurrent are
// cached aggregates; when Dirty is true they may not reflect current source
// data and must be recomputed before being trusted.
type List struct {
	ID             string `gorm:"primaryKey;size:32"`
	Name           string `gorm:"not null"`
	Owner          string `gorm:"size:64;index"`
	CreditsCurrent int    `gorm:"default:0"`
	RatingCurrent  int    `gorm:"default:0"`
	StashCurrent   int    `gorm:"default:0"`
	Dirty          bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ArchivedAt     *time.Time

	Fighters []Fighter `gorm:"foreignKey:ListID"`
}

// Fighter is a roster member. A stash fighter is the pseudo-fighter whose
// cost routes to the list's stash aggregate; fighters anchored to a stash
// fighter via ParentFighterID route there as well.
type Fighter struct {
	ID              string  `gorm:"primaryKey;size:32"`
	ListID          string  `gorm:"size:32;index;not null"`
	FighterTypeID   string  `gorm:"size:32;index"`
	Name            string  `gorm:"not null"`
	IsStash         bool    `gorm:"default:false"`
	ParentFighterID *string `gorm:"size:32"`
	CostOverride    *int
	AdvancementCost int  `gorm:"default:0"`
	RatingCurrent   int `gorm:"default:0"`
	Dirty           bool
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Type        *FighterType `gorm:"foreignKey:FighterTypeID"`
	Parent      *Fighter     `gorm:"foreignKey:ParentFighterID"`
	Assignments []Assignment `gorm:"foreignKey:FighterID"`
}

// Assignment links a piece of equipment to a fighter. RatingCurrent caches
// the rolled-up cost of the item including selected weapon profiles and
// upgrades.
type Assignment struct {
	ID            string `gorm:"primaryKey;size:32"`
	FighterID     string `gorm:"size:32;index;not null"`
	EquipmentID   string `gorm:"size:32;index;not null"`
	UpgradeCost   int    `gorm:"default:0"`
	CostOverride  *int
	RatingCurrent int `gorm:"default:0"`
	Dirty         bool
	CreatedAt     time.Time

	Fighter   *Fighter            `gorm:"foreignKey:FighterID"`
	Equipment *Equipment          `gorm:"foreignKey:EquipmentID"`
	Profiles  []AssignmentProfile `gorm:"foreignKey:AssignmentID"`
}

// AssignmentProfile selects a paid weapon profile on an assignment.
type AssignmentProfile struct {
	AssignmentID    string `gorm:"primaryKey;size:32"`
	WeaponProfileID string `gorm:"primaryKey;size:32"`

	Profile *WeaponProfile `gorm:"foreignKey:WeaponProfileID"`
}
