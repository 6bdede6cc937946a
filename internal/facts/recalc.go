package facts

import (
	"errors"
	"fmt"

	"github.com/grimfell/muster/internal/models"
	"gorm.io/gorm"
)

// AssignmentCost computes an assignment's rolled-up cost from source data
// without touching the cache: equipment base cost (respecting any
// equipment-list override for the owning fighter's type), selected weapon
// profiles and upgrades. An explicit CostOverride short-circuits everything.
func AssignmentCost(db *gorm.DB, a *models.Assignment) (int, error) {
	if a.CostOverride != nil {
		return clampZero(*a.CostOverride), nil
	}

	var eq models.Equipment
	if err := db.Where("id = ?", a.EquipmentID).First(&eq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("facts: equipment not found: %s", a.EquipmentID)
		}
		return 0, fmt.Errorf("facts: get equipment %s: %w", a.EquipmentID, err)
	}
	base := eq.Cost

	// An equipment-list entry for the owning fighter's type overrides the
	// base cost.
	var f models.Fighter
	if err := db.Where("id = ?", a.FighterID).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("facts: fighter not found: %s", a.FighterID)
		}
		return 0, fmt.Errorf("facts: get fighter %s: %w", a.FighterID, err)
	}
	if f.FighterTypeID != "" {
		var eli models.EquipmentListItem
		err := db.Where("fighter_type_id = ? AND equipment_id = ?", f.FighterTypeID, a.EquipmentID).First(&eli).Error
		switch {
		case err == nil:
			base = eli.Cost
		case errors.Is(err, gorm.ErrRecordNotFound):
			// no override
		default:
			return 0, fmt.Errorf("facts: get equipment list item: %w", err)
		}
	}

	var profileSum int
	err := db.Model(&models.WeaponProfile{}).
		Select("COALESCE(SUM(weapon_profiles.cost), 0)").
		Joins("JOIN assignment_profiles ON assignment_profiles.weapon_profile_id = weapon_profiles.id").
		Where("assignment_profiles.assignment_id = ?", a.ID).
		Scan(&profileSum).Error
	if err != nil {
		return 0, fmt.Errorf("facts: sum profiles for %s: %w", a.ID, err)
	}

	return clampZero(base + profileSum + a.UpgradeCost), nil
}

// AssignmentFromDB recomputes an assignment's rating from source data,
// persists it, clears the dirty flag and returns the fresh facts.
func AssignmentFromDB(db *gorm.DB, id string) (*Facts, error) {
	var a models.Assignment
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("facts: assignment not found: %s", id)
		}
		return nil, fmt.Errorf("facts: get assignment %s: %w", id, err)
	}

	rating, err := AssignmentCost(db, &a)
	if err != nil {
		return nil, err
	}

	// Persist only the recomputed fields, never the full row.
	if err := db.Model(&models.Assignment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rating_current": rating,
		"dirty":          false,
	}).Error; err != nil {
		return nil, fmt.Errorf("facts: store assignment %s: %w", id, err)
	}
	return &Facts{Rating: rating}, nil
}

// FighterFromDB recomputes a fighter's rating bottom-up: base cost plus
// advancements plus every owned assignment's rating, recursing into dirty
// assignments. An explicit CostOverride is authoritative and skips
// summation entirely.
func FighterFromDB(db *gorm.DB, id string) (*Facts, error) {
	var f models.Fighter
	if err := db.Where("id = ?", id).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("facts: fighter not found: %s", id)
		}
		return nil, fmt.Errorf("facts: get fighter %s: %w", id, err)
	}

	rating, err := FighterCost(db, &f)
	if err != nil {
		return nil, err
	}

	if err := db.Model(&models.Fighter{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rating_current": rating,
		"dirty":          false,
	}).Error; err != nil {
		return nil, fmt.Errorf("facts: store fighter %s: %w", id, err)
	}
	return &Facts{Rating: rating}, nil
}

// FighterCost computes a fighter's total from source data without writing
// the fighter's own cache, refreshing any dirty child assignment along the
// way.
func FighterCost(db *gorm.DB, f *models.Fighter) (int, error) {
	if f.CostOverride != nil {
		return clampZero(*f.CostOverride), nil
	}

	var base int
	if f.FighterTypeID != "" {
		var ft models.FighterType
		if err := db.Where("id = ?", f.FighterTypeID).First(&ft).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, fmt.Errorf("facts: fighter type not found: %s", f.FighterTypeID)
			}
			return 0, fmt.Errorf("facts: get fighter type %s: %w", f.FighterTypeID, err)
		}
		base = ft.BaseCost
	}

	total := base + f.AdvancementCost

	var assignments []models.Assignment
	if err := db.Where("fighter_id = ?", f.ID).Find(&assignments).Error; err != nil {
		return 0, fmt.Errorf("facts: list assignments of %s: %w", f.ID, err)
	}
	for _, a := range assignments {
		if !a.Dirty {
			total += a.RatingCurrent
			continue
		}
		fresh, err := AssignmentFromDB(db, a.ID)
		if err != nil {
			return 0, err
		}
		total += fresh.Rating
	}

	return clampZero(total), nil
}

// ListFromDB recomputes a list's rating and stash aggregates bottom-up,
// recursing into dirty fighters, persists them and clears the dirty flag.
// Credits are an independent balance and are never recomputed.
func ListFromDB(db *gorm.DB, id string) (*Facts, error) {
	var l models.List
	if err := db.Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("facts: list not found: %s", id)
		}
		return nil, fmt.Errorf("facts: get list %s: %w", id, err)
	}

	var fighters []models.Fighter
	if err := db.Where("list_id = ?", id).Find(&fighters).Error; err != nil {
		return nil, fmt.Errorf("facts: list fighters of %s: %w", id, err)
	}

	var rating, stash int
	for i := range fighters {
		f := &fighters[i]

		value := f.RatingCurrent
		if f.Dirty {
			fresh, err := FighterFromDB(db, f.ID)
			if err != nil {
				return nil, err
			}
			value = fresh.Rating
		}

		routed, err := StashRouted(db, f)
		if err != nil {
			return nil, err
		}
		if routed {
			stash += value
		} else {
			rating += value
		}
	}

	rating = clampZero(rating)
	stash = clampZero(stash)

	if err := db.Model(&models.List{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rating_current": rating,
		"stash_current":  stash,
		"dirty":          false,
	}).Error; err != nil {
		return nil, fmt.Errorf("facts: store list %s: %w", id, err)
	}
	return &Facts{Rating: rating, Stash: stash, Credits: l.CreditsCurrent}, nil
}

// clampZero floors aggregates at zero; costs are non-negative integers.
func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
