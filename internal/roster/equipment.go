package roster

import (
	"errors"
	"fmt"

	"github.com/grimfell/muster/internal/facts"
	"github.com/grimfell/muster/internal/ledger"
	"github.com/grimfell/muster/internal/models"
	"github.com/grimfell/muster/internal/propagate"
	"gorm.io/gorm"
)

// AssignEquipmentOpts holds parameters for assigning equipment to a
// fighter.
type AssignEquipmentOpts struct {
	FighterID        string
	EquipmentID      string
	WeaponProfileIDs []string
	UpgradeCost      int
	CostOverride     *int
	// Payment is the credit price paid, deducted from the list.
	Payment    int
	User       string
	DiceRolls  []int
	DisableLog bool
}

// AssignEquipment creates an assignment, computes its cost eagerly and
// propagates the increase through fighter and list atomically.
func AssignEquipment(db *gorm.DB, opts AssignEquipmentOpts) (*models.Assignment, *models.ListAction, error) {
	if opts.EquipmentID == "" {
		return nil, nil, fmt.Errorf("roster: equipment ID is required")
	}

	fighter, err := getFighter(db, opts.FighterID)
	if err != nil {
		return nil, nil, err
	}

	var assignment models.Assignment
	action, err := ledger.Transact(db, ledger.Opts{
		ListID:      fighter.ListID,
		User:        opts.User,
		ActionType:  "assign_equipment",
		Description: fmt.Sprintf("Assigned %s to %s", opts.EquipmentID, fighter.Name),
		CreditDelta: -opts.Payment,
		DiceRolls:   opts.DiceRolls,
		DisableLog:  opts.DisableLog,
	}, func(tx *gorm.DB) (propagate.Applied, error) {
		id, err := generateUniqueID(tx, "asn", &models.Assignment{})
		if err != nil {
			return propagate.Applied{}, err
		}

		assignment = models.Assignment{
			ID:           id,
			FighterID:    opts.FighterID,
			EquipmentID:  opts.EquipmentID,
			UpgradeCost:  opts.UpgradeCost,
			CostOverride: opts.CostOverride,
			Dirty:        false,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return propagate.Applied{}, fmt.Errorf("roster: create assignment: %w", err)
		}
		for _, wpID := range opts.WeaponProfileIDs {
			ap := models.AssignmentProfile{AssignmentID: id, WeaponProfileID: wpID}
			if err := tx.Create(&ap).Error; err != nil {
				return propagate.Applied{}, fmt.Errorf("roster: attach profile %s: %w", wpID, err)
			}
		}

		cost, err := facts.AssignmentCost(tx, &assignment)
		if err != nil {
			return propagate.Applied{}, err
		}
		applied, err := propagate.FromAssignment(tx, id, cost)
		if err != nil {
			return propagate.Applied{}, err
		}
		assignment.RatingCurrent = cost
		return applied, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &assignment, action, nil
}

// RemoveAssignmentOpts holds parameters for removing (or selling) an
// assignment.
type RemoveAssignmentOpts struct {
	AssignmentID string
	// SalePrice is credited back to the list when selling to the trading
	// post; zero for a plain deletion.
	SalePrice  int
	User       string
	DiceRolls  []int
	DisableLog bool
}

// RemoveAssignment deletes an assignment and deducts its authoritative
// rating from fighter and list. A dirty assignment is recomputed first so
// the deducted delta is exact.
func RemoveAssignment(db *gorm.DB, opts RemoveAssignmentOpts) (*models.ListAction, error) {
	var assignment models.Assignment
	if err := db.Where("id = ?", opts.AssignmentID).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("roster: assignment not found: %s", opts.AssignmentID)
		}
		return nil, fmt.Errorf("roster: get assignment %s: %w", opts.AssignmentID, err)
	}
	fighter, err := getFighter(db, assignment.FighterID)
	if err != nil {
		return nil, err
	}

	actionType := "remove_equipment"
	if opts.SalePrice > 0 {
		actionType = "sell_equipment"
	}

	return ledger.Transact(db, ledger.Opts{
		ListID:      fighter.ListID,
		User:        opts.User,
		ActionType:  actionType,
		Description: fmt.Sprintf("Removed %s from %s", assignment.EquipmentID, fighter.Name),
		CreditDelta: opts.SalePrice,
		DiceRolls:   opts.DiceRolls,
		DisableLog:  opts.DisableLog,
	}, func(tx *gorm.DB) (propagate.Applied, error) {
		old := assignment.RatingCurrent
		if assignment.Dirty {
			fresh, err := facts.AssignmentFromDB(tx, assignment.ID)
			if err != nil {
				return propagate.Applied{}, err
			}
			old = fresh.Rating
		}

		if err := tx.Where("assignment_id = ?", assignment.ID).
			Delete(&models.AssignmentProfile{}).Error; err != nil {
			return propagate.Applied{}, fmt.Errorf("roster: delete assignment profiles: %w", err)
		}
		if err := tx.Where("id = ?", assignment.ID).Delete(&models.Assignment{}).Error; err != nil {
			return propagate.Applied{}, fmt.Errorf("roster: delete assignment %s: %w", assignment.ID, err)
		}

		// The leaf row is gone; the fighter is now the lowest tier that
		// takes the deduction.
		return propagate.FromFighter(tx, fighter.ID, -old)
	})
}
