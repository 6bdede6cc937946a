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

// AddFighterOpts holds parameters for hiring a fighter onto a list.
type AddFighterOpts struct {
	ListID          string
	FighterTypeID   string
	Name            string
	IsStash         bool
	ParentFighterID string
	CostOverride    *int
	// Payment is the credit cost of the hire, deducted from the list.
	Payment    int
	User       string
	DiceRolls  []int
	DisableLog bool
}

// AddFighter hires a fighter and propagates its cost to the list in one
// atomic unit. The fighter's rating is computed eagerly so it is born
// clean.
func AddFighter(db *gorm.DB, opts AddFighterOpts) (*models.Fighter, *models.ListAction, error) {
	if opts.Name == "" {
		return nil, nil, fmt.Errorf("roster: fighter name is required")
	}
	if opts.ListID == "" {
		return nil, nil, fmt.Errorf("roster: list ID is required")
	}

	var fighter models.Fighter
	action, err := ledger.Transact(db, ledger.Opts{
		ListID:      opts.ListID,
		User:        opts.User,
		ActionType:  "add_fighter",
		Description: fmt.Sprintf("Hired %s", opts.Name),
		CreditDelta: -opts.Payment,
		DiceRolls:   opts.DiceRolls,
		DisableLog:  opts.DisableLog,
	}, func(tx *gorm.DB) (propagate.Applied, error) {
		if opts.ParentFighterID != "" {
			var parent models.Fighter
			if err := tx.Where("id = ?", opts.ParentFighterID).First(&parent).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return propagate.Applied{}, fmt.Errorf("roster: parent fighter not found: %s", opts.ParentFighterID)
				}
				return propagate.Applied{}, fmt.Errorf("roster: check parent %s: %w", opts.ParentFighterID, err)
			}
			if parent.ListID != opts.ListID {
				return propagate.Applied{}, fmt.Errorf("roster: parent fighter %s belongs to another list", opts.ParentFighterID)
			}
		}

		id, err := generateUniqueID(tx, "ftr", &models.Fighter{})
		if err != nil {
			return propagate.Applied{}, err
		}

		fighter = models.Fighter{
			ID:            id,
			ListID:        opts.ListID,
			FighterTypeID: opts.FighterTypeID,
			Name:          opts.Name,
			IsStash:       opts.IsStash,
			CostOverride:  opts.CostOverride,
			Dirty:         false,
		}
		if opts.ParentFighterID != "" {
			fighter.ParentFighterID = &opts.ParentFighterID
		}
		if err := tx.Create(&fighter).Error; err != nil {
			return propagate.Applied{}, fmt.Errorf("roster: create fighter: %w", err)
		}

		cost, err := facts.FighterCost(tx, &fighter)
		if err != nil {
			return propagate.Applied{}, err
		}
		applied, err := propagate.FromFighter(tx, fighter.ID, cost)
		if err != nil {
			return propagate.Applied{}, err
		}
		fighter.RatingCurrent = cost
		return applied, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &fighter, action, nil
}

// AdvanceFighterOpts holds parameters for recording an advancement.
type AdvanceFighterOpts struct {
	FighterID string
	// Cost is the rating increase the advancement is worth.
	Cost int
	// Payment is the experience-equivalent credit cost, if any.
	Payment    int
	User       string
	DiceRolls  []int
	DisableLog bool
}

// AdvanceFighter adds an advancement to a fighter, raising its rating by
// the advancement cost.
func AdvanceFighter(db *gorm.DB, opts AdvanceFighterOpts) (*models.ListAction, error) {
	if opts.Cost < 0 {
		return nil, fmt.Errorf("roster: advancement cost must be non-negative")
	}

	fighter, err := getFighter(db, opts.FighterID)
	if err != nil {
		return nil, err
	}

	return ledger.Transact(db, ledger.Opts{
		ListID:      fighter.ListID,
		User:        opts.User,
		ActionType:  "advance_fighter",
		Description: fmt.Sprintf("Advanced %s", fighter.Name),
		CreditDelta: -opts.Payment,
		DiceRolls:   opts.DiceRolls,
		DisableLog:  opts.DisableLog,
	}, func(tx *gorm.DB) (propagate.Applied, error) {
		if err := tx.Model(&models.Fighter{}).Where("id = ?", opts.FighterID).
			Update("advancement_cost", gorm.Expr("advancement_cost + ?", opts.Cost)).Error; err != nil {
			return propagate.Applied{}, fmt.Errorf("roster: add advancement to %s: %w", opts.FighterID, err)
		}
		return propagate.FromFighter(tx, opts.FighterID, opts.Cost)
	})
}

// RemoveFighterOpts holds parameters for removing a fighter.
type RemoveFighterOpts struct {
	FighterID  string
	User       string
	DisableLog bool
}

// RemoveFighter deletes a fighter and its assignments, deducting its
// authoritative rating from the list. Dirty caches are recomputed first so
// the deducted delta is exact.
func RemoveFighter(db *gorm.DB, opts RemoveFighterOpts) (*models.ListAction, error) {
	fighter, err := getFighter(db, opts.FighterID)
	if err != nil {
		return nil, err
	}

	return ledger.Transact(db, ledger.Opts{
		ListID:      fighter.ListID,
		User:        opts.User,
		ActionType:  "remove_fighter",
		Description: fmt.Sprintf("Removed %s", fighter.Name),
		DisableLog:  opts.DisableLog,
	}, func(tx *gorm.DB) (propagate.Applied, error) {
		old := fighter.RatingCurrent
		if fighter.Dirty {
			fresh, err := facts.FighterFromDB(tx, fighter.ID)
			if err != nil {
				return propagate.Applied{}, err
			}
			old = fresh.Rating
		}

		var assignmentIDs []string
		if err := tx.Model(&models.Assignment{}).Where("fighter_id = ?", fighter.ID).
			Pluck("id", &assignmentIDs).Error; err != nil {
			return propagate.Applied{}, fmt.Errorf("roster: list assignments of %s: %w", fighter.ID, err)
		}
		if len(assignmentIDs) > 0 {
			if err := tx.Where("assignment_id IN ?", assignmentIDs).
				Delete(&models.AssignmentProfile{}).Error; err != nil {
				return propagate.Applied{}, fmt.Errorf("roster: delete assignment profiles: %w", err)
			}
			if err := tx.Where("id IN ?", assignmentIDs).Delete(&models.Assignment{}).Error; err != nil {
				return propagate.Applied{}, fmt.Errorf("roster: delete assignments: %w", err)
			}
		}
		if err := tx.Where("id = ?", fighter.ID).Delete(&models.Fighter{}).Error; err != nil {
			return propagate.Applied{}, fmt.Errorf("roster: delete fighter %s: %w", fighter.ID, err)
		}

		return propagate.ToList(tx, fighter, -old)
	})
}

// getFighter loads a fighter by ID.
func getFighter(db *gorm.DB, id string) (*models.Fighter, error) {
	var fighter models.Fighter
	if err := db.Where("id = ?", id).First(&fighter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("roster: fighter not found: %s", id)
		}
		return nil, fmt.Errorf("roster: get fighter %s: %w", id, err)
	}
	return &fighter, nil
}
