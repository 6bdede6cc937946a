package roster

import (
	"errors"
	"fmt"
	"time"

	"github.com/grimfell/muster/internal/ledger"
	"github.com/grimfell/muster/internal/models"
	"github.com/grimfell/muster/internal/propagate"
	"gorm.io/gorm"
)

// CreateListOpts holds parameters for creating a new list.
type CreateListOpts struct {
	Name    string
	Owner   string
	Credits int // starting credit balance
}

// CreateList creates a new empty list. A fresh list has exact zero
// aggregates, so it is born clean rather than waiting for a recompute.
func CreateList(db *gorm.DB, opts CreateListOpts) (*models.List, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("roster: list name is required")
	}
	if opts.Credits < 0 {
		return nil, fmt.Errorf("roster: starting credits must be non-negative")
	}

	id, err := generateUniqueID(db, "lst", &models.List{})
	if err != nil {
		return nil, err
	}

	list := models.List{
		ID:             id,
		Name:           opts.Name,
		Owner:          opts.Owner,
		CreditsCurrent: opts.Credits,
		Dirty:          false,
	}
	if err := db.Create(&list).Error; err != nil {
		return nil, fmt.Errorf("roster: create list: %w", err)
	}
	return &list, nil
}

// GetList retrieves a list by ID with its fighters and their assignments.
func GetList(db *gorm.DB, id string) (*models.List, error) {
	var list models.List
	if err := db.Preload("Fighters").Preload("Fighters.Assignments").
		Where("id = ?", id).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("roster: list not found: %s", id)
		}
		return nil, fmt.Errorf("roster: get list %s: %w", id, err)
	}
	return &list, nil
}

// Lists returns all active (non-archived) lists, optionally filtered by
// owner, ordered by creation time.
func Lists(db *gorm.DB, owner string) ([]models.List, error) {
	q := db.Model(&models.List{}).Where("archived_at IS NULL")
	if owner != "" {
		q = q.Where("owner = ?", owner)
	}
	var lists []models.List
	if err := q.Order("created_at ASC").Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("roster: list lists: %w", err)
	}
	return lists, nil
}

// ArchiveList soft-deletes a list. Lists are never hard-deleted.
func ArchiveList(db *gorm.DB, id string) error {
	now := time.Now()
	res := db.Model(&models.List{}).Where("id = ? AND archived_at IS NULL", id).
		Update("archived_at", now)
	if res.Error != nil {
		return fmt.Errorf("roster: archive list %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("roster: list not found or already archived: %s", id)
	}
	return nil
}

// AdjustCreditsOpts holds parameters for a standalone credit adjustment.
type AdjustCreditsOpts struct {
	ListID      string
	Delta       int
	User        string
	Description string
	DisableLog  bool
}

// AdjustCredits changes a list's credit balance without touching ratings,
// recorded as its own audit action.
func AdjustCredits(db *gorm.DB, opts AdjustCreditsOpts) (*models.ListAction, error) {
	if opts.Delta == 0 {
		return nil, fmt.Errorf("roster: credit delta must be non-zero")
	}
	return ledger.Transact(db, ledger.Opts{
		ListID:      opts.ListID,
		User:        opts.User,
		ActionType:  "adjust_credits",
		Description: opts.Description,
		CreditDelta: opts.Delta,
		DisableLog:  opts.DisableLog,
	}, func(tx *gorm.DB) (propagate.Applied, error) {
		return propagate.Applied{}, nil
	})
}
