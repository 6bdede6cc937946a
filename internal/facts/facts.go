// Package facts implements the cached-aggregate read contract and the
// bottom-up recalculation engine behind it.
//
// The cached reads (Assignment, Fighter, List) are O(1): they return the
// stored aggregate when the row is clean and nil when it is dirty, never
// recomputing. The FromDB variants are the unconditional fallback: they
// rebuild the aggregate from source data, persist it, clear the dirty flag
// and return the fresh value.
package facts

import (
	"errors"
	"fmt"

	"github.com/grimfell/muster/internal/models"
	"gorm.io/gorm"
)

// Facts is a cached aggregate snapshot. Stash and Credits are only
// populated at the list tier.
type Facts struct {
	Rating  int `json:"rating"`
	Stash   int `json:"stash"`
	Credits int `json:"credits"`
}

// Assignment returns the cached assignment rating, or nil when the row is
// dirty. No recomputation happens on this path.
func Assignment(db *gorm.DB, id string) (*Facts, error) {
	var a models.Assignment
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("facts: assignment not found: %s", id)
		}
		return nil, fmt.Errorf("facts: get assignment %s: %w", id, err)
	}
	if a.Dirty {
		return nil, nil
	}
	return &Facts{Rating: a.RatingCurrent}, nil
}

// Fighter returns the cached fighter rating, or nil when the row is dirty.
func Fighter(db *gorm.DB, id string) (*Facts, error) {
	var f models.Fighter
	if err := db.Where("id = ?", id).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("facts: fighter not found: %s", id)
		}
		return nil, fmt.Errorf("facts: get fighter %s: %w", id, err)
	}
	if f.Dirty {
		return nil, nil
	}
	return &Facts{Rating: f.RatingCurrent}, nil
}

// List returns the cached list aggregates, or nil when the row is dirty.
func List(db *gorm.DB, id string) (*Facts, error) {
	var l models.List
	if err := db.Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("facts: list not found: %s", id)
		}
		return nil, fmt.Errorf("facts: get list %s: %w", id, err)
	}
	if l.Dirty {
		return nil, nil
	}
	return &Facts{Rating: l.RatingCurrent, Stash: l.StashCurrent, Credits: l.CreditsCurrent}, nil
}
