// Package propagate applies known cost deltas up the ownership tree by
// arithmetic instead of full recomputation.
//
// The node the delta originates from gets an absolute aggregate write and
// its dirty flag cleared; ancestors are updated with atomic column
// increments (x = x + delta) so concurrent deltas against the same row
// commute without read-modify-write races. An ancestor's dirty flag is left
// untouched: if an in-flight invalidation marked it, the flag survives and
// the next read falls through to a full recompute.
package propagate

import (
	"errors"
	"fmt"

	"github.com/grimfell/muster/internal/facts"
	"github.com/grimfell/muster/internal/models"
	"gorm.io/gorm"
)

// Route identifies which list-tier aggregate absorbed a delta.
type Route string

const (
	// RouteRating routes to the list's rating_current aggregate.
	RouteRating Route = "rating"
	// RouteStash routes to the list's stash_current aggregate.
	RouteStash Route = "stash"
)

// Applied reports the delta actually applied at the list tier. A zero-delta
// propagation returns the zero value.
type Applied struct {
	ListID string
	Delta  int
	Route  Route
}

// FromAssignment writes an assignment's new rating (current + delta) and
// pushes the delta through the owning fighter and list. A zero delta skips
// every write.
func FromAssignment(db *gorm.DB, assignmentID string, delta int) (Applied, error) {
	if delta == 0 {
		return Applied{}, nil
	}

	var a models.Assignment
	if err := db.Where("id = ?", assignmentID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Applied{}, fmt.Errorf("propagate: assignment not found: %s", assignmentID)
		}
		return Applied{}, fmt.Errorf("propagate: get assignment %s: %w", assignmentID, err)
	}

	// The leaf gets an authoritative absolute value, so its dirty flag
	// clears here and only here.
	newRating := a.RatingCurrent + delta
	if newRating < 0 {
		newRating = 0
	}
	if err := db.Model(&models.Assignment{}).Where("id = ?", assignmentID).Updates(map[string]interface{}{
		"rating_current": newRating,
		"dirty":          false,
	}).Error; err != nil {
		return Applied{}, fmt.Errorf("propagate: store assignment %s: %w", assignmentID, err)
	}

	var f models.Fighter
	if err := db.Where("id = ?", a.FighterID).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Applied{}, fmt.Errorf("propagate: fighter not found: %s", a.FighterID)
		}
		return Applied{}, fmt.Errorf("propagate: get fighter %s: %w", a.FighterID, err)
	}

	if err := db.Model(&models.Fighter{}).Where("id = ?", f.ID).
		Update("rating_current", gorm.Expr("rating_current + ?", delta)).Error; err != nil {
		return Applied{}, fmt.Errorf("propagate: increment fighter %s: %w", f.ID, err)
	}

	return applyToList(db, &f, delta)
}

// FromFighter writes a fighter's new rating (current + delta) and pushes
// the delta to the owning list. Used when the fighter's own intrinsic cost
// changes (advancement, hire) or when an assignment is removed outright.
// A dirty fighter's cache is not authoritative, so it is incremented like
// any other stale ancestor and its flag kept for the next recompute.
func FromFighter(db *gorm.DB, fighterID string, delta int) (Applied, error) {
	if delta == 0 {
		return Applied{}, nil
	}

	var f models.Fighter
	if err := db.Where("id = ?", fighterID).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Applied{}, fmt.Errorf("propagate: fighter not found: %s", fighterID)
		}
		return Applied{}, fmt.Errorf("propagate: get fighter %s: %w", fighterID, err)
	}

	if f.Dirty {
		expr := gorm.Expr(
			"CASE WHEN rating_current + ? < 0 THEN 0 ELSE rating_current + ? END",
			delta, delta,
		)
		if err := db.Model(&models.Fighter{}).Where("id = ?", fighterID).
			Update("rating_current", expr).Error; err != nil {
			return Applied{}, fmt.Errorf("propagate: increment fighter %s: %w", fighterID, err)
		}
		return applyToList(db, &f, delta)
	}

	newRating := f.RatingCurrent + delta
	if newRating < 0 {
		newRating = 0
	}
	if err := db.Model(&models.Fighter{}).Where("id = ?", fighterID).Updates(map[string]interface{}{
		"rating_current": newRating,
		"dirty":          false,
	}).Error; err != nil {
		return Applied{}, fmt.Errorf("propagate: store fighter %s: %w", fighterID, err)
	}

	return applyToList(db, &f, delta)
}

// ToList routes a delta to the owning list's rating or stash aggregate via
// the shared stash predicate, clamped at zero in SQL so concurrent
// decrements can never drive an aggregate negative. Exposed for mutations
// that remove a fighter row outright and therefore have no fighter-tier
// cache left to write.
func ToList(db *gorm.DB, f *models.Fighter, delta int) (Applied, error) {
	if delta == 0 {
		return Applied{}, nil
	}
	return applyToList(db, f, delta)
}

func applyToList(db *gorm.DB, f *models.Fighter, delta int) (Applied, error) {
	routed, err := facts.StashRouted(db, f)
	if err != nil {
		return Applied{}, fmt.Errorf("propagate: %w", err)
	}

	column, route := "rating_current", RouteRating
	if routed {
		column, route = "stash_current", RouteStash
	}

	expr := gorm.Expr(
		fmt.Sprintf("CASE WHEN %s + ? < 0 THEN 0 ELSE %s + ? END", column, column),
		delta, delta,
	)
	if err := db.Model(&models.List{}).Where("id = ?", f.ListID).
		Update(column, expr).Error; err != nil {
		return Applied{}, fmt.Errorf("propagate: increment list %s: %w", f.ListID, err)
	}

	return Applied{ListID: f.ListID, Delta: delta, Route: route}, nil
}
