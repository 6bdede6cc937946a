package facts

import (
	"errors"
	"fmt"

	"github.com/grimfell/muster/internal/models"
	"gorm.io/gorm"
)

// maxChainDepth bounds the parent walk. The ownership tree is shallow;
// anything deeper indicates a cycle in the data.
const maxChainDepth = 8

// StashRouted reports whether a fighter's cost routes to the list's stash
// aggregate: the fighter is the stash itself, or its parent chain reaches a
// stash fighter. This is the single routing predicate shared by the
// recalculation engine and the delta propagator; the two must never diverge
// or rating_current and stash_current drift apart permanently.
func StashRouted(db *gorm.DB, f *models.Fighter) (bool, error) {
	cur := f
	for depth := 0; depth < maxChainDepth; depth++ {
		if cur.IsStash {
			return true, nil
		}
		if cur.ParentFighterID == nil {
			return false, nil
		}
		var parent models.Fighter
		if err := db.Where("id = ?", *cur.ParentFighterID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, fmt.Errorf("facts: parent fighter not found: %s", *cur.ParentFighterID)
			}
			return false, fmt.Errorf("facts: get parent fighter %s: %w", *cur.ParentFighterID, err)
		}
		cur = &parent
	}
	return false, fmt.Errorf("facts: fighter %s parent chain exceeds depth %d", f.ID, maxChainDepth)
}
