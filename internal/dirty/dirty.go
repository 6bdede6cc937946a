// Package dirty invalidates cached aggregates when shared reference data
// changes. It is the only writer that sets dirty=true outside of row
// creation.
//
// Watched reference kinds map to explicit dependent-resolution queries in a
// static table; there is no runtime reflection over models. Marking is
// transitive and coarse: the assignments referencing the changed record,
// the fighters owning those assignments and the lists owning those fighters
// are bulk-flagged one UPDATE per tier, inside one transaction so a crash
// cannot leave a clean ancestor above a freshly dirtied leaf.
package dirty

import (
	"fmt"
	"strings"
	"time"

	"github.com/grimfell/muster/internal/models"
	"gorm.io/gorm"
)

// Kind identifies a watched reference-data table.
type Kind string

const (
	KindEquipment         Kind = "equipment"
	KindWeaponProfile     Kind = "weapon_profile"
	KindFighterType       Kind = "fighter_type"
	KindEquipmentListItem Kind = "equipment_list_item"
)

// Marked reports how many rows were flagged per tier.
type Marked struct {
	Assignments int
	Fighters    int
	Lists       int
}

// resolver finds the entities directly depending on a changed reference
// record: assignment dependents, fighter dependents, or both.
type resolver func(tx *gorm.DB, refID string) (assignmentIDs, fighterIDs []string, err error)

// resolvers is the static watch table mapping reference kind to its
// dependent-resolution query.
var resolvers = map[Kind]resolver{
	KindEquipment:         resolveEquipment,
	KindWeaponProfile:     resolveWeaponProfile,
	KindFighterType:       resolveFighterType,
	KindEquipmentListItem: resolveEquipmentListItem,
}

// EquipmentListRef encodes the composite key of an equipment-list item as a
// single reference ID.
func EquipmentListRef(fighterTypeID, equipmentID string) string {
	return fighterTypeID + "/" + equipmentID
}

// Mark transitively flags every cached entity depending on the changed
// reference record. Idempotent: re-marking already dirty rows is harmless.
func Mark(db *gorm.DB, kind Kind, refID string) (Marked, error) {
	resolve, ok := resolvers[kind]
	if !ok {
		return Marked{}, fmt.Errorf("dirty: unknown reference kind %q", kind)
	}

	var marked Marked
	err := db.Transaction(func(tx *gorm.DB) error {
		assignmentIDs, fighterIDs, err := resolve(tx, refID)
		if err != nil {
			return err
		}

		// Owners of affected assignments join the fighter tier.
		if len(assignmentIDs) > 0 {
			var owners []string
			if err := tx.Model(&models.Assignment{}).
				Where("id IN ?", assignmentIDs).
				Distinct().Pluck("fighter_id", &owners).Error; err != nil {
				return fmt.Errorf("dirty: resolve assignment owners: %w", err)
			}
			fighterIDs = union(fighterIDs, owners)
		}

		var listIDs []string
		if len(fighterIDs) > 0 {
			if err := tx.Model(&models.Fighter{}).
				Where("id IN ?", fighterIDs).
				Distinct().Pluck("list_id", &listIDs).Error; err != nil {
				return fmt.Errorf("dirty: resolve fighter owners: %w", err)
			}
		}

		if len(assignmentIDs) > 0 {
			res := tx.Model(&models.Assignment{}).Where("id IN ?", assignmentIDs).Update("dirty", true)
			if res.Error != nil {
				return fmt.Errorf("dirty: mark assignments: %w", res.Error)
			}
			marked.Assignments = int(res.RowsAffected)
		}
		if len(fighterIDs) > 0 {
			res := tx.Model(&models.Fighter{}).Where("id IN ?", fighterIDs).Update("dirty", true)
			if res.Error != nil {
				return fmt.Errorf("dirty: mark fighters: %w", res.Error)
			}
			marked.Fighters = int(res.RowsAffected)
		}
		if len(listIDs) > 0 {
			res := tx.Model(&models.List{}).Where("id IN ?", listIDs).Update("dirty", true)
			if res.Error != nil {
				return fmt.Errorf("dirty: mark lists: %w", res.Error)
			}
			marked.Lists = int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return Marked{}, err
	}
	return marked, nil
}

func resolveEquipment(tx *gorm.DB, refID string) ([]string, []string, error) {
	var ids []string
	if err := tx.Model(&models.Assignment{}).
		Where("equipment_id = ?", refID).
		Pluck("id", &ids).Error; err != nil {
		return nil, nil, fmt.Errorf("dirty: resolve equipment %s: %w", refID, err)
	}
	return ids, nil, nil
}

func resolveWeaponProfile(tx *gorm.DB, refID string) ([]string, []string, error) {
	var ids []string
	if err := tx.Model(&models.AssignmentProfile{}).
		Where("weapon_profile_id = ?", refID).
		Pluck("assignment_id", &ids).Error; err != nil {
		return nil, nil, fmt.Errorf("dirty: resolve weapon profile %s: %w", refID, err)
	}
	return ids, nil, nil
}

func resolveFighterType(tx *gorm.DB, refID string) ([]string, []string, error) {
	var ids []string
	if err := tx.Model(&models.Fighter{}).
		Where("fighter_type_id = ?", refID).
		Pluck("id", &ids).Error; err != nil {
		return nil, nil, fmt.Errorf("dirty: resolve fighter type %s: %w", refID, err)
	}
	return nil, ids, nil
}

func resolveEquipmentListItem(tx *gorm.DB, refID string) ([]string, []string, error) {
	ftID, eqID, ok := strings.Cut(refID, "/")
	if !ok {
		return nil, nil, fmt.Errorf("dirty: malformed equipment list ref %q", refID)
	}
	var ids []string
	if err := tx.Model(&models.Assignment{}).
		Joins("JOIN fighters ON fighters.id = assignments.fighter_id").
		Where("assignments.equipment_id = ? AND fighters.fighter_type_id = ?", eqID, ftID).
		Pluck("assignments.id", &ids).Error; err != nil {
		return nil, nil, fmt.Errorf("dirty: resolve equipment list item %s: %w", refID, err)
	}
	return ids, nil, nil
}

// Enqueue records a reference-cost change for asynchronous marking. Equal
// old and new costs are a no-op: only genuine changes invalidate.
func Enqueue(db *gorm.DB, kind Kind, refID string, oldCost, newCost int) error {
	if oldCost == newCost {
		return nil
	}
	if _, ok := resolvers[kind]; !ok {
		return fmt.Errorf("dirty: unknown reference kind %q", kind)
	}
	rc := models.RefChange{
		Kind:    string(kind),
		RefID:   refID,
		OldCost: oldCost,
		NewCost: newCost,
	}
	if err := db.Create(&rc).Error; err != nil {
		return fmt.Errorf("dirty: enqueue %s/%s: %w", kind, refID, err)
	}
	return nil
}

// Drain processes every pending RefChange: marks dependents and stamps the
// row processed. Returns the number of changes processed.
func Drain(db *gorm.DB) (int, error) {
	var pending []models.RefChange
	if err := db.Where("processed_at IS NULL").Order("id ASC").Find(&pending).Error; err != nil {
		return 0, fmt.Errorf("dirty: load pending changes: %w", err)
	}

	processed := 0
	for _, rc := range pending {
		if _, err := Mark(db, Kind(rc.Kind), rc.RefID); err != nil {
			return processed, err
		}
		now := time.Now()
		if err := db.Model(&models.RefChange{}).Where("id = ?", rc.ID).
			Update("processed_at", now).Error; err != nil {
			return processed, fmt.Errorf("dirty: stamp change %d: %w", rc.ID, err)
		}
		processed++
	}
	return processed, nil
}

// union merges two ID slices without duplicates, preserving order.
func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, id := range a {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
