// Package roster provides gang roster lifecycle operations: lists,
// fighters and equipment assignments. Every cost-changing operation runs
// through the ledger so aggregates, credits and audit stay consistent.
package roster

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"gorm.io/gorm"
)

// GenerateID creates a unique ID in <prefix>-xxxxx format (5-char hex).
func GenerateID(prefix string) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("roster: generate ID: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b)[:5], nil
}

// generateUniqueID generates an ID for the given model and retries once on
// collision.
func generateUniqueID(db *gorm.DB, prefix string, model interface{}) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		id, err := GenerateID(prefix)
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("roster: check ID uniqueness: %w", err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("roster: failed to generate unique ID after retries")
}
