package models

import "time"

// RefChange queues a reference-data cost edit for asynchronous dirty
// marking. ProcessedAt is null while the change is pending; the sweeper
// drains pending rows and stamps them when the dependent caches have been
// flagged.
type RefChange struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Kind        string `gorm:"size:32;index:idx_kind_pending"`
	RefID       string `gorm:"size:80"`
	OldCost     int
	NewCost     int
	CreatedAt   time.Time
	ProcessedAt *time.Time `gorm:"index:idx_kind_pending"`
}
