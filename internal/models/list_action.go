package models

import "time"

// ListAction is the immutable audit record written by the transaction
// coordinator: one row per logical mutation, capturing aggregates before and
// after plus the deltas applied. Rows are created, never updated.
type ListAction struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ListID      string `gorm:"size:32;index"`
	User        string `gorm:"size:64"`
	ActionType  string `gorm:"size:32;index"`
	Description string `gorm:"type:text"`

	CreditsBefore int
	CreditsAfter  int
	CreditsDelta  int
	RatingBefore  int
	RatingAfter   int
	RatingDelta   int
	StashBefore   int
	StashAfter    int
	StashDelta    int

	DiceRolls string `gorm:"type:json"`
	CreatedAt time.Time
}
