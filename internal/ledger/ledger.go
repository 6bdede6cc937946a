// Package ledger wraps cost mutations in atomic units and records them.
//
// Transact is the single write path for user-driven mutations: it locks the
// list row, snapshots aggregates, runs the caller's mutation (which performs
// the domain change and propagates its delta), applies any independent
// credit change and writes an immutable audit row — all inside one database
// transaction, so a failure anywhere rolls the whole unit back and no
// partial aggregate update is ever visible.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/grimfell/muster/internal/models"
	"github.com/grimfell/muster/internal/propagate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Opts holds metadata for a single logical mutation.
type Opts struct {
	ListID      string
	User        string
	ActionType  string
	Description string
	// CreditDelta adjusts the list's credit balance independently of
	// rating, applied as an atomic increment.
	CreditDelta int
	// DiceRolls optionally attaches roll results to the audit row.
	DiceRolls []int
	// DisableLog skips the audit row. The mutation itself always runs;
	// logging is orthogonal to execution.
	DisableLog bool
}

// Mutation performs the domain change inside the transaction and returns
// the delta it propagated to the list tier. Making the return value the
// applied delta keeps "mutate but forget to propagate" out of the type
// system's reach.
type Mutation func(tx *gorm.DB) (propagate.Applied, error)

// Transact executes one logical mutation atomically and returns the audit
// record, or nil when logging is disabled.
func Transact(db *gorm.DB, opts Opts, fn Mutation) (*models.ListAction, error) {
	if opts.ListID == "" {
		return nil, fmt.Errorf("ledger: list ID is required")
	}
	if opts.ActionType == "" {
		return nil, fmt.Errorf("ledger: action type is required")
	}

	var action *models.ListAction
	err := db.Transaction(func(tx *gorm.DB) error {
		// Lock the list row for the duration of the unit so concurrent
		// mutations on the same list serialize their before/after reads.
		var before models.List
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", opts.ListID).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("ledger: list not found: %s", opts.ListID)
			}
			return fmt.Errorf("ledger: lock list %s: %w", opts.ListID, err)
		}

		applied, err := fn(tx)
		if err != nil {
			return err
		}

		if opts.CreditDelta != 0 {
			if err := tx.Model(&models.List{}).Where("id = ?", opts.ListID).
				Update("credits_current", gorm.Expr("credits_current + ?", opts.CreditDelta)).Error; err != nil {
				return fmt.Errorf("ledger: adjust credits of %s: %w", opts.ListID, err)
			}
		}

		if opts.DisableLog {
			return nil
		}

		var after models.List
		if err := tx.Where("id = ?", opts.ListID).First(&after).Error; err != nil {
			return fmt.Errorf("ledger: reread list %s: %w", opts.ListID, err)
		}

		rolls, err := marshalRolls(opts.DiceRolls)
		if err != nil {
			return err
		}

		ratingDelta, stashDelta := 0, 0
		switch applied.Route {
		case propagate.RouteStash:
			stashDelta = applied.Delta
		case propagate.RouteRating:
			ratingDelta = applied.Delta
		}

		action = &models.ListAction{
			ListID:        opts.ListID,
			User:          opts.User,
			ActionType:    opts.ActionType,
			Description:   opts.Description,
			CreditsBefore: before.CreditsCurrent,
			CreditsAfter:  after.CreditsCurrent,
			CreditsDelta:  opts.CreditDelta,
			RatingBefore:  before.RatingCurrent,
			RatingAfter:   after.RatingCurrent,
			RatingDelta:   ratingDelta,
			StashBefore:   before.StashCurrent,
			StashAfter:    after.StashCurrent,
			StashDelta:    stashDelta,
			DiceRolls:     rolls,
		}
		if err := tx.Create(action).Error; err != nil {
			return fmt.Errorf("ledger: record action: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return action, nil
}

// marshalRolls encodes dice rolls as a JSON array, empty string for none.
func marshalRolls(rolls []int) (string, error) {
	if len(rolls) == 0 {
		return "", nil
	}
	data, err := json.Marshal(rolls)
	if err != nil {
		return "", fmt.Errorf("ledger: marshal dice rolls: %w", err)
	}
	return string(data), nil
}
