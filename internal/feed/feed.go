// Package feed posts campaign activity (audit records) to chat channels.
// Delivery is best-effort: failures are logged and never surface into the
// mutation path.
package feed

import (
	"fmt"
	"log"
	"strings"

	"github.com/grimfell/muster/internal/models"
)

// Poster delivers a formatted campaign event to one destination.
type Poster interface {
	Post(text string) error
}

// Feed fans audit records out to the configured posters.
type Feed struct {
	posters []Poster
}

// New creates a feed over the given posters. A feed with no posters is
// valid and publishes nothing.
func New(posters ...Poster) *Feed {
	return &Feed{posters: posters}
}

// Publish formats an action and posts it to every destination.
func (f *Feed) Publish(listName string, action *models.ListAction) {
	if action == nil {
		return
	}
	text := Format(listName, action)
	for _, p := range f.posters {
		if err := p.Post(text); err != nil {
			log.Printf("feed: post failed: %v", err)
		}
	}
}

// Format renders an audit record as a single feed line.
func Format(listName string, action *models.ListAction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", listName, action.ActionType)
	if action.User != "" {
		fmt.Fprintf(&b, " by %s", action.User)
	}
	if action.Description != "" {
		fmt.Fprintf(&b, ": %s", action.Description)
	}
	if action.RatingAfter != action.RatingBefore {
		fmt.Fprintf(&b, " (rating %d -> %d)", action.RatingBefore, action.RatingAfter)
	}
	if action.StashAfter != action.StashBefore {
		fmt.Fprintf(&b, " (stash %d -> %d)", action.StashBefore, action.StashAfter)
	}
	if action.CreditsDelta != 0 {
		fmt.Fprintf(&b, " (credits %d -> %d)", action.CreditsBefore, action.CreditsAfter)
	}
	if action.DiceRolls != "" {
		fmt.Fprintf(&b, " rolls=%s", action.DiceRolls)
	}
	return b.String()
}
