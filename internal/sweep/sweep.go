// Package sweep runs the background invalidation daemon: it drains queued
// reference-data changes through the dirty marker on a cron schedule.
// Invalidation is allowed to lag behind the edits; the write path never
// depends on it.
package sweep

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/grimfell/muster/internal/dirty"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// fallbackInterval is used when the schedule expression cannot be parsed or
// fires in the past.
const fallbackInterval = time.Minute

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns fallbackInterval on parse error.
func nextDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return fallbackInterval
	}
	d := time.Until(sched.Next(time.Now()))
	if d <= 0 {
		return fallbackInterval
	}
	return d
}

// RunOnce drains the pending invalidation queue a single time.
func RunOnce(db *gorm.DB) (int, error) {
	n, err := dirty.Drain(db)
	if err != nil {
		return n, fmt.Errorf("sweep: %w", err)
	}
	return n, nil
}

// Run loops draining the invalidation queue on the given cron schedule
// until ctx is cancelled. Drain errors are logged and retried on the next
// tick rather than stopping the daemon.
func Run(ctx context.Context, db *gorm.DB, schedule string, out io.Writer) error {
	if db == nil {
		return fmt.Errorf("sweep: db is required")
	}
	if out == nil {
		out = io.Discard
	}

	fmt.Fprintf(out, "Sweeper starting (schedule %q)...\n", schedule)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "Sweeper stopped.")
			return nil
		case <-time.After(nextDuration(schedule)):
		}

		n, err := dirty.Drain(db)
		if err != nil {
			log.Printf("sweep: drain error: %v", err)
			continue
		}
		if n > 0 {
			fmt.Fprintf(out, "Swept %d reference change(s)\n", n)
		}
	}
}
