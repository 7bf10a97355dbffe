package scheduler

import (
	"context"
	"log"
	"time"

	"jobscout-engine/internal/domain"
)

type Task func(ctx context.Context) error

// Every runs task now and then on each tick until ctx is done. Runs never
// overlap; ticks that fire during a run collapse into one. A fatal task error
// (domain.Fatal) stops the loop and is returned.
func Every(ctx context.Context, interval time.Duration, name string, task Task) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	// run immediately
	if err := runOnce(ctx, name, task); err != nil {
		return err
	}

	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := runOnce(ctx, name, task); err != nil {
				return err
			}
		}
	}
	return nil
}

func runOnce(ctx context.Context, name string, task Task) error {
	err := task(ctx)
	if err == nil {
		return nil
	}
	log.Printf("[%s] error: %v", name, err)
	if domain.Fatal(err) {
		return err
	}
	return nil
}
