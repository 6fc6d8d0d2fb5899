package services

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

const defaultPollInterval = 15 * time.Second

// PollConfig controls how long a step waits on remote state.
// A zero Timeout waits until the context is canceled.
type PollConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// pollUntil checks cond immediately and then every interval until it
// reports done, returns an error, or the timeout elapses.
func pollUntil(ctx context.Context, p PollConfig, what string, cond wait.ConditionWithContextFunc) error {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	var err error
	if p.Timeout <= 0 {
		err = wait.PollUntilContextCancel(ctx, interval, true, cond)
	} else {
		err = wait.PollUntilContextTimeout(ctx, interval, p.Timeout, true, cond)
	}
	if err != nil && wait.Interrupted(err) {
		return fmt.Errorf("wait for %s: %w", what, err)
	}
	return err
}
