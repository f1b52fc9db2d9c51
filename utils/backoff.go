// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/luxfi/log"
)

// WithMaxRetries runs the operation at most maxRetries+1 times, backing off
// exponentially from initialInterval. Errors wrapped with backoff.Permanent
// stop the loop and are returned unwrapped.
func WithMaxRetries(
	ctx context.Context,
	logger log.Logger,
	operation backoff.Operation,
	maxRetries uint64,
	initialInterval time.Duration,
) error {
	expBackOff := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxElapsedTime(0),
	)
	b := backoff.WithContext(backoff.WithMaxRetries(expBackOff, maxRetries), ctx)
	return backoff.RetryNotify(operation, b, notifier(logger))
}

func notifier(logger log.Logger) backoff.Notify {
	return func(err error, duration time.Duration) {
		logger.Warn("operation failed, retrying...",
			log.Err(err),
			log.Duration("backoff", duration),
		)
	}
}
