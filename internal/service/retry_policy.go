// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-clinic-sync/internal/config"
)

const retryJitterPercent = 10

// RetryPolicy decides how often and how soon a failed outbox item is sent
// again.
type RetryPolicy struct {
	// MaxAttempts is the number of failed sends after which an item is
	// dead-lettered.
	MaxAttempts int
	// BaseDelay is the delay after the first failure; later delays double.
	// Zero disables backoff.
	BaseDelay time.Duration
	// MaxDelay caps the delay. Zero means uncapped.
	MaxDelay time.Duration
	// Concurrency is how many entity lanes are drained in parallel.
	Concurrency int
}

// NewRetryPolicy builds the policy from the sync config.
func NewRetryPolicy(cfg config.Sync) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
		Concurrency: cfg.Concurrency,
	}
}

// Delay returns the wait before attempt number attempt+1, given that attempt
// sends have failed so far.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 || attempt < 1 {
		return 0
	}

	b := retry.WithJitterPercent(retryJitterPercent, retry.NewExponential(p.BaseDelay))
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}

	var d time.Duration
	for range attempt {
		next, stop := b.Next()
		if stop {
			break
		}
		d = next
	}

	return d
}

// Exhausted reports whether an item that has now failed retries times has
// used up its budget.
func (p RetryPolicy) Exhausted(retries int) bool {
	return p.MaxAttempts > 0 && retries >= p.MaxAttempts
}

func (p RetryPolicy) concurrency() int {
	if p.Concurrency < 1 {
		return 1
	}
	return p.Concurrency
}
