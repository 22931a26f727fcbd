package scraper

import (
	"time"

	"newscr/config"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy is the one retry/backoff policy shared by sitemap fetches
// and persistence writes, instead of ad hoc loops at every call site.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

func RetryPolicyFromConfig(cfg config.Retry) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay.Std(),
		Multiplier:  cfg.Multiplier,
		MaxDelay:    cfg.MaxDelay.Std(),
	}
}

// Do runs op up to MaxAttempts times with exponential backoff. Wrap an
// error in backoff.Permanent to stop retrying early.
func (p RetryPolicy) Do(op func() error) error {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = p.BaseDelay
	exponential.Multiplier = p.Multiplier
	exponential.MaxInterval = p.MaxDelay
	exponential.MaxElapsedTime = 0

	retries := uint64(0)
	if p.MaxAttempts > 1 {
		retries = uint64(p.MaxAttempts - 1)
	}
	return backoff.Retry(op, backoff.WithMaxRetries(exponential, retries))
}
