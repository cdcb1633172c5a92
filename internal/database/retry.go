package database

import (
	"errors"
	"fmt"
)

// ErrRetriesExhausted marks a bounded retry that never succeeded.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy bounds a retry loop. No backoff: the only retried failure
// is a uniqueness collision on generated codes, where waiting buys
// nothing.
type RetryPolicy struct {
	MaxAttempts int
}

// Do runs attempt until it succeeds or returns retry=false. When all
// attempts fail retryably, the last error is wrapped in
// ErrRetriesExhausted.
func (p RetryPolicy) Do(attempt func(try int) (retry bool, err error)) error {
	var last error
	for try := 1; try <= p.MaxAttempts; try++ {
		retry, err := attempt(try)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		last = err
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, p.MaxAttempts, last)
}
