// Package upstream holds error classification shared by the bank and
// brokerage API clients.
package upstream

import "errors"

var (
	// ErrNotConfigured means the client has no credentials and should be
	// skipped rather than called.
	ErrNotConfigured = errors.New("upstream credentials not configured")

	// ErrRateLimited means the upstream answered 429. Retrying other
	// accounts against the same upstream would only burn more quota, so
	// the whole sync pass aborts on this error.
	ErrRateLimited = errors.New("upstream rate limit exceeded")
)
