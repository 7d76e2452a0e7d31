package errors

import "github.com/pkg/errors"

var (
	// resolver errors
	ErrQueryTimeout = errors.New("dns query timed out")

	// request errors
	ErrMissingDomain = errors.New("domain parameter is missing")
	ErrRateLimited   = errors.New("rate limit exceeded")
)
