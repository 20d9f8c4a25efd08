package service

import "errors"

var (
	// ErrRateLimited means the voter's cooldown window is still active.
	// No state has been mutated beyond the cooldown key itself.
	ErrRateLimited = errors.New("vote rate limit active")

	// ErrVoterNotFound means the authenticated principal has no user row.
	ErrVoterNotFound = errors.New("voter not found")

	// ErrPostNotFound means the target post does not exist.
	ErrPostNotFound = errors.New("post not found")
)
