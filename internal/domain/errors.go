package domain

import "errors"

var (
	// ErrThrottled is returned when the remote API rejects a call for exceeding its rate limit
	ErrThrottled = errors.New("request throttled by remote API")

	// ErrRemoteFailure is returned when a remote request fails for any other reason
	ErrRemoteFailure = errors.New("remote API request failed")

	// ErrNotFound is returned when the remote API has no data for an identifier
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrLookupNotConfigured is returned when the seller name lookup has no credential
	ErrLookupNotConfigured = errors.New("seller lookup not configured")

	// ErrEmptyStore is returned when the seller store exists but holds no data
	ErrEmptyStore = errors.New("seller store is empty")
)
