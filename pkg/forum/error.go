package forum

import "errors"

var (
	// ErrConfiguration is returned when a required credential, connection
	// string or provider setting is missing or invalid.
	ErrConfiguration = errors.New("configuration error")

	// ErrUpstream is returned when the embedding service call fails.
	ErrUpstream = errors.New("embedding service error")

	// ErrStorage is returned when the similarity query against the backing
	// store fails.
	ErrStorage = errors.New("storage error")

	// ErrValidation is returned when search input is malformed.
	ErrValidation = errors.New("invalid search request")
)
