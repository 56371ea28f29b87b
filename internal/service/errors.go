package service

import "errors"

var (
	// ErrNotFound is returned when the referenced product or purchase does not exist
	ErrNotFound = errors.New("not found")

	// ErrLocked is returned when another mutation for the same product is in flight
	ErrLocked = errors.New("product is locked by another mutation")

	// ErrUnsupportedVersion is returned for snapshots this build cannot import
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)
