package service

import "errors"

// User-facing errors returned by Workflow operations.
var (
	ErrNoLocation      = errors.New("select a location on the map first")
	ErrMarkerNotFound  = errors.New("marker not found")
	ErrNotConfirmed    = errors.New("deletion was not confirmed")
	ErrTownRequired    = errors.New("town name is required")
	ErrLocatorDisabled = errors.New("town lookup is disabled")
)
