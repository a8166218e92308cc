package app

import "errors"

// Failure taxonomy for the monetization flows. Pipeline steps wrap their
// underlying errors with one of these sentinels so the API boundary can map
// each kind without inspecting step internals.
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrStorageFailure         = errors.New("image storage failure")
	ErrProvisioningFailure    = errors.New("payment link provisioning failure")
	ErrPersistenceFailure     = errors.New("persistence failure")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrUnsupportedCurrency    = errors.New("unsupported currency")
	ErrMissingProfileName     = errors.New("first and last name are required")
)
