package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// Payment flow
	ErrPaymentFailed    = errors.New("payment creation failed")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrAlreadyActivated = errors.New("invoice already activated")

	// Completion provider
	ErrProviderOverloaded = errors.New("completion provider overloaded")
	ErrProviderFailure    = errors.New("completion provider failure")
)
