package credkit

import "errors"

var (
	// ErrEncoding is an exported constant or variable used by the credential manager.
	ErrEncoding = errors.New("input cannot be encoded for the credential primitive")
	// ErrSecretMissing is an exported constant or variable used by the credential manager.
	ErrSecretMissing = errors.New("signing secret required")
	// ErrBuilderReused is an exported constant or variable used by the credential manager.
	ErrBuilderReused = errors.New("builder already used")
)
