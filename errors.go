package bumper

import "github.com/kailas-cloud/bumper/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMalformedParams  = domain.ErrMalformedParams
	ErrInvalidResult    = domain.ErrInvalidResult
	ErrTransportFailure = domain.ErrTransportFailure
	ErrFixesAttached    = domain.ErrFixesAttached
)
