package domain

import "errors"

var (
	// ErrMalformedParams signals invalid search parameters (pagination bounds, attribute names, empty ids).
	ErrMalformedParams = errors.New("malformed params")
	// ErrInvalidResult signals a backend response that violates the changeset/hunks layout.
	ErrInvalidResult = errors.New("invalid result")
	// ErrTransportFailure signals a failed request to the search backend (network, status or decode).
	ErrTransportFailure = errors.New("transport failure")
	// ErrFixesAttached signals a second attempt to attach fixes to the same report.
	ErrFixesAttached = errors.New("fixes already attached")
)
