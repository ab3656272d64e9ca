// CLAUDE:SUMMARY Sentinel errors for the immo service: unknown session, missing key, invalid input.
package immo

import "errors"

// ErrSessionNotFound is returned when a session ID does not exist or has expired.
var ErrSessionNotFound = errors.New("immo: session not found")

// ErrMissingAPIKey is returned when an operation needs the model but no API key is configured.
var ErrMissingAPIKey = errors.New("immo: no API key configured")

// ErrInvalidInput is returned when request input fails validation.
var ErrInvalidInput = errors.New("immo: invalid input")
