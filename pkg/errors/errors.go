// Package errors provides common domain error types for the recap CLI.
//
// This package defines sentinel errors for conditions that cross package
// boundaries (validation failures, backend transport failures, and payload
// normalization failures) so callers can branch with errors.Is() instead of
// string matching.
//
// Usage:
//
//	import rerrors "github.com/recaplabs/recap-cli/pkg/errors"
//
//	// Return a domain error
//	return fmt.Errorf("transcript is empty: %w", rerrors.ErrValidation)
//
//	// Check for domain errors
//	if rerrors.IsValidation(err) {
//	    // notify the user, skip the network call
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrValidation indicates invalid input (empty transcript, empty question).
	// Raised before any network call is made.
	ErrValidation = errors.New("validation error")

	// ErrTransport indicates a network failure or a non-2xx backend response.
	// For analysis calls this aborts the whole attempt; for chat it triggers
	// the local heuristic responder.
	ErrTransport = errors.New("transport error")

	// ErrMalformedPayload indicates a backend payload that could not be
	// normalized into a canonical record. Callers substitute the fallback
	// record rather than surfacing this to the user.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNotFound indicates the requested resource (e.g. a stored meeting)
	// was not found.
	ErrNotFound = errors.New("not found")

	// ErrNoCredentials indicates no API token is stored or configured.
	ErrNoCredentials = errors.New("no credentials stored")
)

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsTransport reports whether any error in err's chain is ErrTransport.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsMalformedPayload reports whether any error in err's chain is ErrMalformedPayload.
func IsMalformedPayload(err error) bool {
	return errors.Is(err, ErrMalformedPayload)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNoCredentials reports whether any error in err's chain is ErrNoCredentials.
func IsNoCredentials(err error) bool {
	return errors.Is(err, ErrNoCredentials)
}
