package quiz

import "errors"

// User-facing error taxonomy. Only these kinds cross the core boundary into
// HTTP status codes; any other error is a defect and aborts the operation
// without persisting partial state.
var (
	// ErrNoFactsAvailable: no active fact exists to build a challenge from.
	// Not the caller's fault.
	ErrNoFactsAvailable = errors.New("no facts available")

	// ErrAlreadyResponded: the targeted challenge already has its one response.
	ErrAlreadyResponded = errors.New("already responded")

	// ErrBadRequest: malformed or out-of-range submission (wrong type tag,
	// confidence outside bounds, reversed interval).
	ErrBadRequest = errors.New("bad request")

	// ErrChallengeNotFound: no challenge with that uid belongs to the user.
	ErrChallengeNotFound = errors.New("challenge not found")
)
