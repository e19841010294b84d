package common

import "errors"

// Error taxonomy of the identity engine. Callers branch with errors.Is; all
// wrapping uses fmt.Errorf("...: %w", err) so the sentinel survives.
var (
	// ErrInvalidInput marks a request with an empty required field or an
	// additional property outside the configured schema. No side effects.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a lookup miss. A miss is a normal result, not a
	// failure; facade methods translate it into an empty response.
	ErrNotFound = errors.New("not found")

	// ErrIncompatibleMerge marks a merge of nodes with differing name or
	// category. The operation is refused without mutation.
	ErrIncompatibleMerge = errors.New("incompatible merge")

	// ErrAmbiguousIdentity marks two distinct person roots found for nodes
	// claimed to be the same person. Resolution depends on identity mode and
	// is always recorded in node history.
	ErrAmbiguousIdentity = errors.New("ambiguous identity")

	// ErrStoreUnavailable marks a backend store I/O failure. Fatal for the
	// current batch; committed nodes and edges remain valid.
	ErrStoreUnavailable = errors.New("store unavailable")
)
