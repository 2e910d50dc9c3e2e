package oracle

import "errors"

var (
	// ErrUnavailable wraps a transport/availability failure from the
	// oracle. The caller's in-flight operation fails; the tree itself is
	// left invariant-consistent.
	ErrUnavailable = errors.New("oracle: unavailable")

	// ErrInconsistent signals the oracle contradicted a previously
	// established fact — e.g. two installed pivots are now reported
	// equal, or a sorted sequence came back out of order. This is a
	// caller-observable sign the oracle/key state is corrupt, distinct
	// from a plain transport failure.
	ErrInconsistent = errors.New("oracle: inconsistent response")
)
