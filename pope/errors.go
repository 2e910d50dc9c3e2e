package pope

import "errors"

var (
	// ErrEmptyCiphertext is returned synchronously, with no state change,
	// for an Insert of an empty ciphertext or a Range with an empty low
	// or high bound.
	ErrEmptyCiphertext = errors.New("pope: empty ciphertext")

	// ErrInvalidFanout is returned by New when l is not positive.
	ErrInvalidFanout = errors.New("pope: fan-out must be positive")
)
