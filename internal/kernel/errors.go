package kernel

import "errors"

var (
	// ErrFormat reports a grammar violation, missing rows or unreadable input.
	ErrFormat = errors.New("invalid kernel format")

	// ErrSize reports a non-positive or inconsistent kernel size.
	ErrSize = errors.New("invalid kernel size")

	// ErrAllocation reports a kernel too large to materialise.
	ErrAllocation = errors.New("kernel allocation failed")
)
