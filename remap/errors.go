package remap

import (
	"errors"

	"github.com/notargets/goale/types"
)

// Precondition violations, each aborts the remap step. Callers test with errors.Is.
var (
	ErrSingularMass      = errors.New("singular local mass block")
	ErrNonPositiveMass   = errors.New("non-positive lumped mass")
	ErrMissingMirror     = errors.New("sparsity pattern is missing a mirror entry")
	ErrInvertedBounds    = errors.New("lower bound exceeds upper bound")
	ErrTimeStepUnset     = errors.New("time step is unset or non-positive")
	ErrSizeMismatch      = errors.New("size mismatch")
	ErrDegenerateElement = types.ErrDegenerateElement
)

// Verification failures, only reported when Options.Verify is set.
var (
	ErrConservation   = errors.New("conservation check failed")
	ErrBoundsViolated = errors.New("bounds check failed")
)

// Call order errors of RemapAdvector.
var (
	ErrNotInitialized = errors.New("remap has no start state, call InitFromLagr first")
	ErrStaleState     = errors.New("remap state is from a failed remap")
)
