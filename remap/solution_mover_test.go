package remap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestSolutionMoverLinear(t *testing.T) {
	var (
		rs     = newSpace(t, 1, 4)
		linear = func(x float64) float64 { return 1 + 2*x }
		fields = lagrangianFields(t, rs, linear)
		mass   = floats.Sum(fields.RhoDetJw)
		rho    = make([]float64, rs.NumL2Dofs())
	)
	// Integral of 1+2x over [0,2]
	assert.InDelta(t, 6., mass, 1.e-12)

	sm := NewSolutionMover(rs, false)
	require.NoError(t, sm.MoveDensityLR(fields.RhoDetJw, rho))
	for i, x := range rs.DofCoordinates() {
		assert.InDelta(t, linear(x), rho[i], 1.e-12)
	}
	quadRho, err := sm.EvalDensity(rho)
	require.NoError(t, err)
	assert.InDeltaSlice(t, fields.RhoDetJw, quadRho, 1.e-12)

	sm.Lumped = true
	require.NoError(t, sm.MoveDensityLR(fields.RhoDetJw, rho))
	quadRho, err = sm.EvalDensity(rho)
	require.NoError(t, err)
	assert.InDelta(t, mass, floats.Sum(quadRho), 1.e-12)
}

func TestSolutionMoverConservation(t *testing.T) {
	for _, N := range []int{0, 1, 2, 4} {
		var (
			rs     = newSpace(t, N, 7)
			fields = lagrangianFields(t, rs, stepDensity)
			mass   = floats.Sum(fields.RhoDetJw)
			rho    = make([]float64, rs.NumL2Dofs())
		)
		for _, lumped := range []bool{false, true} {
			sm := NewSolutionMover(rs, lumped)
			require.NoError(t, sm.MoveDensityLR(fields.RhoDetJw, rho))
			quadRho, err := sm.EvalDensity(rho)
			require.NoError(t, err)
			assert.InDelta(t, mass, floats.Sum(quadRho), 1.e-11, "N = %d, lumped = %v", N, lumped)
		}
	}
}

func TestSolutionMoverErrors(t *testing.T) {
	var (
		rs     = newSpace(t, 1, 3)
		fields = lagrangianFields(t, rs, stepDensity)
		sm     = NewSolutionMover(rs, false)
		nq     = len(fields.RhoDetJw)
	)
	err := sm.MoveDensityLR(fields.RhoDetJw, make([]float64, 5))
	assert.True(t, errors.Is(err, ErrSizeMismatch))
	err = sm.MoveDensityLR(fields.RhoDetJw[:nq-1], make([]float64, 6))
	assert.True(t, errors.Is(err, ErrSizeMismatch))
	err = sm.MoveDensityLR(append(fields.RhoDetJw, 1), make([]float64, 6))
	assert.True(t, errors.Is(err, ErrSizeMismatch))
	_, err = sm.EvalDensity(make([]float64, 7))
	assert.True(t, errors.Is(err, ErrSizeMismatch))
}
