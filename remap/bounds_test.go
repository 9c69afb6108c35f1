package remap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBounds(t *testing.T) {
	rs := newSpace(t, 0, 4)
	K, mass, err := rs.AssembleL2(make([]float64, 5))
	require.NoError(t, err)
	sys, err := NewConvectionSystem(K, mass, rs.ElementOffsets())
	require.NoError(t, err)
	var (
		u          = []float64{1, 2, 3, 4}
		uMin, uMax = make([]float64, 4), make([]float64, 4)
	)
	require.NoError(t, ComputeBounds(sys, u, 1, uMin, uMax))
	assert.Equal(t, []float64{1, 1, 2, 3}, uMin)
	assert.Equal(t, []float64{2, 3, 4, 4}, uMax)
	require.NoError(t, ComputeBounds(sys, u, 2, uMin, uMax))
	assert.Equal(t, []float64{1, 1, 1, 2}, uMin)
	assert.Equal(t, []float64{3, 4, 4, 4}, uMax)
	require.NoError(t, ComputeBounds(sys, u, 10, uMin, uMax))
	assert.Equal(t, []float64{1, 1, 1, 1}, uMin)
	assert.Equal(t, []float64{4, 4, 4, 4}, uMax)

	assert.Error(t, ComputeBounds(sys, u, 0, uMin, uMax))
	assert.Error(t, ComputeBounds(sys, u[:3], 1, uMin, uMax))
}

func TestComputeBoundsHighOrder(t *testing.T) {
	// Element extrema reach every DOF of the neighbor element coupled through a face
	rs := newSpace(t, 2, 3)
	K, mass, err := rs.AssembleL2(make([]float64, 4))
	require.NoError(t, err)
	sys, err := NewConvectionSystem(K, mass, rs.ElementOffsets())
	require.NoError(t, err)
	var (
		u          = []float64{1, 0, 2, 5, 6, 4, 9, 8, 7}
		uMin, uMax = make([]float64, 9), make([]float64, 9)
	)
	require.NoError(t, ComputeBounds(sys, u, 1, uMin, uMax))
	assert.Equal(t, []float64{0, 0, 0, 0, 4, 4, 4, 7, 7}, uMin)
	assert.Equal(t, []float64{2, 2, 6, 6, 6, 9, 9, 9, 9}, uMax)
}
