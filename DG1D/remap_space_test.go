package DG1D

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goale/types"
)

func newTestSpace(t *testing.T, N, K int) *RemapSpace1D {
	VX, EToV := SimpleMesh1D(0, 2, K)
	rs, err := NewRemapSpace1D(N, VX, EToV, N+2)
	require.NoError(t, err)
	return rs
}

func TestRemapSpace1D_Layout(t *testing.T) {
	rs := newTestSpace(t, 3, 4)
	assert.Equal(t, 1, rs.Dim())
	assert.Equal(t, 5, rs.NumNodes())
	assert.Equal(t, 16, rs.NumL2Dofs())
	assert.Equal(t, 4, rs.NumElements())
	assert.Equal(t, []int{0, 4, 8, 12, 16}, rs.ElementOffsets())
	X := rs.DofCoordinates()
	assert.True(t, near(X[1], 0.1381966011))
	assert.True(t, near(X[5], 0.6381966011))
	assert.True(t, near(X[14], 1.8618033988))
	assert.Equal(t, 2., X[15])

	// Positions are copied in and out
	x := rs.NodePositions()
	x[0] = -1
	assert.Equal(t, 0., rs.NodePositions()[0])
	require.NoError(t, rs.SetNodePositions(x))
	assert.Equal(t, -1., rs.NodePositions()[0])
	x[2] = 2
	err := rs.SetNodePositions(x)
	assert.True(t, errors.Is(err, types.ErrDegenerateElement))
	assert.Equal(t, 1., rs.NodePositions()[2])
	assert.Error(t, rs.SetNodePositions(x[:3]))
}

func TestRemapSpace1D_AssembleL2(t *testing.T) {
	for _, N := range []int{0, 1, 2, 4} {
		var (
			rs = newTestSpace(t, N, 5)
			w  = []float64{0.1, -0.2, 0.3, 0.05, -0.1, 0.2}
		)
		K, mass, err := rs.AssembleL2(w)
		require.NoError(t, err)
		nr, nc := K.Dims()
		assert.Equal(t, rs.NumL2Dofs(), nr)
		assert.Equal(t, rs.NumL2Dofs(), nc)
		// Constants are transported exactly
		ones := make([]float64, nr)
		for i := range ones {
			ones[i] = 1
		}
		Ku := make([]float64, nr)
		K.MulVec(ones, Ku)
		for i := range Ku {
			assert.InDeltaf(t, 0., Ku[i], 1.e-13, "N = %d, row %d", N, i)
		}
		// Structurally symmetric pattern
		for k, mirror := range K.SymmetryMap() {
			assert.Truef(t, mirror >= 0, "N = %d, entry %d has no mirror", N, k)
		}
		// Mass sums to the domain length
		var total float64
		for _, M := range mass {
			for _, v := range M.DataP {
				total += v
			}
		}
		assert.InDelta(t, 2., total, 1.e-12)
		// Rebuilding gives identical values
		K2, _, err := rs.AssembleL2(w)
		require.NoError(t, err)
		assert.Equal(t, K.Data(), K2.Data())
	}
}

func TestRemapSpace1D_FiniteVolumeUpwind(t *testing.T) {
	// Order zero reduces to first order upwinding of cell values
	var (
		rs = newTestSpace(t, 0, 4)
		w  = []float64{0.1, 0.1, 0.1, 0.1, 0.1}
	)
	K, mass, err := rs.AssembleL2(w)
	require.NoError(t, err)
	for k := 0; k < 4; k++ {
		assert.InDelta(t, 0.5, mass[k].At(0, 0), 1.e-14)
	}
	// Mesh moving right picks up the value to the right
	for i := 0; i < 3; i++ {
		assert.InDelta(t, -0.1, K.At(i, i), 1.e-15)
		assert.InDelta(t, 0.1, K.At(i, i+1), 1.e-15)
		assert.Equal(t, 0., K.At(i+1, i))
	}
	assert.Equal(t, 0., K.At(3, 3))
	// Flip the mesh velocity
	for i := range w {
		w[i] = -0.1
	}
	K, _, err = rs.AssembleL2(w)
	require.NoError(t, err)
	for i := 1; i < 4; i++ {
		assert.InDelta(t, -0.1, K.At(i, i), 1.e-15)
		assert.InDelta(t, 0.1, K.At(i, i-1), 1.e-15)
	}
	assert.Equal(t, 0., K.At(0, 0))
}

func TestRemapSpace1D_AssembleH1(t *testing.T) {
	var (
		rs = newTestSpace(t, 1, 4)
		w  = []float64{0, 0.1, 0.2, 0.1, 0}
	)
	K, M, err := rs.AssembleH1(w)
	require.NoError(t, err)
	ones := []float64{1, 1, 1, 1, 1}
	Ku := make([]float64, 5)
	K.MulVec(ones, Ku)
	for i := range Ku {
		assert.InDelta(t, 0., Ku[i], 1.e-15)
	}
	// Linear fields are differentiated exactly, M du = K x gives du = w
	x := rs.NodePositions()
	Kx := make([]float64, 5)
	K.MulVec(x, Kx)
	var chol mat.BandCholesky
	Mb, ok := M.(*mat.SymBandDense)
	require.True(t, ok)
	require.True(t, chol.Factorize(Mb))
	du := mat.NewVecDense(5, nil)
	require.NoError(t, chol.SolveVecTo(du, mat.NewVecDense(5, Kx)))
	for i := range w {
		assert.InDelta(t, w[i], du.AtVec(i), 1.e-13)
	}
	assert.InDelta(t, 0.5/3., M.At(0, 0), 1.e-15)
	assert.InDelta(t, 1./3., M.At(1, 1), 1.e-15)
	assert.InDelta(t, 0.5/6., M.At(1, 2), 1.e-15)
}

func TestRemapSpace1D_ElementQuadrature(t *testing.T) {
	var (
		N  = 2
		rs = newTestSpace(t, N, 4)
	)
	for k := 0; k < 4; k++ {
		phi, detJw, err := rs.ElementQuadrature(k)
		require.NoError(t, err)
		nr, nc := phi.Dims()
		assert.Equal(t, N+2, nr)
		assert.Equal(t, N+1, nc)
		var h float64
		for _, v := range detJw {
			h += v
		}
		assert.InDelta(t, 0.5, h, 1.e-14)
	}
	_, _, err := rs.ElementQuadrature(4)
	assert.Error(t, err)
	assert.Equal(t, 16, len(rs.QuadCoordinates()))

	u := make([]float64, rs.NumL2Dofs())
	for i, x := range rs.DofCoordinates() {
		u[i] = 3 * x
	}
	avg, err := rs.ElementAverages(u)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, avg[0], 1.e-13)
	assert.InDelta(t, 5.25, avg[3], 1.e-13)
}

func TestNewRemapSpace1D_Errors(t *testing.T) {
	VX, EToV := SimpleMesh1D(0, 1, 3)
	_, err := NewRemapSpace1D(3, VX, EToV, 2)
	assert.Error(t, err)
	VX.DataP[1], VX.DataP[2] = VX.DataP[2], VX.DataP[1]
	_, err = NewRemapSpace1D(1, VX, EToV, 3)
	assert.True(t, errors.Is(err, types.ErrDegenerateElement))
}
