package remap

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goale/utils"
)

func TestNewConvectionSystem(t *testing.T) {
	pb := utils.NewPatternBuilder(3)
	pb.AddBlock([]int{0, 1})
	pb.AddPair(1, 2)
	K := pb.Build()
	mass := []utils.Matrix{
		utils.NewMatrix(2, 2, []float64{2, 1, 1, 2}),
		utils.NewMatrix(1, 1, []float64{4}),
	}
	sys, err := NewConvectionSystem(K, mass, []int{0, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 4}, sys.MLumped)
	assert.Equal(t, 3, sys.NumDofs())
	assert.Equal(t, 2, sys.NumElements())
	assert.Equal(t, 1, sys.Element(2))
	assert.Equal(t, 1., sys.ConsistentMass(0, 1))
	assert.Equal(t, 2., sys.ConsistentMass(1, 1))
	assert.Equal(t, 0., sys.ConsistentMass(1, 2))
	for _, mk := range sys.KSmap {
		assert.True(t, mk >= 0)
	}

	_, err = NewConvectionSystem(K, mass, []int{0, 2})
	assert.True(t, errors.Is(err, ErrSizeMismatch))
	_, err = NewConvectionSystem(K, mass, []int{0, 1, 3})
	assert.True(t, errors.Is(err, ErrSizeMismatch))
	mass[1] = utils.NewMatrix(1, 1, []float64{0})
	_, err = NewConvectionSystem(K, mass, []int{0, 2, 3})
	assert.True(t, errors.Is(err, ErrNonPositiveMass))
	mass[1] = utils.NewMatrix(1, 1, []float64{-1})
	_, err = NewConvectionSystem(K, mass, []int{0, 2, 3})
	assert.True(t, errors.Is(err, ErrNonPositiveMass))
}

func TestH1System(t *testing.T) {
	rs := newSpace(t, 1, 6)
	w := []float64{0, 0.05, -0.1, 0.1, 0.02, 0, 0}
	Kh, Mh, err := rs.AssembleH1(w)
	require.NoError(t, err)
	hs, err := NewH1System(Kh, Mh)
	require.NoError(t, err)
	// Positions are linear, their derivative is the mesh velocity
	du := make([]float64, 7)
	require.NoError(t, hs.CalcHOSolution(rs.NodePositions(), du))
	for i := range w {
		assert.InDelta(t, w[i], du[i], 1.e-13)
	}
	assert.True(t, errors.Is(hs.CalcHOSolution(du[:3], du), ErrSizeMismatch))

	// Dense symmetric mass uses the dense factorization
	Md := mat.NewSymDense(7, nil)
	for i := 0; i < 7; i++ {
		for j := i; j < 7; j++ {
			Md.SetSym(i, j, Mh.At(i, j))
		}
	}
	hs, err = NewH1System(Kh, Md)
	require.NoError(t, err)
	du2 := make([]float64, 7)
	require.NoError(t, hs.CalcHOSolution(rs.NodePositions(), du2))
	for i := range w {
		assert.InDelta(t, du[i], du2[i], 1.e-13)
	}

	_, err = NewH1System(Kh, mat.NewSymDense(7, nil))
	assert.True(t, errors.Is(err, ErrSingularMass))
	_, err = NewH1System(Kh, mat.NewSymDense(3, nil))
	assert.True(t, errors.Is(err, ErrSizeMismatch))
}

func TestRandomSystemSymmetryMap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 10; trial++ {
		sys := randomSystem(t, rng, 3+rng.Intn(10))
		for i := 0; i < sys.NumDofs(); i++ {
			begin, end := sys.K.RowRange(i)
			for k := begin; k < end; k++ {
				mk := sys.KSmap[k]
				require.True(t, mk >= 0)
				assert.Equal(t, i, sys.K.Col(mk))
				assert.Equal(t, sys.K.At(sys.K.Col(k), i), sys.K.Data()[mk])
			}
		}
	}
}
