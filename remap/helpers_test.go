package remap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/goale/DG1D"
	"github.com/notargets/goale/utils"
)

func newSpace(t *testing.T, N, K int) *DG1D.RemapSpace1D {
	VX, EToV := DG1D.SimpleMesh1D(0, 2, K)
	rs, err := DG1D.NewRemapSpace1D(N, VX, EToV, N+2)
	require.NoError(t, err)
	return rs
}

// lagrangianFields samples rho, with zero velocity and energy equal to rho.
func lagrangianFields(t *testing.T, rs *DG1D.RemapSpace1D, rho func(x float64) float64) (fields LagrangianFields) {
	var (
		xq = rs.QuadCoordinates()
		q  int
	)
	fields.RhoDetJw = make([]float64, len(xq))
	for k := 0; k < rs.NumElements(); k++ {
		_, detJw, err := rs.ElementQuadrature(k)
		require.NoError(t, err)
		for _, w := range detJw {
			fields.RhoDetJw[q] = rho(xq[q]) * w
			q++
		}
	}
	fields.Velocity = make([]float64, rs.NumNodes())
	fields.Energy = make([]float64, rs.NumL2Dofs())
	for i, x := range rs.DofCoordinates() {
		fields.Energy[i] = rho(x)
	}
	return
}

func stepDensity(x float64) float64 {
	if x < 1 {
		return 1
	}
	return 5
}

// randomSystem couples elements of random size through random entries of a
// structurally symmetric pattern, with SPD mass blocks.
func randomSystem(t *testing.T, rng *rand.Rand, NE int) *ConvectionSystem {
	offsets := make([]int, NE+1)
	for k := 0; k < NE; k++ {
		offsets[k+1] = offsets[k] + 1 + rng.Intn(3)
	}
	N := offsets[NE]
	pb := utils.NewPatternBuilder(N)
	mass := make([]utils.Matrix, NE)
	for k := 0; k < NE; k++ {
		n := offsets[k+1] - offsets[k]
		dofs := make([]int, n)
		for i := range dofs {
			dofs[i] = offsets[k] + i
		}
		pb.AddBlock(dofs)
		a, b := 0.5+rng.Float64(), 0.2*rng.Float64()
		mass[k] = utils.NewMatrix(n, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				mass[k].Set(i, j, b)
			}
			mass[k].Set(i, i, a+b)
		}
	}
	for e := 0; e < 2*N; e++ {
		pb.AddPair(rng.Intn(N), rng.Intn(N))
	}
	K := pb.Build()
	for i := range K.Data() {
		K.Data()[i] = 2*rng.Float64() - 1
	}
	sys, err := NewConvectionSystem(K, mass, offsets)
	require.NoError(t, err)
	return sys
}

func randomField(rng *rand.Rand, N int) (u []float64) {
	u = make([]float64, N)
	for i := range u {
		u[i] = 1 + 4*rng.Float64()
	}
	return
}
