package remap

import (
	"fmt"
	"math"

	"github.com/notargets/goale/utils"
)

// DiscreteUpwindLOSolver adds the smallest symmetric graph viscosity to K
// that makes every off-diagonal entry non-negative.
type DiscreteUpwindLOSolver struct{}

// ComputeDiscreteUpwindMatrix builds D with d_ij = max(0, -K_ij, -K_ji),
// D_ij = K_ij + d_ij and D_ii = -sum_{j!=i} D_ij, and stores D and d_ij in sys.
func (lo DiscreteUpwindLOSolver) ComputeDiscreteUpwindMatrix(sys *ConvectionSystem) (D utils.CSR, err error) {
	var (
		N     = sys.NumDofs()
		Kdata = sys.K.Data()
	)
	D = sys.K.Copy()
	visc := make([]float64, len(Kdata))
	Ddata := D.Data()
	for i := 0; i < N; i++ {
		var (
			begin, end = D.RowRange(i)
			diag       = -1
			rowSum     float64
		)
		for k := begin; k < end; k++ {
			j := D.Col(k)
			if j == i {
				diag = k
				continue
			}
			mk := sys.KSmap[k]
			if mk < 0 {
				err = fmt.Errorf("entry (%d,%d): %w", i, j, ErrMissingMirror)
				return
			}
			dij := math.Max(0, math.Max(-Kdata[k], -Kdata[mk]))
			visc[k] = dij
			Ddata[k] = Kdata[k] + dij
			rowSum += Ddata[k]
		}
		if diag < 0 {
			err = fmt.Errorf("diagonal entry (%d,%d): %w", i, i, ErrMissingMirror)
			return
		}
		Ddata[diag] = -rowSum
	}
	sys.D, sys.Visc = D, visc
	return
}

// CalcLOSolution computes du = (D u) / M_lumped, building D when needed.
func (lo DiscreteUpwindLOSolver) CalcLOSolution(sys *ConvectionSystem, u, du []float64) (err error) {
	if err = sys.checkLength("u", u); err != nil {
		return
	}
	if err = sys.checkLength("du", du); err != nil {
		return
	}
	if sys.Visc == nil {
		if _, err = lo.ComputeDiscreteUpwindMatrix(sys); err != nil {
			return
		}
	}
	sys.D.MulVec(u, du)
	for i, m := range sys.MLumped {
		if !(m > 0) {
			return fmt.Errorf("DOF %d has lumped mass %g: %w", i, m, ErrNonPositiveMass)
		}
		du[i] /= m
	}
	return
}

// LowOrderTimeStep returns the largest dt for which u + dt (D u) / m is a
// convex combination of neighbor values, +Inf when D has no coupling.
func LowOrderTimeStep(D utils.CSR, m []float64) (dt float64) {
	dt = math.Inf(1)
	for i := range m {
		k := D.Index(i, i)
		if k < 0 {
			continue
		}
		if offSum := -D.Data()[k]; offSum > 0 {
			dt = math.Min(dt, m[i]/offSum)
		}
	}
	return
}
