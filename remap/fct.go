package remap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// FluxBasedFCT limits the antidiffusive fluxes that turn the low order
// derivative into the high order one, so that u + dt du stays within the
// DOF bounds. The limited fluxes are antisymmetric, so the mass weighted sum
// of du equals that of the low order derivative.
type FluxBasedFCT struct {
	dt float64
	// Limiter coefficients of the last call, for diagnostics
	CoeffPos, CoeffNeg []float64
}

func NewFluxBasedFCT() *FluxBasedFCT { return &FluxBasedFCT{} }

func (fct *FluxBasedFCT) SetDt(dt float64) { fct.dt = dt }

func (fct *FluxBasedFCT) Dt() float64 { return fct.dt }

func (fct *FluxBasedFCT) CalcFCTSolution(sys *ConvectionSystem, u, duHO, duLO, uMin, uMax, du []float64) (err error) {
	var (
		N  = sys.NumDofs()
		dt = fct.dt
		m  = sys.MLumped
	)
	if !(dt > 0) {
		return fmt.Errorf("limiter dt = %g: %w", dt, ErrTimeStepUnset)
	}
	for _, v := range []struct {
		name string
		data []float64
	}{{"u", u}, {"duHO", duHO}, {"duLO", duLO}, {"uMin", uMin}, {"uMax", uMax}, {"du", du}} {
		if err = sys.checkLength(v.name, v.data); err != nil {
			return
		}
	}
	for i := 0; i < N; i++ {
		if uMin[i] > uMax[i] {
			return fmt.Errorf("DOF %d has bounds [%g,%g]: %w", i, uMin[i], uMax[i], ErrInvertedBounds)
		}
	}
	if sys.Visc == nil {
		if _, err = (DiscreteUpwindLOSolver{}).ComputeDiscreteUpwindMatrix(sys); err != nil {
			return
		}
	}
	if len(fct.CoeffPos) != N {
		fct.CoeffPos, fct.CoeffNeg = make([]float64, N), make([]float64, N)
	}
	if floats.Equal(duHO, duLO) {
		// Nothing to correct
		copy(du, duLO)
		for i := 0; i < N; i++ {
			fct.CoeffPos[i], fct.CoeffNeg[i] = 1, 1
		}
		return
	}

	// Antidiffusive fluxes, assembled once per edge and mirrored
	var (
		K    = sys.K
		flux = make([]float64, K.NNZ())
	)
	for i := 0; i < N; i++ {
		begin, end := K.RowRange(i)
		for k := begin; k < end; k++ {
			j := K.Col(k)
			if j <= i {
				continue
			}
			mk := sys.KSmap[k]
			if mk < 0 {
				return fmt.Errorf("entry (%d,%d): %w", i, j, ErrMissingMirror)
			}
			f := sys.ConsistentMass(i, j)*(duHO[i]-duHO[j]) + sys.Visc[k]*(u[i]-u[j])
			flux[k], flux[mk] = f, -f
		}
	}

	PPos, PNeg := make([]float64, N), make([]float64, N)
	for i := 0; i < N; i++ {
		begin, end := K.RowRange(i)
		for k := begin; k < end; k++ {
			PPos[i] += math.Max(0, flux[k])
			PNeg[i] += math.Min(0, flux[k])
		}
	}

	for i := 0; i < N; i++ {
		uLO := u[i] + dt*duLO[i]
		QPos := math.Max(0, m[i]*(uMax[i]-uLO)/dt)
		QNeg := math.Min(0, m[i]*(uMin[i]-uLO)/dt)
		fct.CoeffPos[i], fct.CoeffNeg[i] = 1, 1
		if PPos[i] > 0 {
			fct.CoeffPos[i] = math.Min(1, QPos/PPos[i])
		}
		if PNeg[i] < 0 {
			fct.CoeffNeg[i] = math.Min(1, QNeg/PNeg[i])
		}
	}

	for i := 0; i < N; i++ {
		var (
			begin, end = K.RowRange(i)
			sum        float64
		)
		for k := begin; k < end; k++ {
			var (
				j     = K.Col(k)
				f     = flux[k]
				alpha float64
			)
			if f >= 0 {
				alpha = math.Min(fct.CoeffPos[i], fct.CoeffNeg[j])
			} else {
				alpha = math.Min(fct.CoeffNeg[i], fct.CoeffPos[j])
			}
			sum += alpha * f
		}
		du[i] = duLO[i] + sum/m[i]
	}
	return
}
