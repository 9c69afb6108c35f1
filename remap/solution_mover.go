package remap

import (
	"fmt"

	"github.com/notargets/goale/utils"
)

// SolutionMover projects density samples taken at quadrature points onto the
// L2 space, element by element. The samples are rho*detJ*w products, so their
// sum is the mass that the projection preserves.
type SolutionMover struct {
	provider MeshProvider
	Lumped   bool
}

func NewSolutionMover(provider MeshProvider, lumped bool) *SolutionMover {
	return &SolutionMover{provider: provider, Lumped: lumped}
}

// MoveDensityLR solves M_k rho_k = Phi_k^T quadRho_k, or divides by the lumped
// mass instead when Lumped is set.
func (sm *SolutionMover) MoveDensityLR(quadRho, rho []float64) (err error) {
	var (
		NE      = sm.provider.NumElements()
		offsets = sm.provider.ElementOffsets()
		q0      int
	)
	if len(rho) != offsets[NE] {
		return fmt.Errorf("density has %d values for %d DOFs: %w", len(rho), offsets[NE], ErrSizeMismatch)
	}
	for k := 0; k < NE; k++ {
		var (
			phi   utils.Matrix
			detJw []float64
		)
		if phi, detJw, err = sm.provider.ElementQuadrature(k); err != nil {
			return
		}
		var (
			nq, nd     = phi.Dims()
			begin, end = offsets[k], offsets[k+1]
		)
		if nd != end-begin {
			return fmt.Errorf("element %d has %d DOFs and %d basis functions: %w", k, end-begin, nd, ErrSizeMismatch)
		}
		if q0+nq > len(quadRho) {
			return fmt.Errorf("have %d density samples, element %d needs %d more: %w",
				len(quadRho), k, q0+nq-len(quadRho), ErrSizeMismatch)
		}
		b := make([]float64, nd)
		phi.Transpose().MulVec(quadRho[q0:q0+nq], b)
		// Element mass from the same rule, M = Phi^T diag(detJw) Phi
		M := utils.NewMatrix(nd, nd)
		for q := 0; q < nq; q++ {
			for i := 0; i < nd; i++ {
				pi := phi.At(q, i) * detJw[q]
				for j := 0; j < nd; j++ {
					M.DataP[i*nd+j] += pi * phi.At(q, j)
				}
			}
		}
		if sm.Lumped {
			mL := M.SumRows()
			for i := 0; i < nd; i++ {
				if !(mL.AtVec(i) > 0) {
					return fmt.Errorf("element %d DOF %d: %w", k, i, ErrNonPositiveMass)
				}
				rho[begin+i] = b[i] / mL.AtVec(i)
			}
		} else {
			Minv, err := M.Inverse()
			if err != nil || utils.IsNan(Minv) {
				return fmt.Errorf("element %d: %w", k, ErrSingularMass)
			}
			Minv.MulVec(b, rho[begin:end])
		}
		q0 += nq
	}
	if q0 != len(quadRho) {
		return fmt.Errorf("have %d density samples, mesh has %d: %w", len(quadRho), q0, ErrSizeMismatch)
	}
	return
}

// EvalDensity returns rho*detJ*w at the quadrature points, the inverse of MoveDensityLR.
func (sm *SolutionMover) EvalDensity(rho []float64) (quadRho []float64, err error) {
	var (
		NE      = sm.provider.NumElements()
		offsets = sm.provider.ElementOffsets()
	)
	if len(rho) != offsets[NE] {
		return nil, fmt.Errorf("density has %d values for %d DOFs: %w", len(rho), offsets[NE], ErrSizeMismatch)
	}
	for k := 0; k < NE; k++ {
		var (
			phi   utils.Matrix
			detJw []float64
		)
		if phi, detJw, err = sm.provider.ElementQuadrature(k); err != nil {
			return
		}
		nq, _ := phi.Dims()
		rq := make([]float64, nq)
		phi.MulVec(rho[offsets[k]:offsets[k+1]], rq)
		for q := range rq {
			quadRho = append(quadRho, rq[q]*detJw[q])
		}
	}
	return
}
