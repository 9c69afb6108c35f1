package remap

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goale/utils"
)

// MeshProvider owns the mesh and the discrete spaces of the remap. H1 values
// of vector quantities are stored component-major, all x then all y ...
type MeshProvider interface {
	Dim() int
	NumNodes() int
	NumL2Dofs() int
	NumElements() int
	// ElementOffsets has NumElements()+1 entries, the L2 DOFs of element k
	// are the range [offsets[k], offsets[k+1]).
	ElementOffsets() []int
	NodePositions() []float64
	SetNodePositions(x []float64) error
	// AssembleL2 returns the transport operator for mesh velocity w on the
	// current mesh, with a structurally symmetric pattern, and the consistent
	// mass block of every element.
	AssembleL2(w []float64) (K utils.CSR, mass []utils.Matrix, err error)
	// AssembleH1 returns the transport operator of the continuous space and
	// its consistent mass matrix.
	AssembleH1(w []float64) (K utils.CSR, M mat.Symmetric, err error)
	// ElementQuadrature returns the L2 basis at the quadrature points of
	// element k, one row per point, and the Jacobian weighted weights.
	ElementQuadrature(k int) (phi utils.Matrix, detJw []float64, err error)
}

type HighOrderSolver interface {
	CalcHOSolution(sys *ConvectionSystem, u, du []float64) error
}

type LowOrderSolver interface {
	ComputeDiscreteUpwindMatrix(sys *ConvectionSystem) (D utils.CSR, err error)
	CalcLOSolution(sys *ConvectionSystem, u, du []float64) error
}

type FluxLimiter interface {
	SetDt(dt float64)
	CalcFCTSolution(sys *ConvectionSystem, u, duHO, duLO, uMin, uMax, du []float64) error
}

// TimeDependentOperator is the right hand side dS = F(S, t) of an ODE.
type TimeDependentOperator interface {
	Mult(S, dS []float64) error
	SetTime(t float64)
}

type ODESolver interface {
	Init(f TimeDependentOperator)
	// Step advances S in place from t by dt and returns the new time.
	Step(S []float64, t, dt float64) (tNew float64, err error)
}
