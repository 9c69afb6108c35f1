package remap

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goale/utils"
)

// ConvectionSystem is the discrete transport problem of one operator
// evaluation. It is built fresh for every evaluation and never reused.
type ConvectionSystem struct {
	K       utils.CSR
	KSmap   []int          // Storage location of the mirror of each entry of K
	Mass    []utils.Matrix // Consistent mass of each element
	MLumped []float64
	Offsets []int // DOFs of element k are [Offsets[k], Offsets[k+1])
	dofElem []int
	// Set by the low order solver
	D    utils.CSR
	Visc []float64 // Graph viscosity d_ij, per storage location of K
}

func NewConvectionSystem(K utils.CSR, mass []utils.Matrix, offsets []int) (sys *ConvectionSystem, err error) {
	var (
		nr, nc = K.Dims()
		NE     = len(mass)
	)
	if len(offsets) != NE+1 || offsets[0] != 0 {
		err = fmt.Errorf("%d element offsets for %d mass blocks: %w", len(offsets), NE, ErrSizeMismatch)
		return
	}
	if nr != nc || nr != offsets[NE] {
		err = fmt.Errorf("operator is %dx%d, elements hold %d DOFs: %w", nr, nc, offsets[NE], ErrSizeMismatch)
		return
	}
	sys = &ConvectionSystem{
		K:       K,
		KSmap:   K.SymmetryMap(),
		Mass:    mass,
		MLumped: make([]float64, nr),
		Offsets: offsets,
		dofElem: make([]int, nr),
	}
	for k := 0; k < NE; k++ {
		var (
			begin   = offsets[k]
			n       = offsets[k+1] - begin
			mr, mc  = mass[k].Dims()
			rowSums = mass[k].SumRows()
		)
		if mr != n || mc != n {
			err = fmt.Errorf("element %d has %d DOFs and a %dx%d mass block: %w", k, n, mr, mc, ErrSizeMismatch)
			return
		}
		for i := 0; i < n; i++ {
			m := rowSums.AtVec(i)
			if !(m > 0) {
				err = fmt.Errorf("DOF %d of element %d has lumped mass %g: %w", begin+i, k, m, ErrNonPositiveMass)
				return
			}
			sys.MLumped[begin+i] = m
			sys.dofElem[begin+i] = k
		}
	}
	return
}

func (sys *ConvectionSystem) NumDofs() int { return len(sys.MLumped) }

func (sys *ConvectionSystem) NumElements() int { return len(sys.Mass) }

// Element returns the element holding DOF i.
func (sys *ConvectionSystem) Element(i int) int { return sys.dofElem[i] }

// ConsistentMass returns m_ij, which is zero across elements.
func (sys *ConvectionSystem) ConsistentMass(i, j int) float64 {
	k := sys.dofElem[i]
	if sys.dofElem[j] != k {
		return 0
	}
	begin := sys.Offsets[k]
	return sys.Mass[k].At(i-begin, j-begin)
}

func (sys *ConvectionSystem) checkLength(name string, v []float64) (err error) {
	if len(v) != len(sys.MLumped) {
		err = fmt.Errorf("%s has %d values for %d DOFs: %w", name, len(v), len(sys.MLumped), ErrSizeMismatch)
	}
	return
}

// H1System is the continuous transport problem M du = K u of one operator
// evaluation, solved with a factorization of the consistent mass.
type H1System struct {
	K    utils.CSR
	n    int
	chol interface {
		SolveVecTo(dst *mat.VecDense, b mat.Vector) error
	}
}

func NewH1System(K utils.CSR, M mat.Symmetric) (hs *H1System, err error) {
	var (
		nr, nc = K.Dims()
	)
	if nr != nc || nr != M.SymmetricDim() {
		err = fmt.Errorf("operator is %dx%d, mass is %dx%d: %w", nr, nc, M.SymmetricDim(), M.SymmetricDim(), ErrSizeMismatch)
		return
	}
	hs = &H1System{K: K, n: nr}
	switch Mt := M.(type) {
	case mat.SymBanded:
		var chol mat.BandCholesky
		if ok := chol.Factorize(Mt); !ok {
			err = fmt.Errorf("band Cholesky factorization failed: %w", ErrSingularMass)
			return
		}
		hs.chol = &chol
	default:
		var chol mat.Cholesky
		if ok := chol.Factorize(Mt); !ok {
			err = fmt.Errorf("Cholesky factorization failed: %w", ErrSingularMass)
			return
		}
		hs.chol = &chol
	}
	return
}

// CalcHOSolution solves M du = K u.
func (hs *H1System) CalcHOSolution(u, du []float64) (err error) {
	if len(u) != hs.n || len(du) != hs.n {
		err = fmt.Errorf("have %d and %d values for %d nodes: %w", len(u), len(du), hs.n, ErrSizeMismatch)
		return
	}
	Ku := make([]float64, hs.n)
	hs.K.MulVec(u, Ku)
	dst := mat.NewVecDense(hs.n, du)
	if err = hs.chol.SolveVecTo(dst, mat.NewVecDense(hs.n, Ku)); err != nil {
		err = fmt.Errorf("%v: %w", err, ErrSingularMass)
	}
	return
}
