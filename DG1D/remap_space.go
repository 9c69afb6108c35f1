package DG1D

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goale/types"
	"github.com/notargets/goale/utils"
)

// RemapSpace1D provides the discrete spaces used by a remap on a line mesh:
// a discontinuous nodal L2 space of order N for density and energy, and the
// continuous linear H1 space on element vertices for positions and velocity.
// DOF k*Np+i of the L2 space is node i of element k.
type RemapSpace1D struct {
	Ref              *RefElement1D
	K, Nv            int
	EToV, EToE, EToF utils.Matrix
	VX               utils.Vector // Current vertex positions
	Nq               int          // Quadrature points per element for density samples
	// Volume integration, exact for the transport integrand
	rv, wv      utils.Vector
	phiV, dphiV utils.Matrix
	// Density sample quadrature
	rq, wq utils.Vector
	phiQ   utils.Matrix
	// Sparsity templates, values are zero
	l2Pattern, h1Pattern utils.CSR
	h1Band               int
	offsets              []int
}

func NewRemapSpace1D(N int, VX utils.Vector, EToV utils.Matrix, Nq int) (rs *RemapSpace1D, err error) {
	var (
		K, _ = EToV.Dims()
	)
	if K < 1 {
		err = fmt.Errorf("mesh has no elements")
		return
	}
	if Nq < N+1 {
		err = fmt.Errorf("%d quadrature points can not integrate the order %d mass exactly, need at least %d",
			Nq, N, N+1)
		return
	}
	rs = &RemapSpace1D{
		K:    K,
		Nv:   VX.Len(),
		EToV: EToV,
		VX:   VX.Copy(),
		Nq:   Nq,
	}
	if rs.Ref, err = NewRefElement1D(N); err != nil {
		return
	}
	for _, v := range EToV.DataP {
		if int(v) < 0 || int(v) >= rs.Nv {
			err = fmt.Errorf("vertex %d in element table is out of range [0,%d)", int(v), rs.Nv)
			return
		}
	}
	rs.EToE, rs.EToF = Connect1D(EToV)
	if err = rs.checkElements(rs.VX.DataP); err != nil {
		return
	}
	rs.rv, rs.wv, rs.phiV, rs.dphiV = rs.Ref.Quadrature(N + 2)
	rs.rq, rs.wq, rs.phiQ, _ = rs.Ref.Quadrature(Nq)
	rs.phiQ.SetReadOnly("phiQ")

	Np := rs.Ref.Np
	rs.offsets = make([]int, K+1)
	for k := 0; k < K; k++ {
		rs.offsets[k+1] = rs.offsets[k] + Np
	}
	pb := utils.NewPatternBuilder(K * Np)
	for k := 0; k < K; k++ {
		pb.AddBlock(rs.elementDofs(k))
		for face := 0; face < 2; face++ {
			kn, fn := int(rs.EToE.At(k, face)), int(rs.EToF.At(k, face))
			if kn == k {
				continue
			}
			pb.AddPair(k*Np+rs.Ref.FaceNode(face), kn*Np+rs.Ref.FaceNode(fn))
		}
	}
	rs.l2Pattern = pb.Build()
	rs.l2Pattern.SetReadOnly("l2Pattern")

	pb = utils.NewPatternBuilder(rs.Nv)
	for k := 0; k < K; k++ {
		va, vb := rs.vertices(k)
		pb.AddPair(va, vb)
		if band := abs(va - vb); band > rs.h1Band {
			rs.h1Band = band
		}
	}
	rs.h1Pattern = pb.Build()
	rs.h1Pattern.SetReadOnly("h1Pattern")
	return
}

func (rs *RemapSpace1D) Dim() int           { return 1 }
func (rs *RemapSpace1D) NumNodes() int      { return rs.Nv }
func (rs *RemapSpace1D) NumL2Dofs() int     { return rs.K * rs.Ref.Np }
func (rs *RemapSpace1D) NumElements() int   { return rs.K }
func (rs *RemapSpace1D) NumQuadPoints() int { return rs.Nq }

func (rs *RemapSpace1D) ElementOffsets() (offsets []int) {
	offsets = make([]int, len(rs.offsets))
	copy(offsets, rs.offsets)
	return
}

func (rs *RemapSpace1D) NodePositions() (x []float64) {
	x = make([]float64, rs.Nv)
	copy(x, rs.VX.DataP)
	return
}

func (rs *RemapSpace1D) SetNodePositions(x []float64) (err error) {
	if len(x) != rs.Nv {
		err = fmt.Errorf("have %d node positions for %d nodes", len(x), rs.Nv)
		return
	}
	if err = rs.checkElements(x); err != nil {
		return
	}
	copy(rs.VX.DataP, x)
	return
}

// DofCoordinates returns the physical location of every L2 DOF.
func (rs *RemapSpace1D) DofCoordinates() (X []float64) {
	var (
		Np = rs.Ref.Np
	)
	X = make([]float64, rs.K*Np)
	for k := 0; k < rs.K; k++ {
		xa, xb := rs.vertexPositions(k, rs.VX.DataP)
		for i := 0; i < Np; i++ {
			X[k*Np+i] = xa + 0.5*(rs.Ref.R.AtVec(i)+1)*(xb-xa)
		}
	}
	return
}

// QuadCoordinates returns the physical location of every density sample,
// element by element.
func (rs *RemapSpace1D) QuadCoordinates() (X []float64) {
	X = make([]float64, rs.K*rs.Nq)
	for k := 0; k < rs.K; k++ {
		xa, xb := rs.vertexPositions(k, rs.VX.DataP)
		for q := 0; q < rs.Nq; q++ {
			X[k*rs.Nq+q] = xa + 0.5*(rs.rq.AtVec(q)+1)*(xb-xa)
		}
	}
	return
}

// AssembleL2 builds the transport operator of the L2 space for mesh velocity
// w, given at the vertices, along with the consistent element mass blocks.
// The operator holds the volume term int(phi_i w dphi_j/dx) and upwind face
// coupling for the transport velocity -w seen from the moving mesh. Domain
// ends have no inflow.
func (rs *RemapSpace1D) AssembleL2(w []float64) (K utils.CSR, mass []utils.Matrix, err error) {
	var (
		Np  = rs.Ref.Np
		Nqv = rs.wv.Len()
	)
	if len(w) != rs.Nv {
		err = fmt.Errorf("have %d mesh velocities for %d nodes", len(w), rs.Nv)
		return
	}
	if err = rs.checkElements(rs.VX.DataP); err != nil {
		return
	}
	K = rs.l2Pattern.CloneStructure()
	mass = make([]utils.Matrix, rs.K)
	for k := 0; k < rs.K; k++ {
		var (
			xa, xb = rs.vertexPositions(k, rs.VX.DataP)
			va, vb = rs.vertices(k)
			wa, wb = w[va], w[vb]
			k0     = k * Np
		)
		mass[k] = rs.Ref.MassRef.Copy().Scale(0.5 * (xb - xa))
		if Np > 1 {
			for q := 0; q < Nqv; q++ {
				r := rs.rv.AtVec(q)
				wq := rs.wv.AtVec(q) * (0.5*(1-r)*wa + 0.5*(1+r)*wb)
				for i := 0; i < Np; i++ {
					phi := rs.phiV.At(q, i) * wq
					for j := 0; j < Np; j++ {
						K.AddTo(k0+i, k0+j, phi*rs.dphiV.At(q, j))
					}
				}
			}
		}
		for face := 0; face < 2; face++ {
			var (
				kn, fn = int(rs.EToE.At(k, face)), int(rs.EToF.At(k, face))
				nx     = float64(2*face - 1)
				wf     = wa
			)
			if kn == k {
				continue
			}
			if face == 1 {
				wf = wb
			}
			// Normal transport speed, inflow is negative
			an := -wf * nx
			if an < 0 {
				iM := k0 + rs.Ref.FaceNode(face)
				iP := kn*Np + rs.Ref.FaceNode(fn)
				K.AddTo(iM, iP, -an)
				K.AddTo(iM, iM, an)
			}
		}
	}
	return
}

// AssembleH1 builds the linear continuous transport operator for mesh
// velocity w and the consistent H1 mass matrix, which is banded.
func (rs *RemapSpace1D) AssembleH1(w []float64) (K utils.CSR, M mat.Symmetric, err error) {
	if len(w) != rs.Nv {
		err = fmt.Errorf("have %d mesh velocities for %d nodes", len(w), rs.Nv)
		return
	}
	if err = rs.checkElements(rs.VX.DataP); err != nil {
		return
	}
	K = rs.h1Pattern.CloneStructure()
	Mb := mat.NewSymBandDense(rs.Nv, rs.h1Band, nil)
	addM := func(i, j int, val float64) {
		Mb.SetSymBand(i, j, Mb.At(i, j)+val)
	}
	for k := 0; k < rs.K; k++ {
		var (
			xa, xb = rs.vertexPositions(k, rs.VX.DataP)
			h      = xb - xa
			va, vb = rs.vertices(k)
			wa, wb = w[va], w[vb]
			ca     = (2*wa + wb) / 6
			cb     = (wa + 2*wb) / 6
		)
		K.AddTo(va, va, -ca)
		K.AddTo(va, vb, ca)
		K.AddTo(vb, va, -cb)
		K.AddTo(vb, vb, cb)
		addM(va, va, h/3)
		addM(vb, vb, h/3)
		addM(va, vb, h/6)
	}
	M = Mb
	return
}

// ElementQuadrature returns the basis values at the density samples of
// element k, Nq x Np and shared, and the Jacobian weighted quadrature weights.
func (rs *RemapSpace1D) ElementQuadrature(k int) (phi utils.Matrix, detJw []float64, err error) {
	if k < 0 || k >= rs.K {
		err = fmt.Errorf("element %d out of range [0,%d)", k, rs.K)
		return
	}
	var (
		xa, xb = rs.vertexPositions(k, rs.VX.DataP)
		J      = 0.5 * (xb - xa)
	)
	if J <= 0 {
		err = fmt.Errorf("element %d has length %g: %w", k, xb-xa, types.ErrDegenerateElement)
		return
	}
	phi = rs.phiQ
	detJw = make([]float64, rs.Nq)
	for q := range detJw {
		detJw[q] = J * rs.wq.AtVec(q)
	}
	return
}

func (rs *RemapSpace1D) checkElements(x []float64) (err error) {
	for k := 0; k < rs.K; k++ {
		xa, xb := rs.vertexPositions(k, x)
		if xb-xa <= 0 {
			err = fmt.Errorf("element %d has length %g: %w", k, xb-xa, types.ErrDegenerateElement)
			return
		}
	}
	return
}

func (rs *RemapSpace1D) elementDofs(k int) (dofs []int) {
	Np := rs.Ref.Np
	dofs = make([]int, Np)
	for i := range dofs {
		dofs[i] = k*Np + i
	}
	return
}

func (rs *RemapSpace1D) vertices(k int) (va, vb int) {
	return int(rs.EToV.At(k, 0)), int(rs.EToV.At(k, 1))
}

func (rs *RemapSpace1D) vertexPositions(k int, x []float64) (xa, xb float64) {
	va, vb := rs.vertices(k)
	return x[va], x[vb]
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
