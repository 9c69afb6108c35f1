package DG1D

import (
	"fmt"

	"github.com/notargets/goale/utils"
)

// RefElement1D is the nodal basis of order N on the reference interval [-1,1].
type RefElement1D struct {
	N, Np   int
	R       utils.Vector // Nodes, LGL for N > 0, the midpoint for N = 0
	V, Vinv utils.Matrix
	Dr      utils.Matrix
	MassRef utils.Matrix // Reference mass, inv(V*V^T)
}

func NewRefElement1D(N int) (re *RefElement1D, err error) {
	if N < 0 {
		err = fmt.Errorf("polynomial order must be non-negative, have %d", N)
		return
	}
	re = &RefElement1D{
		N:  N,
		Np: N + 1,
	}
	re.R = JacobiGL(0, 0, N)
	re.V = Vandermonde1D(N, re.R)
	if re.Vinv, err = re.V.Inverse(); err != nil {
		err = fmt.Errorf("error inverting V: %v", err)
		return
	}
	Vr := GradVandermonde1D(re.R, N)
	re.Dr = Vr.Mul(re.Vinv)
	re.MassRef = re.Vinv.Transpose().Mul(re.Vinv)
	re.V.SetReadOnly("V")
	re.Vinv.SetReadOnly("Vinv")
	re.Dr.SetReadOnly("Dr")
	re.MassRef.SetReadOnly("MassRef")
	return
}

// Quadrature returns the Gauss rule with Nq points together with the basis
// values and reference derivatives at those points, each Nq x Np.
func (re *RefElement1D) Quadrature(Nq int) (Rq, Wq utils.Vector, Phi, DPhi utils.Matrix) {
	Rq, Wq = JacobiGQ(0, 0, Nq-1)
	Phi = Vandermonde1D(re.N, Rq).Mul(re.Vinv)
	DPhi = GradVandermonde1D(Rq, re.N).Mul(re.Vinv)
	return
}

// FaceNode returns the local index of the node sitting on a face, 0 is left.
func (re *RefElement1D) FaceNode(face int) int {
	if face == 0 {
		return 0
	}
	return re.Np - 1
}
