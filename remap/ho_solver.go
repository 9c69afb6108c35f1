package remap

import (
	"fmt"

	"github.com/notargets/goale/utils"
)

// LocalInverseHOSolver solves M_k du_k = (K u)_k element by element.
type LocalInverseHOSolver struct {
	ParallelDegree int
}

func (ho *LocalInverseHOSolver) CalcHOSolution(sys *ConvectionSystem, u, du []float64) (err error) {
	if err = sys.checkLength("u", u); err != nil {
		return
	}
	if err = sys.checkLength("du", du); err != nil {
		return
	}
	Ku := make([]float64, len(u))
	sys.K.MulVec(u, Ku)
	pm := utils.NewPartitionMap(ho.ParallelDegree, sys.NumElements())
	err = pm.RunParallel(func(bn, kMin, kMax int) (err error) {
		for k := kMin; k < kMax; k++ {
			var (
				begin, end = sys.Offsets[k], sys.Offsets[k+1]
				Minv       utils.Matrix
			)
			if Minv, err = sys.Mass[k].Inverse(); err != nil || utils.IsNan(Minv) {
				return fmt.Errorf("element %d: %w", k, ErrSingularMass)
			}
			Minv.MulVec(Ku[begin:end], du[begin:end])
		}
		return
	})
	return
}
