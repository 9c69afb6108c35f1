package remap

import (
	"fmt"
	"math"
)

// ComputeBounds sets the admissible range of every DOF. The first layer takes
// the extrema of the elements holding the DOFs coupled to i through K, each
// further layer widens the range over the coupled DOFs again.
func ComputeBounds(sys *ConvectionSystem, u []float64, layers int, uMin, uMax []float64) (err error) {
	var (
		N  = sys.NumDofs()
		NE = sys.NumElements()
	)
	if layers < 1 {
		return fmt.Errorf("bounds stencil must be at least one layer, have %d", layers)
	}
	for _, v := range [][]float64{u, uMin, uMax} {
		if err = sys.checkLength("bounds field", v); err != nil {
			return
		}
	}
	elMin, elMax := make([]float64, NE), make([]float64, NE)
	for k := 0; k < NE; k++ {
		elMin[k], elMax[k] = math.Inf(1), math.Inf(-1)
		for i := sys.Offsets[k]; i < sys.Offsets[k+1]; i++ {
			elMin[k] = math.Min(elMin[k], u[i])
			elMax[k] = math.Max(elMax[k], u[i])
		}
	}
	for i := 0; i < N; i++ {
		uMin[i], uMax[i] = math.Inf(1), math.Inf(-1)
		cols, _ := sys.K.Row(i)
		for _, j := range cols {
			k := sys.Element(j)
			uMin[i] = math.Min(uMin[i], elMin[k])
			uMax[i] = math.Max(uMax[i], elMax[k])
		}
	}
	prevMin, prevMax := make([]float64, N), make([]float64, N)
	for layer := 1; layer < layers; layer++ {
		copy(prevMin, uMin)
		copy(prevMax, uMax)
		for i := 0; i < N; i++ {
			cols, _ := sys.K.Row(i)
			for _, j := range cols {
				uMin[i] = math.Min(uMin[i], prevMin[j])
				uMax[i] = math.Max(uMax[i], prevMax[j])
			}
		}
	}
	return
}
