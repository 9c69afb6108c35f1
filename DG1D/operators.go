package DG1D

import "fmt"

// ElementAverages returns the mass weighted mean of an L2 field in each element.
func (rs *RemapSpace1D) ElementAverages(u []float64) (avg []float64, err error) {
	var (
		Np = rs.Ref.Np
	)
	if len(u) != rs.K*Np {
		err = fmt.Errorf("field has %d values, space has %d DOFs", len(u), rs.K*Np)
		return
	}
	avg = make([]float64, rs.K)
	Mu := make([]float64, Np)
	for k := 0; k < rs.K; k++ {
		rs.Ref.MassRef.MulVec(u[k*Np:(k+1)*Np], Mu)
		for _, v := range Mu {
			avg[k] += v
		}
		avg[k] *= 0.5 // Reference length
	}
	return
}
