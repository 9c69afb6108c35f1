package remap

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/notargets/goale/parallel"
)

const (
	conservationTol = 1.e-10
	boundsTol       = 1.e-10
)

// verifyConservation checks sum(m du) == sum(m duLO) over all ranks.
func verifyConservation(comm parallel.Communicator, log *logrus.Entry, field string,
	m, du, duLO []float64) (err error) {
	sums := make([]float64, 3)
	for i := range m {
		sums[0] += m[i] * du[i]
		sums[1] += m[i] * duLO[i]
		sums[2] += m[i] * (math.Abs(du[i]) + math.Abs(duLO[i]))
	}
	if err = comm.AllReduce(parallel.Sum, sums); err != nil {
		return
	}
	if diff := math.Abs(sums[0] - sums[1]); diff > conservationTol*math.Max(1, sums[2]) {
		log.WithFields(logrus.Fields{
			"field": field,
			"mass":  sums[0],
			"lo":    sums[1],
		}).Warn("limited derivative is not conservative")
		err = fmt.Errorf("%s: sum(m du) = %g, sum(m du_lo) = %g: %w", field, sums[0], sums[1], ErrConservation)
	}
	return
}

// verifyBounds checks uMin <= u + dt du <= uMax for every DOF on every rank.
func verifyBounds(comm parallel.Communicator, log *logrus.Entry, field string,
	dt float64, u, du, uMin, uMax []float64) (err error) {
	var (
		worst = []float64{0}
		where = -1
	)
	for i := range u {
		var (
			un  = u[i] + dt*du[i]
			tol = boundsTol * math.Max(1, math.Max(math.Abs(uMin[i]), math.Abs(uMax[i])))
			ex  = math.Max(uMin[i]-un, un-uMax[i])
		)
		if ex > tol && ex > worst[0] {
			worst[0], where = ex, i
		}
	}
	if where >= 0 {
		log.WithFields(logrus.Fields{
			"field":  field,
			"dof":    where,
			"excess": worst[0],
		}).Warn("limited update leaves the bounds")
	}
	if err = comm.AllReduce(parallel.Max, worst); err != nil {
		return
	}
	if worst[0] > 0 {
		err = fmt.Errorf("%s: update exceeds bounds by %g: %w", field, worst[0], ErrBoundsViolated)
	}
	return
}
