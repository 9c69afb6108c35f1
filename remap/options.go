package remap

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type Options struct {
	CFL              float64 // Fraction of the low order time step limit
	BoundsStencil    int     // Layers of neighbors the DOF bounds reach over
	LumpedProjection bool    // Lumped instead of exact density projection
	Verify           bool    // Check conservation and bounds after limiting
	ParallelDegree   int     // Goroutine partitions for element local work
	LevelSet         bool    // Carry a level set distance block
	MaxSteps         int     // Pseudo-time steps allowed for one remap
	// Solver strategies, nil selects the defaults
	HO     HighOrderSolver
	LO     LowOrderSolver
	FCT    FluxLimiter
	ODE    ODESolver
	Logger *logrus.Logger
}

func DefaultOptions() Options {
	return Options{
		CFL:            0.5,
		BoundsStencil:  1,
		ParallelDegree: 1,
		MaxSteps:       100000,
	}
}

func (o *Options) Validate() (err error) {
	switch {
	case !(o.CFL > 0 && o.CFL <= 1):
		err = fmt.Errorf("CFL must be in (0,1], have %g", o.CFL)
	case o.BoundsStencil < 1:
		err = fmt.Errorf("bounds stencil must be at least 1, have %d", o.BoundsStencil)
	case o.ParallelDegree < 1:
		err = fmt.Errorf("parallel degree must be at least 1, have %d", o.ParallelDegree)
	case o.MaxSteps < 1:
		err = fmt.Errorf("max steps must be at least 1, have %d", o.MaxSteps)
	}
	return
}

func (o *Options) setDefaults() {
	if o.HO == nil {
		o.HO = &LocalInverseHOSolver{ParallelDegree: o.ParallelDegree}
	}
	if o.LO == nil {
		o.LO = DiscreteUpwindLOSolver{}
	}
	if o.FCT == nil {
		o.FCT = NewFluxBasedFCT()
	}
	if o.ODE == nil {
		o.ODE = &RK3SSPSolver{}
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
}
