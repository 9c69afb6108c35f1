package remap

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/notargets/goale/parallel"
)

// AdvectorOper is the right hand side of the remap in pseudo-time. The mesh
// moves with the fixed velocity w = x_target - x_start, the fields are
// transported relative to it.
type AdvectorOper struct {
	provider MeshProvider
	comm     parallel.Communicator
	layout   Layout
	opts     Options
	w        []float64 // Mesh velocity, dim*nodes component-major
	dt, t    float64
	log      *logrus.Entry
}

func NewAdvectorOper(provider MeshProvider, comm parallel.Communicator, layout Layout, opts Options) (ao *AdvectorOper) {
	opts.setDefaults()
	ao = &AdvectorOper{
		provider: provider,
		comm:     comm,
		layout:   layout,
		opts:     opts,
		w:        make([]float64, layout.Dim*layout.NumNodes),
		log:      opts.Logger.WithField("rank", comm.Rank()),
	}
	return
}

// SetMeshVelocity sets w from the start and target node positions.
func (ao *AdvectorOper) SetMeshVelocity(xStart, xTarget []float64) (err error) {
	if len(xStart) != len(ao.w) || len(xTarget) != len(ao.w) {
		return fmt.Errorf("have %d start and %d target positions for %d node coordinates: %w",
			len(xStart), len(xTarget), len(ao.w), ErrSizeMismatch)
	}
	for i := range ao.w {
		ao.w[i] = xTarget[i] - xStart[i]
	}
	return
}

func (ao *AdvectorOper) MeshVelocity() []float64 { return ao.w }

func (ao *AdvectorOper) SetDt(dt float64) {
	ao.dt = dt
	ao.opts.FCT.SetDt(dt)
}

func (ao *AdvectorOper) SetTime(t float64) { ao.t = t }

// AssembleL2System moves the mesh to the positions held by S and builds the
// transport system of the L2 space, with its low order operator.
func (ao *AdvectorOper) AssembleL2System(S []float64) (sys *ConvectionSystem, err error) {
	if len(S) != ao.layout.Size() {
		return nil, fmt.Errorf("state has %d values, layout needs %d: %w", len(S), ao.layout.Size(), ErrSizeMismatch)
	}
	if err = ao.provider.SetNodePositions(ao.layout.Block(S, BlockX)); err != nil {
		return
	}
	K, mass, err := ao.provider.AssembleL2(ao.w)
	if err != nil {
		return
	}
	if sys, err = NewConvectionSystem(K, mass, ao.provider.ElementOffsets()); err != nil {
		return
	}
	if _, err = ao.opts.LO.ComputeDiscreteUpwindMatrix(sys); err != nil {
		return
	}
	return
}

// MaxTimeStep is the low order time step limit at state S over all ranks.
func (ao *AdvectorOper) MaxTimeStep(S []float64) (dt float64, err error) {
	var (
		sys *ConvectionSystem
	)
	if sys, err = ao.AssembleL2System(S); err != nil {
		return
	}
	dtr := []float64{LowOrderTimeStep(sys.D, sys.MLumped)}
	if err = ao.comm.AllReduce(parallel.Min, dtr); err != nil {
		return
	}
	dt = dtr[0]
	return
}

func (ao *AdvectorOper) Mult(S, dS []float64) (err error) {
	var (
		l   = ao.layout
		sys *ConvectionSystem
	)
	if !(ao.dt > 0) {
		return fmt.Errorf("advection operator dt = %g: %w", ao.dt, ErrTimeStepUnset)
	}
	if len(dS) != l.Size() {
		return fmt.Errorf("derivative has %d values, layout needs %d: %w", len(dS), l.Size(), ErrSizeMismatch)
	}
	if sys, err = ao.AssembleL2System(S); err != nil {
		return
	}
	for _, b := range []Block{BlockRho, BlockE} {
		if err = ao.transportL2(sys, b, l.Block(S, b), l.Block(dS, b)); err != nil {
			return
		}
	}

	copy(l.Block(dS, BlockX), ao.w)
	Kh1, Mh1, err := ao.provider.AssembleH1(ao.w)
	if err != nil {
		return
	}
	h1, err := NewH1System(Kh1, Mh1)
	if err != nil {
		return
	}
	for c := 0; c < l.Dim; c++ {
		if err = h1.CalcHOSolution(l.Component(S, BlockV, c), l.Component(dS, BlockV, c)); err != nil {
			return fmt.Errorf("velocity component %d: %w", c, err)
		}
	}
	if l.LevelSet {
		if err = h1.CalcHOSolution(l.Block(S, BlockD), l.Block(dS, BlockD)); err != nil {
			return fmt.Errorf("level set: %w", err)
		}
	}
	return ao.comm.ExchangeShared(dS)
}

// transportL2 computes the bounded derivative of one L2 field.
func (ao *AdvectorOper) transportL2(sys *ConvectionSystem, b Block, u, du []float64) (err error) {
	var (
		N    = sys.NumDofs()
		duHO = make([]float64, N)
		duLO = make([]float64, N)
		uMin = make([]float64, N)
		uMax = make([]float64, N)
	)
	if err = ComputeBounds(sys, u, ao.opts.BoundsStencil, uMin, uMax); err != nil {
		return fmt.Errorf("%v bounds: %w", b, err)
	}
	if err = ao.opts.HO.CalcHOSolution(sys, u, duHO); err != nil {
		return fmt.Errorf("%v high order: %w", b, err)
	}
	if err = ao.opts.LO.CalcLOSolution(sys, u, duLO); err != nil {
		return fmt.Errorf("%v low order: %w", b, err)
	}
	if err = ao.opts.FCT.CalcFCTSolution(sys, u, duHO, duLO, uMin, uMax, du); err != nil {
		return fmt.Errorf("%v limiter: %w", b, err)
	}
	if ao.opts.Verify {
		if err = verifyConservation(ao.comm, ao.log, b.String(), sys.MLumped, du, duLO); err != nil {
			return
		}
		if err = verifyBounds(ao.comm, ao.log, b.String(), ao.dt, u, du, uMin, uMax); err != nil {
			return
		}
	}
	if ao.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := range u {
			un := u[i] + ao.dt*du[i]
			lo, hi = math.Min(lo, un), math.Max(hi, un)
		}
		ao.log.WithFields(logrus.Fields{"field": b.String(), "t": ao.t, "min": lo, "max": hi}).Trace("transported")
	}
	return
}
