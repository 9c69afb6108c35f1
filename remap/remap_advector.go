package remap

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/notargets/goale/parallel"
)

// LagrangianFields is the data exchanged with the Lagrangian phase. Vector
// fields are component-major over the mesh nodes.
type LagrangianFields struct {
	Distance []float64 // Level set, per node, used when enabled
	Velocity []float64 // dim*nodes
	Energy   []float64 // Specific internal energy per L2 DOF, zero when absent
	RhoDetJw []float64 // rho*detJ*w at the quadrature points, element by element
}

// RemapAdvector carries the fields of a Lagrangian mesh onto a new mesh by
// integrating the advection operator over pseudo-time [0,1].
type RemapAdvector struct {
	provider MeshProvider
	comm     parallel.Communicator
	opts     Options
	layout   Layout
	oper     *AdvectorOper
	ode      ODESolver
	mover    *SolutionMover
	S0, S    *State
	x0       []float64
	rho0     []float64 // Projection scratch, committed to S0 on success
	steps    int
	ready    bool // S0 and x0 hold a complete start state
	current  bool // S is complete and matches the provider mesh
	log      *logrus.Entry
}

func NewRemapAdvector(provider MeshProvider, comm parallel.Communicator, opts Options) (ra *RemapAdvector, err error) {
	if err = opts.Validate(); err != nil {
		return
	}
	if comm == nil {
		comm = parallel.Serial{}
	}
	opts.setDefaults()
	layout := NewLayout(provider.Dim(), provider.NumNodes(), provider.NumL2Dofs(), opts.LevelSet)
	ra = &RemapAdvector{
		provider: provider,
		comm:     comm,
		opts:     opts,
		layout:   layout,
		oper:     NewAdvectorOper(provider, comm, layout, opts),
		ode:      opts.ODE,
		mover:    NewSolutionMover(provider, opts.LumpedProjection),
		S0:       NewState(layout),
		S:        NewState(layout),
		rho0:     make([]float64, layout.NumL2),
		log:      opts.Logger.WithField("rank", comm.Rank()),
	}
	ra.ode.Init(ra.oper)
	return
}

func (ra *RemapAdvector) Layout() Layout { return ra.layout }

// State is the current remap state, valid until the next call.
func (ra *RemapAdvector) State() *State { return ra.S }

// Steps is the number of pseudo-time steps of the last remap.
func (ra *RemapAdvector) Steps() int { return ra.steps }

// InitFromLagr captures the Lagrangian mesh and fields as the start of the
// remap. On failure the advector holds no start state until the next
// successful call.
func (ra *RemapAdvector) InitFromLagr(nodes0 []float64, fields LagrangianFields) (err error) {
	var (
		l = ra.layout
		S = ra.S0
	)
	ra.ready, ra.current = false, false
	if len(nodes0) != l.Dim*l.NumNodes {
		return fmt.Errorf("have %d node coordinates, mesh needs %d: %w", len(nodes0), l.Dim*l.NumNodes, ErrSizeMismatch)
	}
	if len(fields.Velocity) != l.Dim*l.NumNodes {
		return fmt.Errorf("have %d velocity values, mesh needs %d: %w", len(fields.Velocity), l.Dim*l.NumNodes, ErrSizeMismatch)
	}
	if fields.Energy != nil && len(fields.Energy) != l.NumL2 {
		return fmt.Errorf("have %d energy values for %d DOFs: %w", len(fields.Energy), l.NumL2, ErrSizeMismatch)
	}
	if l.LevelSet && len(fields.Distance) != l.NumNodes {
		return fmt.Errorf("have %d distance values for %d nodes: %w", len(fields.Distance), l.NumNodes, ErrSizeMismatch)
	}
	if err = ra.provider.SetNodePositions(nodes0); err != nil {
		return
	}
	if err = ra.mover.MoveDensityLR(fields.RhoDetJw, ra.rho0); err != nil {
		return
	}
	copy(S.Get(BlockRho), ra.rho0)
	copy(S.Get(BlockX), nodes0)
	copy(S.Get(BlockV), fields.Velocity)
	e := S.Get(BlockE)
	if fields.Energy != nil {
		copy(e, fields.Energy)
	} else {
		for i := range e {
			e[i] = 0
		}
	}
	if l.LevelSet {
		copy(S.Get(BlockD), fields.Distance)
	}
	ra.x0 = append(ra.x0[:0], nodes0...)
	copy(ra.S.Data, S.Data)
	ra.ready, ra.current = true, true
	ra.steps = 0
	return
}

// ComputeAtNewPosition remaps from the captured start onto newNodes. Every
// call starts over from the state captured by InitFromLagr. A failed call
// leaves the start state intact but the current state unusable.
func (ra *RemapAdvector) ComputeAtNewPosition(newNodes []float64) (err error) {
	if !ra.ready {
		return ErrNotInitialized
	}
	if err = ra.oper.SetMeshVelocity(ra.x0, newNodes); err != nil {
		return
	}
	ra.current = false
	copy(ra.S.Data, ra.S0.Data)
	ra.steps = 0
	var (
		S = ra.S.Data
		t float64
	)
	for t < 1 {
		if ra.steps == ra.opts.MaxSteps {
			return fmt.Errorf("remap reached t = %g after %d steps", t, ra.steps)
		}
		var dtLO float64
		if dtLO, err = ra.oper.MaxTimeStep(S); err != nil {
			return
		}
		var (
			dt   = ra.opts.CFL * dtLO
			last bool
		)
		if !(dt > 0) {
			return fmt.Errorf("time step estimate %g at t = %g: %w", dt, t, ErrTimeStepUnset)
		}
		if dt >= 1-t {
			dt, last = 1-t, true
		}
		ra.oper.SetDt(dt)
		if t, err = ra.ode.Step(S, t, dt); err != nil {
			return fmt.Errorf("step %d at t = %g: %w", ra.steps, t, err)
		}
		ra.steps++
		ra.log.WithFields(logrus.Fields{
			"step": ra.steps,
			"t":    t,
			"dt":   dt,
		}).Debug("remap step")
		if last {
			break
		}
	}
	// Land exactly on the target mesh
	copy(ra.S.Get(BlockX), newNodes)
	if err = ra.provider.SetNodePositions(newNodes); err != nil {
		return
	}
	if ra.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		lo, hi := minMax(ra.S.Get(BlockRho))
		ra.log.WithFields(logrus.Fields{
			"steps":  ra.steps,
			"rhoMin": lo,
			"rhoMax": hi,
		}).Debug("remap done")
	}
	ra.current = true
	return
}

// TransferToLagr writes the remapped fields back in the Lagrangian
// representation, density as rho*detJ*w at the quadrature points.
func (ra *RemapAdvector) TransferToLagr(fields *LagrangianFields) (err error) {
	if !ra.ready {
		return ErrNotInitialized
	}
	if !ra.current {
		return ErrStaleState
	}
	S := ra.S
	if fields.RhoDetJw, err = ra.mover.EvalDensity(S.Get(BlockRho)); err != nil {
		return
	}
	fields.Velocity = append(fields.Velocity[:0], S.Get(BlockV)...)
	fields.Energy = append(fields.Energy[:0], S.Get(BlockE)...)
	if ra.layout.LevelSet {
		fields.Distance = append(fields.Distance[:0], S.Get(BlockD)...)
	}
	return
}

func minMax(u []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range u {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return
}
