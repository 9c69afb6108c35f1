package remap

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// RK3SSPSolver is the three stage strong stability preserving Runge-Kutta
// method of Shu and Osher. Every stage is a convex combination of forward
// Euler steps, so bounds that hold for one Euler step hold for the step.
type RK3SSPSolver struct {
	f    TimeDependentOperator
	y, k []float64
}

func (s *RK3SSPSolver) Init(f TimeDependentOperator) { s.f = f }

func (s *RK3SSPSolver) Step(x []float64, t, dt float64) (tNew float64, err error) {
	if s.f == nil {
		return t, fmt.Errorf("RK3SSP solver has no operator, call Init")
	}
	s.resize(len(x))
	var (
		y, k = s.y, s.k
	)
	// y = x + dt*f(x,t)
	s.f.SetTime(t)
	if err = s.f.Mult(x, k); err != nil {
		return t, err
	}
	floats.AddScaledTo(y, x, dt, k)
	// y = 3/4 x + 1/4 (y + dt*f(y,t+dt))
	s.f.SetTime(t + dt)
	if err = s.f.Mult(y, k); err != nil {
		return t, err
	}
	for i := range y {
		y[i] = 0.75*x[i] + 0.25*(y[i]+dt*k[i])
	}
	// x = 1/3 x + 2/3 (y + dt*f(y,t+dt/2))
	s.f.SetTime(t + dt/2)
	if err = s.f.Mult(y, k); err != nil {
		return t, err
	}
	for i := range x {
		x[i] = x[i]/3 + 2*(y[i]+dt*k[i])/3
	}
	tNew = t + dt
	return
}

func (s *RK3SSPSolver) resize(n int) {
	if len(s.y) != n {
		s.y, s.k = make([]float64, n), make([]float64, n)
	}
}

// RK4Solver is the classical four stage Runge-Kutta method. It is not
// monotone and is kept for accuracy comparisons.
type RK4Solver struct {
	f          TimeDependentOperator
	z, k, kSum []float64
}

func (s *RK4Solver) Init(f TimeDependentOperator) { s.f = f }

var (
	rk4C = [4]float64{0, 0.5, 0.5, 1}
	rk4B = [4]float64{1. / 6., 1. / 3., 1. / 3., 1. / 6.}
)

func (s *RK4Solver) Step(x []float64, t, dt float64) (tNew float64, err error) {
	if s.f == nil {
		return t, fmt.Errorf("RK4 solver has no operator, call Init")
	}
	n := len(x)
	if len(s.z) != n {
		s.z, s.k, s.kSum = make([]float64, n), make([]float64, n), make([]float64, n)
	}
	var (
		z, k, kSum = s.z, s.k, s.kSum
	)
	for i := range kSum {
		kSum[i] = 0
	}
	copy(z, x)
	for st := 0; st < 4; st++ {
		s.f.SetTime(t + rk4C[st]*dt)
		if err = s.f.Mult(z, k); err != nil {
			return t, err
		}
		floats.AddScaled(kSum, rk4B[st], k)
		if st < 3 {
			// Input of the next stage
			floats.AddScaledTo(z, x, rk4C[st+1]*dt, k)
		}
	}
	floats.AddScaled(x, dt, kSum)
	tNew = t + dt
	return
}
