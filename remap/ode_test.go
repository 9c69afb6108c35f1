package remap

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decay is y' = -y
type decay struct{}

func (decay) Mult(S, dS []float64) error {
	for i := range S {
		dS[i] = -S[i]
	}
	return nil
}

func (decay) SetTime(float64) {}

// cosine is y' = cos(t), which needs correct stage times
type cosine struct{ t float64 }

func (c *cosine) Mult(S, dS []float64) error {
	for i := range S {
		dS[i] = math.Cos(c.t)
	}
	return nil
}

func (c *cosine) SetTime(t float64) { c.t = t }

type failing struct{}

func (failing) Mult(S, dS []float64) error { return fmt.Errorf("no right hand side") }
func (failing) SetTime(float64)            {}

func integrate(t *testing.T, solver ODESolver, f TimeDependentOperator, y0 float64, steps int) float64 {
	var (
		y   = []float64{y0, 2 * y0}
		dt  = 1. / float64(steps)
		tt  float64
		err error
	)
	solver.Init(f)
	for n := 0; n < steps; n++ {
		tt, err = solver.Step(y, tt, dt)
		require.NoError(t, err)
	}
	assert.InDelta(t, 1., tt, 1.e-12)
	assert.InDelta(t, 2*y[0], y[1], 1.e-14)
	return y[0]
}

func TestODESolverOrder(t *testing.T) {
	for _, tc := range []struct {
		name   string
		solver func() ODESolver
		order  float64
	}{
		{"RK3SSP", func() ODESolver { return &RK3SSPSolver{} }, 3},
		{"RK4", func() ODESolver { return &RK4Solver{} }, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			exact := math.Exp(-1)
			e1 := math.Abs(integrate(t, tc.solver(), decay{}, 1, 10) - exact)
			e2 := math.Abs(integrate(t, tc.solver(), decay{}, 1, 20) - exact)
			rate := math.Log2(e1 / e2)
			assert.InDelta(t, tc.order, rate, 0.25)

			y := integrate(t, tc.solver(), &cosine{}, 0, 20)
			assert.InDelta(t, math.Sin(1), y, 1.e-6)
		})
	}
}

func TestODESolverErrors(t *testing.T) {
	for _, solver := range []ODESolver{&RK3SSPSolver{}, &RK4Solver{}} {
		tNew, err := solver.Step([]float64{1}, 0.5, 0.1)
		assert.Error(t, err)
		assert.Equal(t, 0.5, tNew)
		solver.Init(failing{})
		_, err = solver.Step([]float64{1}, 0, 0.1)
		assert.Error(t, err)
	}
}
