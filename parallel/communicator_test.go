package parallel

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerial(t *testing.T) {
	var comm Communicator = Serial{}
	assert.Equal(t, 0, comm.Rank())
	assert.Equal(t, 1, comm.Size())
	vals := []float64{1, 2, 3}
	require.NoError(t, comm.AllReduce(Sum, vals))
	require.NoError(t, comm.ExchangeShared(vals))
	assert.Equal(t, []float64{1, 2, 3}, vals)
	assert.Error(t, comm.AllReduce(ReduceOp(7), vals))
	assert.Equal(t, "Max", Max.String())
	assert.Equal(t, 2., Min.Apply(2, 3))
	assert.Equal(t, 3., Max.Apply(2, 3))
	assert.Equal(t, 5., Sum.Apply(2, 3))
}

func TestTeamAllReduce(t *testing.T) {
	NP := 4
	tm := NewTeam(NP)
	results := make([][3][]float64, NP)
	err := tm.Run(func(comm Communicator) error {
		r := float64(comm.Rank())
		for i, op := range []ReduceOp{Sum, Min, Max} {
			vals := []float64{r, -r, 10 * r}
			if err := comm.AllReduce(op, vals); err != nil {
				return err
			}
			results[comm.Rank()][i] = vals
		}
		return nil
	})
	require.NoError(t, err)
	for n := 0; n < NP; n++ {
		assert.Equal(t, []float64{6, -6, 60}, results[n][0])
		assert.Equal(t, []float64{0, -3, 0}, results[n][1])
		assert.Equal(t, []float64{3, 0, 30}, results[n][2])
	}
}

func TestTeamAllReduceMismatch(t *testing.T) {
	tm := NewTeam(2)
	err := tm.Run(func(comm Communicator) error {
		vals := make([]float64, 2+comm.Rank())
		return comm.AllReduce(Sum, vals)
	})
	assert.Error(t, err)
}

func TestTeamExchangeShared(t *testing.T) {
	// Three ranks hold a chain of 3 local values each, neighbors share an end
	//   rank 0: globals 0 1 2, rank 1: 2 3 4, rank 2: 4 5 6 and rank 0 also holds 4
	NP := 3
	tm := NewTeam(NP)
	tm.Share(0, 2, 2)
	tm.Share(1, 0, 2)
	tm.Share(1, 2, 4)
	tm.Share(2, 0, 4)
	tm.Share(0, 1, 4)
	assert.Panics(t, func() { tm.Share(0, 1, 5) })
	assert.Panics(t, func() { tm.Share(3, 1, 5) })

	out := make([][]float64, NP)
	for round := 0; round < 3; round++ {
		err := tm.Run(func(comm Communicator) error {
			r := float64(comm.Rank())
			vals := []float64{r, r + 0.5, r + 1}
			if err := comm.ExchangeShared(vals); err != nil {
				return err
			}
			out[comm.Rank()] = vals
			return nil
		})
		require.NoError(t, err)
		// Global 2: rank0 local 2 = 1, rank1 local 0 = 1 -> 1
		assert.Equal(t, 1., out[0][2])
		assert.Equal(t, 1., out[1][0])
		// Global 4: rank0 local 1 = 0.5, rank1 local 2 = 2, rank2 local 0 = 2 -> 1.5
		assert.Equal(t, 1.5, out[0][1])
		assert.Equal(t, 1.5, out[1][2])
		assert.Equal(t, 1.5, out[2][0])
		// Unshared values are untouched
		assert.Equal(t, 0., out[0][0])
		assert.Equal(t, 1.5, out[1][1])
		assert.Equal(t, 3., out[2][2])
	}
}

func TestTeamRunError(t *testing.T) {
	tm := NewTeam(3)
	err := tm.Run(func(comm Communicator) error {
		vals := []float64{1}
		_ = comm.AllReduce(Sum, vals)
		if comm.Rank() > 0 {
			return fmt.Errorf("rank %d failed", comm.Rank())
		}
		return nil
	})
	assert.EqualError(t, err, "rank 1 failed")
}

// runWithin fails the test instead of hanging when the team does not finish.
func runWithin(t *testing.T, tm *Team, f func(comm Communicator) error) (err error) {
	done := make(chan error, 1)
	go func() { done <- tm.Run(f) }()
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("team did not finish")
	}
	return
}

func TestTeamAbort(t *testing.T) {
	failed := errors.New("rank 0 failed")
	tm := NewTeam(3)
	collective := make([]error, 3)
	err := runWithin(t, tm, func(comm Communicator) error {
		if comm.Rank() == 0 {
			return failed
		}
		vals := []float64{1}
		if collective[comm.Rank()] = comm.AllReduce(Sum, vals); collective[comm.Rank()] != nil {
			return collective[comm.Rank()]
		}
		collective[comm.Rank()] = comm.ExchangeShared(vals)
		return collective[comm.Rank()]
	})
	assert.ErrorIs(t, err, failed)
	assert.ErrorIs(t, collective[1], ErrTeamAborted)
	assert.ErrorIs(t, collective[2], ErrTeamAborted)

	// A failure between collectives aborts the following one
	err = runWithin(t, tm, func(comm Communicator) error {
		vals := []float64{float64(comm.Rank())}
		if err := comm.AllReduce(Max, vals); err != nil {
			return err
		}
		if comm.Rank() == 2 {
			return fmt.Errorf("rank %d failed", comm.Rank())
		}
		return comm.ExchangeShared(vals)
	})
	assert.EqualError(t, err, "rank 2 failed")

	// The team is usable again after an aborted run
	err = runWithin(t, tm, func(comm Communicator) error {
		vals := []float64{1}
		if err := comm.AllReduce(Sum, vals); err != nil {
			return err
		}
		if vals[0] != 3 {
			return fmt.Errorf("rank %d reduced to %g", comm.Rank(), vals[0])
		}
		return nil
	})
	assert.NoError(t, err)
}
