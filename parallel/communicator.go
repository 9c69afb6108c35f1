package parallel

import (
	"fmt"
	"math"
)

type ReduceOp uint8

const (
	Sum ReduceOp = iota
	Min
	Max
)

func (op ReduceOp) String() string {
	switch op {
	case Sum:
		return "Sum"
	case Min:
		return "Min"
	case Max:
		return "Max"
	}
	return fmt.Sprintf("ReduceOp(%d)", op)
}

// Apply combines two values under the operation.
func (op ReduceOp) Apply(a, b float64) float64 {
	switch op {
	case Min:
		return math.Min(a, b)
	case Max:
		return math.Max(a, b)
	default:
		return a + b
	}
}

// Communicator connects the ranks that together hold a distributed field.
// Every rank must make the same sequence of collective calls.
type Communicator interface {
	Rank() int
	Size() int
	// AllReduce replaces vals on every rank with the element-wise reduction
	// over all ranks, combined in rank order.
	AllReduce(op ReduceOp, vals []float64) error
	// ExchangeShared makes the values of DOFs held by more than one rank
	// agree, each becomes the mean over the ranks holding it.
	ExchangeShared(vals []float64) error
}

// Serial is the single rank communicator.
type Serial struct{}

func (Serial) Rank() int { return 0 }
func (Serial) Size() int { return 1 }

func (Serial) AllReduce(op ReduceOp, vals []float64) (err error) {
	if op > Max {
		err = fmt.Errorf("unknown reduction %v", op)
	}
	return
}

func (Serial) ExchangeShared(vals []float64) error { return nil }
