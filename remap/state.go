package remap

import (
	"fmt"
)

type Block uint8

const (
	BlockX   Block = iota // Node positions
	BlockV                // Node velocity
	BlockRho              // Density
	BlockE                // Specific internal energy
	BlockD                // Level set distance, present when enabled
	numBlocks
)

func (b Block) String() string {
	switch b {
	case BlockX:
		return "x"
	case BlockV:
		return "v"
	case BlockRho:
		return "rho"
	case BlockE:
		return "e"
	case BlockD:
		return "d"
	}
	return fmt.Sprintf("Block(%d)", b)
}

// Layout fixes the block offsets of a remap state vector.
type Layout struct {
	Dim, NumNodes, NumL2 int
	LevelSet             bool
	offsets              [numBlocks + 1]int
}

func NewLayout(dim, numNodes, numL2 int, levelSet bool) (l Layout) {
	l = Layout{
		Dim:      dim,
		NumNodes: numNodes,
		NumL2:    numL2,
		LevelSet: levelSet,
	}
	sizes := [numBlocks]int{dim * numNodes, dim * numNodes, numL2, numL2, 0}
	if levelSet {
		sizes[BlockD] = numNodes
	}
	for b := Block(0); b < numBlocks; b++ {
		l.offsets[b+1] = l.offsets[b] + sizes[b]
	}
	return
}

func (l Layout) Size() int { return l.offsets[numBlocks] }

func (l Layout) Range(b Block) (begin, end int) {
	return l.offsets[b], l.offsets[b+1]
}

// Block returns the view of block b within data, which must span the layout.
func (l Layout) Block(data []float64, b Block) []float64 {
	if len(data) != l.Size() {
		panic(fmt.Errorf("buffer of length %d does not match layout of size %d", len(data), l.Size()))
	}
	begin, end := l.Range(b)
	return data[begin:end:end]
}

// Component returns the view of component c of a vector valued H1 block.
func (l Layout) Component(data []float64, b Block, c int) []float64 {
	if b != BlockX && b != BlockV {
		panic(fmt.Errorf("block %v is not vector valued", b))
	}
	blk := l.Block(data, b)
	begin, end := c*l.NumNodes, (c+1)*l.NumNodes
	return blk[begin:end:end]
}

// State is the remap state vector, one contiguous buffer split by its Layout.
type State struct {
	Layout
	Data []float64
}

func NewState(l Layout) *State {
	return &State{
		Layout: l,
		Data:   make([]float64, l.Size()),
	}
}

func (s *State) Get(b Block) []float64 { return s.Layout.Block(s.Data, b) }

func (s *State) Copy() (R *State) {
	R = NewState(s.Layout)
	copy(R.Data, s.Data)
	return
}
