package types

import (
	"fmt"
	"math"
)

/*
EdgeKey is an always positive number that stores a coupling between two
degrees of freedom as an undirected pair that can be compared and hashed.
A coupling between DOFs [4] and [0] is always stored as [0,4], in ascending order.
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// This packs two index coordinates into two 32 bit unsigned integers to act as a hash and an indirect access method
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(i1 + i2<<32)
	return
}

// GetVertices returns the pair in ascending order, or descending when rev is set.
func (ek EdgeKey) GetVertices(rev bool) (verts [2]int) {
	var (
		enTmp EdgeKey
	)
	enTmp = ek >> 32
	verts[1] = int(enTmp)
	verts[0] = int(ek - enTmp*(1<<32))
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

// EdgeKeySlice sorts keys by their lower DOF first.
type EdgeKeySlice []EdgeKey

func (p EdgeKeySlice) Len() int      { return len(p) }
func (p EdgeKeySlice) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p EdgeKeySlice) Less(i, j int) bool {
	vi, vj := p[i].GetVertices(false), p[j].GetVertices(false)
	if vi[0] != vj[0] {
		return vi[0] < vj[0]
	}
	return vi[1] < vj[1]
}
