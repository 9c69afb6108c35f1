package types

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeKey(t *testing.T) {
	{ // Test packed int for DOF pair labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{0, 1})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{1, 0}, en.GetVertices(true))

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
		assert.Equal(t, [2]int{1, 100}, en.GetVertices(false))

		// Test maximum/minimum indices
		en = NewEdgeKey([2]int{1<<32 - 1, 1})
		assert.Equal(t, EdgeKey((1<<32-1)<<32+1), en)
		assert.Equal(t, [2]int{1, 1<<32 - 1}, en.GetVertices(false))
	}
	{
		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // Sorting by lower then upper DOF
		keys := EdgeKeySlice{
			NewEdgeKey([2]int{3, 2}),
			NewEdgeKey([2]int{0, 5}),
			NewEdgeKey([2]int{2, 1}),
			NewEdgeKey([2]int{0, 1}),
		}
		sort.Sort(keys)
		var got [][2]int
		for _, k := range keys {
			got = append(got, k.GetVertices(false))
		}
		assert.Equal(t, [][2]int{{0, 1}, {0, 5}, {1, 2}, {2, 3}}, got)
	}
}
