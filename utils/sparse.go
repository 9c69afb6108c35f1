package utils

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/goale/types"
)

// CSR is a square or rectangular compressed sparse row matrix whose rows hold
// sorted column indices. Explicit zeros are kept so that a structurally
// symmetric pattern stays symmetric regardless of the assembled values.
type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// NewCSR wraps raw CSR arrays, column indices within each row must be sorted.
func NewCSR(nr, nc int, indptr, ind []int, data []float64) (R CSR) {
	if len(indptr) != nr+1 {
		panic(fmt.Errorf("row pointer length %d does not match %d rows", len(indptr), nr))
	}
	if len(ind) != len(data) || indptr[nr] != len(data) {
		panic(fmt.Errorf("inconsistent storage: nnz = %d, len(ind) = %d, len(data) = %d",
			indptr[nr], len(ind), len(data)))
	}
	R = CSR{
		M:    sparse.NewCSR(nr, nc, indptr, ind, data),
		name: "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64               { return m.RawMatrix().Data }
func (m CSR) NNZ() int                      { return len(m.RawMatrix().Data) }

func (m *CSR) SetReadOnly(name ...string) CSR {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

// Row returns the column indices and values stored in row i, both alias storage.
func (m CSR) Row(i int) (cols []int, vals []float64) {
	raw := m.RawMatrix()
	b, e := raw.Indptr[i], raw.Indptr[i+1]
	return raw.Ind[b:e], raw.Data[b:e]
}

// RowRange returns the storage range [begin, end) of row i.
func (m CSR) RowRange(i int) (begin, end int) {
	raw := m.RawMatrix()
	return raw.Indptr[i], raw.Indptr[i+1]
}

// Col returns the column index of storage location k.
func (m CSR) Col(k int) int { return m.RawMatrix().Ind[k] }

// Index returns the storage location of entry (i,j), or -1 when not stored.
func (m CSR) Index(i, j int) int {
	var (
		raw  = m.RawMatrix()
		b, e = raw.Indptr[i], raw.Indptr[i+1]
		cols = raw.Ind[b:e]
	)
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return b + k
	}
	return -1
}

// AddTo accumulates val into the stored entry (i,j).
func (m CSR) AddTo(i, j int, val float64) {
	m.checkWritable()
	k := m.Index(i, j)
	if k < 0 {
		panic(fmt.Errorf("entry (%d,%d) is not part of the sparsity pattern of \"%s\"", i, j, m.name))
	}
	m.RawMatrix().Data[k] += val
}

// SymmetryMap returns, for every stored entry (i,j), the storage location of
// the mirror entry (j,i), or -1 when the mirror is not stored.
func (m CSR) SymmetryMap() (smap []int) {
	var (
		raw    = m.RawMatrix()
		nr, nc = m.Dims()
	)
	smap = make([]int, len(raw.Data))
	for i := 0; i < nr; i++ {
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			j := raw.Ind[k]
			if j >= nr || i >= nc {
				smap[k] = -1
				continue
			}
			smap[k] = m.Index(j, i)
		}
	}
	return
}

// MulVec computes y = M x, y must not alias x.
func (m CSR) MulVec(x, y []float64) {
	nr, nc := m.Dims()
	if len(x) != nc || len(y) != nr {
		panic(fmt.Errorf("dimension mismatch: matrix is %dx%d, len(x) = %d, len(y) = %d", nr, nc, len(x), len(y)))
	}
	for i := range y {
		y[i] = 0
	}
	m.M.MulVecTo(y, false, x)
}

// CloneStructure returns a new matrix with the same pattern and zero values.
func (m CSR) CloneStructure() (R CSR) {
	var (
		raw    = m.RawMatrix()
		nr, nc = m.Dims()
		indptr = make([]int, len(raw.Indptr))
		ind    = make([]int, len(raw.Ind))
	)
	copy(indptr, raw.Indptr)
	copy(ind, raw.Ind)
	R = NewCSR(nr, nc, indptr, ind, make([]float64, len(raw.Data)))
	return
}

// Copy returns a deep copy including values.
func (m CSR) Copy() (R CSR) {
	R = m.CloneStructure()
	copy(R.Data(), m.Data())
	return
}

func (m CSR) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

// PatternBuilder collects a structurally symmetric sparsity pattern. Every
// coupled pair (i,j) produces both (i,j) and (j,i), the diagonal is always present.
type PatternBuilder struct {
	N     int
	edges map[types.EdgeKey]struct{}
}

func NewPatternBuilder(N int) *PatternBuilder {
	return &PatternBuilder{
		N:     N,
		edges: make(map[types.EdgeKey]struct{}),
	}
}

// AddPair couples DOFs i and j.
func (pb *PatternBuilder) AddPair(i, j int) {
	if i < 0 || j < 0 || i >= pb.N || j >= pb.N {
		panic(fmt.Errorf("pair (%d,%d) out of range for %d dofs", i, j, pb.N))
	}
	if i == j {
		return
	}
	pb.edges[types.NewEdgeKey([2]int{i, j})] = struct{}{}
}

// AddBlock couples every pair of DOFs in dofs, as in an element block.
func (pb *PatternBuilder) AddBlock(dofs []int) {
	for a := 0; a < len(dofs); a++ {
		for b := a + 1; b < len(dofs); b++ {
			pb.AddPair(dofs[a], dofs[b])
		}
	}
}

// Edges returns the coupled pairs ordered by lower then upper DOF.
func (pb *PatternBuilder) Edges() (edges types.EdgeKeySlice) {
	edges = make(types.EdgeKeySlice, 0, len(pb.edges))
	for ek := range pb.edges {
		edges = append(edges, ek)
	}
	sort.Sort(edges)
	return
}

// Build compresses the pattern into a zero valued CSR matrix.
func (pb *PatternBuilder) Build() (R CSR) {
	var (
		rows = make([][]int, pb.N)
	)
	for i := 0; i < pb.N; i++ {
		rows[i] = append(rows[i], i)
	}
	for _, ek := range pb.Edges() {
		verts := ek.GetVertices(false)
		rows[verts[0]] = append(rows[verts[0]], verts[1])
		rows[verts[1]] = append(rows[verts[1]], verts[0])
	}
	indptr := make([]int, pb.N+1)
	for i, row := range rows {
		sort.Ints(row)
		indptr[i+1] = indptr[i] + len(row)
	}
	ind := make([]int, 0, indptr[pb.N])
	for _, row := range rows {
		ind = append(ind, row...)
	}
	R = NewCSR(pb.N, pb.N, indptr, ind, make([]float64, len(ind)))
	return
}
