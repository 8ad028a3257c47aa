package ell

import (
	"errors"
	"testing"

	"github.com/GG1991/MicroPP/hexgrid"
	"github.com/GG1991/MicroPP/material"
	"github.com/GG1991/MicroPP/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// elasticElemMat integrates B'CB over one element of g
func elasticElemMat(g *hexgrid.Grid) (Ae []float64) {
	const nd = hexgrid.NDofElem
	c := material.IsotropicCtan(5.e5, 3.e5)
	Ae = make([]float64, nd*nd)
	for gp := 0; gp < hexgrid.NGP; gp++ {
		B := &g.B[gp]
		for i := 0; i < nd; i++ {
			for j := 0; j < nd; j++ {
				var tmp float64
				for m := 0; m < types.NVoigt; m++ {
					for n := 0; n < types.NVoigt; n++ {
						tmp += B[m][i] * c.At(m, n) * B[n][j]
					}
				}
				Ae[i*nd+j] += tmp * g.Wg
			}
		}
	}
	return
}

func assembleTestMatrix(t *testing.T) (g *hexgrid.Grid, A *Matrix) {
	g, err := hexgrid.NewGrid(3, 4, 3, 1, 1.5, 1)
	require.NoError(t, err)
	A = New3D(g.Nx, g.Ny, g.Nz, hexgrid.Dim)
	Ae := elasticElemMat(g)
	for e := 0; e < g.NumElems; e++ {
		ex, ey, ez := g.ElemIJK(e)
		A.Add3D(ex, ey, ez, Ae)
	}
	return
}

func TestLayout(t *testing.T) {
	A := New3D(3, 3, 3, 3)
	assert.Equal(t, 81, A.Nnz)
	assert.Equal(t, 81, A.Nrow)
	{ // Corner node couples with 8 nodes, centre node with 27
		count := func(row int) (n int) {
			for s := 0; s < A.Nnz; s++ {
				if A.Cols[row*A.Nnz+s] >= 0 {
					n++
				}
			}
			return
		}
		assert.Equal(t, 8*3, count(0))
		centre := 1 + 1*3 + 1*9
		assert.Equal(t, 27*3, count(centre*3+2))
	}
	{ // Self slot holds the diagonal
		s := neighborSlot(0, 0, 0) * 3
		for r := 0; r < A.Nrow; r++ {
			assert.Equal(t, r, A.Cols[r*A.Nnz+s+r%3])
		}
	}
}

func TestAssembly(t *testing.T) {
	g, A := assembleTestMatrix(t)
	{ // Symmetric, consistent with the CSR and dense exports
		assert.True(t, A.MaxAsymmetry() < 1e-9)
		csr := A.ToCSR()
		r, c := csr.Dims()
		assert.Equal(t, [2]int{A.Nrow, A.Ncol}, [2]int{r, c})
		x := make([]float64, A.Nrow)
		for i := range x {
			x[i] = float64(i%7) - 3
		}
		y := make([]float64, A.Nrow)
		A.MulVec(x, y)
		var yc mat.VecDense
		yc.MulVec(csr, mat.NewVecDense(len(x), x))
		assert.InDeltaSlice(t, y, yc.RawVector().Data, 1e-6)
		dense := A.ToDense()
		assert.InDelta(t, A.At(5, 8), dense.At(5, 8), 1e-15)
	}
	{ // Rigid translations are in the null space before boundary conditions
		u := make([]float64, A.Nrow)
		for n := 0; n < g.NumNodes; n++ {
			u[n*3+1] = 1
		}
		y := make([]float64, A.Nrow)
		A.MulVec(u, y)
		assert.InDelta(t, 0., floats.Norm(y, 2), 1e-6)
	}
	{ // Boundary conditions give identity rows and zero coupling columns
		isBC := make([]bool, A.Nrow)
		for _, dof := range g.BoundaryDofs() {
			isBC[dof] = true
		}
		Abc := A.Clone()
		Abc.SetBC(isBC)
		assert.True(t, Abc.MaxAsymmetry() < 1e-9)
		for _, dof := range g.BoundaryDofs() {
			assert.Equal(t, 1., Abc.At(dof, dof))
		}
		inner := g.NodeIndex(1, 1, 1) * 3
		bnd := g.NodeIndex(0, 1, 1) * 3
		assert.NotEqual(t, 0., A.At(inner, bnd))
		assert.Equal(t, 0., Abc.At(inner, bnd))
		assert.Equal(t, 0., Abc.At(bnd, inner))
		// A is left untouched
		assert.NotEqual(t, 0., A.At(bnd, inner))
	}
}

func TestSolvers(t *testing.T) {
	g, A := assembleTestMatrix(t)
	isBC := make([]bool, A.Nrow)
	for _, dof := range g.BoundaryDofs() {
		isBC[dof] = true
	}
	A.SetBC(isBC)
	b := make([]float64, A.Nrow)
	for i := range b {
		if !isBC[i] {
			b[i] = float64(i%5) - 2
		}
	}
	xcg := make([]float64, A.Nrow)
	xch := make([]float64, A.Nrow)
	{
		stats, err := NewCG().Solve(A, b, xcg)
		require.NoError(t, err)
		assert.True(t, stats.Its > 0)
		assert.True(t, stats.ResErr <= 1e-8*floats.Norm(b, 2))
	}
	{
		stats, err := Cholesky{}.Solve(A, b, xch)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Its)
	}
	assert.InDeltaSlice(t, xch, xcg, 1e-5*floats.Norm(xch, 2))
	for i := range isBC {
		if isBC[i] {
			assert.Equal(t, 0., xcg[i])
		}
	}
	{ // Clones share settings, not work vectors, and repeated solves agree
		cg := NewCG()
		cg.MaxIts = 500
		c := PerWorker(cg).(*CG)
		assert.Equal(t, 500, c.MaxIts)
		assert.Nil(t, c.r)
		x1 := make([]float64, A.Nrow)
		x2 := make([]float64, A.Nrow)
		_, err := c.Solve(A, b, x1)
		require.NoError(t, err)
		_, err = c.Solve(A, b, x2)
		require.NoError(t, err)
		assert.Equal(t, x1, x2)
		assert.Nil(t, cg.r)
		assert.Equal(t, Cholesky{}, PerWorker(Cholesky{}))
	}
	{ // Iteration cap is reported, not silently accepted
		cg := &CG{MaxIts: 1, RelTol: 1e-12}
		_, err := cg.Solve(A, b, xcg)
		assert.True(t, errors.Is(err, ErrNotConverged))
	}
	{ // Zero right hand side converges immediately to zero
		zero := make([]float64, A.Nrow)
		stats, err := NewCG().Solve(A, zero, xcg)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Its)
		assert.Equal(t, 0., floats.Norm(xcg, 2))
	}
	{ // A singular system is a breakdown
		B := New3D(2, 2, 2, 3)
		_, err := NewCG().Solve(B, make([]float64, B.Nrow), make([]float64, B.Nrow))
		assert.True(t, errors.Is(err, ErrBreakdown))
		_, err = Cholesky{}.Solve(B, make([]float64, B.Nrow), make([]float64, B.Nrow))
		assert.True(t, errors.Is(err, ErrBreakdown))
	}
}
