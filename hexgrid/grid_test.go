package hexgrid

import (
	"errors"
	"math"
	"testing"

	"github.com/GG1991/MicroPP/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	{ // Invalid sizes
		_, err := NewGrid(1, 3, 3, 1, 1, 1)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
		_, err = NewGrid(3, 3, 3, 1, 0, 1)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
	}
	g, err := NewGrid(3, 4, 5, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 60, g.NumNodes)
	assert.Equal(t, 2*3*4, g.NumElems)
	assert.InDelta(t, 0.5, g.Dx, 1e-15)
	assert.InDelta(t, 2./3., g.Dy, 1e-15)
	assert.InDelta(t, 0.75, g.Dz, 1e-15)
	// Sum of all gauss weights is the RVE volume
	assert.InDelta(t, g.Volume(), g.Wg*float64(NGP*g.NumElems), 1e-12)
}

func TestIndexing(t *testing.T) {
	g, err := NewGrid(4, 3, 5, 1, 1, 1)
	require.NoError(t, err)
	{ // Node index is a bijection onto [0, nx*ny*nz)
		seen := make(map[int]bool)
		for k := 0; k < g.Nz; k++ {
			for j := 0; j < g.Ny; j++ {
				for i := 0; i < g.Nx; i++ {
					n := g.NodeIndex(i, j, k)
					assert.False(t, seen[n])
					seen[n] = true
					ii, jj, kk := g.NodeIJK(n)
					assert.Equal(t, [3]int{i, j, k}, [3]int{ii, jj, kk})
				}
			}
		}
		assert.Equal(t, g.NumNodes, len(seen))
		for n := range seen {
			assert.True(t, n >= 0 && n < g.NumNodes)
		}
	}
	{ // Element nodes sit at the corners of the element, in reference order
		for e := 0; e < g.NumElems; e++ {
			ex, ey, ez := g.ElemIJK(e)
			assert.Equal(t, e, g.ElemIndex(ex, ey, ez))
			nodes := g.ElemNodes(ex, ey, ez)
			c := g.ElemCentroid(ex, ey, ez)
			for a, n := range nodes {
				x := g.NodeCoords(n)
				assert.InDelta(t, c[0]+0.5*nodeXi[a][0]*g.Dx, x[0], 1e-14)
				assert.InDelta(t, c[1]+0.5*nodeXi[a][1]*g.Dy, x[1], 1e-14)
				assert.InDelta(t, c[2]+0.5*nodeXi[a][2]*g.Dz, x[2], 1e-14)
			}
		}
	}
	{ // Boundary nodes listed once each, and only boundary nodes
		b := g.BoundaryNodes()
		interior := (g.Nx - 2) * (g.Ny - 2) * (g.Nz - 2)
		assert.Equal(t, g.NumNodes-interior, len(b))
		seen := make(map[int]bool)
		for _, n := range b {
			assert.False(t, seen[n])
			seen[n] = true
			assert.True(t, g.IsBoundary(g.NodeIJK(n)))
		}
		assert.Equal(t, 3*len(b), len(g.BoundaryDofs()))
		assert.Equal(t, types.FaceX0|types.FaceY0|types.FaceZ0, g.Faces(0, 0, 0))
		assert.Equal(t, "x1|z1", g.Faces(g.Nx-1, 1, g.Nz-1).String())
	}
	{ // Colors partition the elements and never share nodes inside a color
		total := 0
		for _, group := range g.Colors() {
			total += len(group)
			used := make(map[int]bool)
			for _, e := range group {
				for _, n := range g.ElemNodes(g.ElemIJK(e)) {
					assert.False(t, used[n])
					used[n] = true
				}
			}
		}
		assert.Equal(t, g.NumElems, total)
	}
}

func TestShapeFunctions(t *testing.T) {
	{ // Partition of unity and Kronecker property
		for _, xi := range GaussPoints() {
			N := ShapeFunctions(xi)
			var sum float64
			for _, val := range N {
				sum += val
			}
			assert.InDelta(t, 1., sum, 1e-15)
			var dsum [Dim]float64
			for _, d := range ShapeDerivatives(xi) {
				for i := 0; i < Dim; i++ {
					dsum[i] += d[i]
				}
			}
			assert.InDelta(t, 0., dsum[0]+dsum[1]+dsum[2], 1e-15)
		}
		for a := 0; a < NPE; a++ {
			N := ShapeFunctions(nodeXi[a])
			for b := 0; b < NPE; b++ {
				if a == b {
					assert.InDelta(t, 1., N[b], 1e-15)
				} else {
					assert.InDelta(t, 0., N[b], 1e-15)
				}
			}
		}
	}
	{ // Gauss points lie at +-1/sqrt(3)
		for _, xi := range GaussPoints() {
			for _, v := range xi {
				assert.InDelta(t, 1./math.Sqrt(3.), math.Abs(v), 1e-15)
			}
		}
	}
}

func TestStrain(t *testing.T) {
	g, err := NewGrid(3, 3, 3, 1.5, 1, 2)
	require.NoError(t, err)
	u := make([]float64, g.NumDofs)
	{ // Rigid body translation and rotation produce no strain
		for n := 0; n < g.NumNodes; n++ {
			x := g.NodeCoords(n)
			u[n*3+0] = 0.1 - 0.02*x[1] + 0.03*x[2]
			u[n*3+1] = -0.2 + 0.02*x[0] - 0.05*x[2]
			u[n*3+2] = 0.3 - 0.03*x[0] + 0.05*x[1]
		}
		for e := 0; e < g.NumElems; e++ {
			ex, ey, ez := g.ElemIJK(e)
			for gp := 0; gp < NGP; gp++ {
				eps := g.Strain(u, gp, ex, ey, ez)
				assert.InDelta(t, 0., eps.Norm(), 1e-14)
			}
		}
	}
	{ // Patch test: an affine field reproduces its strain exactly at every gauss point
		target := types.Voigt{0.01, -0.02, 0.005, 0.03, -0.01, 0.02}
		g.SetAffine(target, u)
		for e := 0; e < g.NumElems; e++ {
			ex, ey, ez := g.ElemIJK(e)
			for gp := 0; gp < NGP; gp++ {
				eps := g.Strain(u, gp, ex, ey, ez)
				for i := range eps {
					assert.InDelta(t, target[i], eps[i], 1e-14)
				}
			}
		}
		// Boundary-only write leaves interior nodes untouched
		v := make([]float64, g.NumDofs)
		g.SetAffineBoundary(target, v)
		c := g.NodeIndex(1, 1, 1)
		assert.Equal(t, []float64{0, 0, 0}, v[c*3:c*3+3])
		n := g.NodeIndex(2, 1, 2)
		assert.InDeltaSlice(t, u[n*3:n*3+3], v[n*3:n*3+3], 1e-15)
	}
}
