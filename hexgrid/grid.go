package hexgrid

import (
	"fmt"

	"github.com/GG1991/MicroPP/types"
)

/*
Grid is a structured, uniform, axis aligned hexahedral mesh of an RVE.
Nodes and elements are never materialized: node (i,j,k) lives at index
i + j*Nx + k*Nx*Ny and element (ex,ey,ez) at ex + ey*Nex + ez*Nex*Ney.
Because every element has the same shape, the shape function derivatives,
the B operators and the quadrature weight are computed once here and shared by
all elements.
*/
type Grid struct {
	Nx, Ny, Nz    int // Nodes per direction
	Nex, Ney, Nez int // Elements per direction
	Lx, Ly, Lz    float64
	Dx, Dy, Dz    float64 // Element edge lengths
	NumNodes      int
	NumElems      int
	NumDofs       int
	Wg            float64                              // Quadrature weight times Jacobian determinant, same for all gps
	Xg            [NGP][Dim]float64                    // Natural coordinates of the gauss points
	B             [NGP][types.NVoigt][NDofElem]float64 // Strain-displacement operator per gauss point
	boundary      []int                                // Boundary nodes, each listed once
	colors        [8][]int                             // Elements grouped so that no two in a group share a node
}

func NewGrid(nx, ny, nz int, lx, ly, lz float64) (g *Grid, err error) {
	if nx < 2 || ny < 2 || nz < 2 {
		err = fmt.Errorf("%w: grid needs at least 2 nodes per direction, have [%d,%d,%d]",
			types.ErrConfiguration, nx, ny, nz)
		return
	}
	if !(lx > 0 && ly > 0 && lz > 0) {
		err = fmt.Errorf("%w: RVE lengths must be positive, have [%g,%g,%g]",
			types.ErrConfiguration, lx, ly, lz)
		return
	}
	g = &Grid{
		Nx: nx, Ny: ny, Nz: nz,
		Nex: nx - 1, Ney: ny - 1, Nez: nz - 1,
		Lx: lx, Ly: ly, Lz: lz,
	}
	g.Dx, g.Dy, g.Dz = lx/float64(g.Nex), ly/float64(g.Ney), lz/float64(g.Nez)
	g.NumNodes = nx * ny * nz
	g.NumElems = g.Nex * g.Ney * g.Nez
	g.NumDofs = g.NumNodes * Dim
	// 2x2x2 rule: unit weights, detJ = dx*dy*dz/8
	g.Wg = g.Dx * g.Dy * g.Dz / 8.
	g.Xg = GaussPoints()
	for gp := 0; gp < NGP; gp++ {
		g.B[gp] = calcBMat(g.Xg[gp], g.Dx, g.Dy, g.Dz)
	}
	g.boundary = g.buildBoundary()
	for ez := 0; ez < g.Nez; ez++ {
		for ey := 0; ey < g.Ney; ey++ {
			for ex := 0; ex < g.Nex; ex++ {
				c := ex%2 + 2*(ey%2) + 4*(ez%2)
				g.colors[c] = append(g.colors[c], g.ElemIndex(ex, ey, ez))
			}
		}
	}
	return
}

func (g *Grid) NodeIndex(i, j, k int) int { return i + j*g.Nx + k*g.Nx*g.Ny }

func (g *Grid) NodeIJK(n int) (i, j, k int) {
	nxny := g.Nx * g.Ny
	k = n / nxny
	j = (n - k*nxny) / g.Nx
	i = n - k*nxny - j*g.Nx
	return
}

func (g *Grid) NodeCoords(n int) (x [Dim]float64) {
	i, j, k := g.NodeIJK(n)
	x[0], x[1], x[2] = float64(i)*g.Dx, float64(j)*g.Dy, float64(k)*g.Dz
	return
}

func (g *Grid) ElemIndex(ex, ey, ez int) int { return ex + ey*g.Nex + ez*g.Nex*g.Ney }

func (g *Grid) ElemIJK(e int) (ex, ey, ez int) {
	nn := g.Nex * g.Ney
	ez = e / nn
	ey = (e - ez*nn) / g.Nex
	ex = e - ez*nn - ey*g.Nex
	return
}

// ElemNodes returns the global node indices of an element, ordered like the Hex8 reference nodes
func (g *Grid) ElemNodes(ex, ey, ez int) (n [NPE]int) {
	var (
		nxny = g.Nx * g.Ny
		n0   = ez*nxny + ey*g.Nx + ex
	)
	n[0] = n0
	n[1] = n0 + 1
	n[2] = n0 + g.Nx + 1
	n[3] = n0 + g.Nx
	for a := 0; a < 4; a++ {
		n[a+4] = n[a] + nxny
	}
	return
}

// ElemDofs returns the global dof indices of an element, node major
func (g *Grid) ElemDofs(ex, ey, ez int) (dofs [NDofElem]int) {
	n := g.ElemNodes(ex, ey, ez)
	for a := 0; a < NPE; a++ {
		for d := 0; d < Dim; d++ {
			dofs[a*Dim+d] = n[a]*Dim + d
		}
	}
	return
}

func (g *Grid) ElemCentroid(ex, ey, ez int) (x [Dim]float64) {
	x[0] = (float64(ex) + 0.5) * g.Dx
	x[1] = (float64(ey) + 0.5) * g.Dy
	x[2] = (float64(ez) + 0.5) * g.Dz
	return
}

// ElemDispl gathers the element displacement vector from the global field u
func (g *Grid) ElemDispl(u []float64, ex, ey, ez int) (ue [NDofElem]float64) {
	dofs := g.ElemDofs(ex, ey, ez)
	for i, dof := range dofs {
		ue[i] = u[dof]
	}
	return
}

// Strain returns the Voigt strain at gauss point gp of element (ex,ey,ez)
func (g *Grid) Strain(u []float64, gp, ex, ey, ez int) (eps types.Voigt) {
	ue := g.ElemDispl(u, ex, ey, ez)
	return g.StrainFromElem(&ue, gp)
}

func (g *Grid) StrainFromElem(ue *[NDofElem]float64, gp int) (eps types.Voigt) {
	bmat := &g.B[gp]
	for i := 0; i < types.NVoigt; i++ {
		var tmp float64
		for j := 0; j < NDofElem; j++ {
			tmp += bmat[i][j] * ue[j]
		}
		eps[i] = tmp
	}
	return
}

func (g *Grid) Volume() float64 { return g.Lx * g.Ly * g.Lz }

// Faces reports which RVE faces node (i,j,k) belongs to
func (g *Grid) Faces(i, j, k int) (f types.Face) {
	if i == 0 {
		f |= types.FaceX0
	}
	if i == g.Nx-1 {
		f |= types.FaceX1
	}
	if j == 0 {
		f |= types.FaceY0
	}
	if j == g.Ny-1 {
		f |= types.FaceY1
	}
	if k == 0 {
		f |= types.FaceZ0
	}
	if k == g.Nz-1 {
		f |= types.FaceZ1
	}
	return
}

func (g *Grid) IsBoundary(i, j, k int) bool { return g.Faces(i, j, k).IsBoundary() }

// BoundaryNodes lists every node on the six faces exactly once: z=0, z=lz,
// then y=0 and y=ly without the z faces, then x=0 and x=lx interiors.
func (g *Grid) BoundaryNodes() []int { return g.boundary }

func (g *Grid) buildBoundary() (nodes []int) {
	var (
		nx, ny, nz = g.Nx, g.Ny, g.Nz
	)
	for _, k := range []int{0, nz - 1} {
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				nodes = append(nodes, g.NodeIndex(i, j, k))
			}
		}
	}
	for _, j := range []int{0, ny - 1} {
		for i := 0; i < nx; i++ {
			for k := 1; k < nz-1; k++ {
				nodes = append(nodes, g.NodeIndex(i, j, k))
			}
		}
	}
	for _, i := range []int{0, nx - 1} {
		for j := 1; j < ny-1; j++ {
			for k := 1; k < nz-1; k++ {
				nodes = append(nodes, g.NodeIndex(i, j, k))
			}
		}
	}
	return
}

// BoundaryDofs expands BoundaryNodes into dof indices
func (g *Grid) BoundaryDofs() (dofs []int) {
	dofs = make([]int, 0, len(g.boundary)*Dim)
	for _, n := range g.boundary {
		for d := 0; d < Dim; d++ {
			dofs = append(dofs, n*Dim+d)
		}
	}
	return
}

// Colors returns 8 groups of element indices; elements in one group share no node
func (g *Grid) Colors() [8][]int { return g.colors }

/*
AffineDisplacement is the displacement of a point x under a homogeneous strain:
u = ε·x, with the tensor shears taken as half the engineering ones.
*/
func AffineDisplacement(eps types.Voigt, x [Dim]float64) (u [Dim]float64) {
	u[0] = eps[0]*x[0] + 0.5*eps[3]*x[1] + 0.5*eps[4]*x[2]
	u[1] = 0.5*eps[3]*x[0] + eps[1]*x[1] + 0.5*eps[5]*x[2]
	u[2] = 0.5*eps[4]*x[0] + 0.5*eps[5]*x[1] + eps[2]*x[2]
	return
}

// SetAffineBoundary writes the affine displacement of eps into u at every boundary node
func (g *Grid) SetAffineBoundary(eps types.Voigt, u []float64) {
	for _, n := range g.boundary {
		ub := AffineDisplacement(eps, g.NodeCoords(n))
		copy(u[n*Dim:n*Dim+Dim], ub[:])
	}
}

// SetAffine writes the affine displacement of eps into every node of u
func (g *Grid) SetAffine(eps types.Voigt, u []float64) {
	for n := 0; n < g.NumNodes; n++ {
		un := AffineDisplacement(eps, g.NodeCoords(n))
		copy(u[n*Dim:n*Dim+Dim], un[:])
	}
}
