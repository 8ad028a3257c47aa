/*
Package ell stores the stiffness of a structured 3D grid in a fixed bandwidth
(ELLPACK style) layout. Every node couples with at most its 27 structured
neighbours, so every row owns exactly 27*dim column slots; slots of neighbours
outside the grid carry column -1 and a zero value.
*/
package ell

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

const nNeighbors = 27

type Matrix struct {
	Nrow, Ncol int
	Nnz        int       // Column slots per row
	Cols       []int     // Nrow*Nnz, -1 for padding
	Vals       []float64 // Nrow*Nnz
	nx, ny, nz int
	dim        int
}

// neighborSlot returns the slot of the structured offset (di,dj,dk), each in {-1,0,1}
func neighborSlot(di, dj, dk int) int { return (dk+1)*9 + (dj+1)*3 + (di + 1) }

// New3D allocates the matrix for an nx*ny*nz node grid with dim dofs per node
func New3D(nx, ny, nz, dim int) (A *Matrix) {
	var (
		nn  = nx * ny * nz
		nnz = nNeighbors * dim
	)
	A = &Matrix{
		Nrow: nn * dim, Ncol: nn * dim,
		Nnz:  nnz,
		Cols: make([]int, nn*dim*nnz),
		Vals: make([]float64, nn*dim*nnz),
		nx:   nx, ny: ny, nz: nz,
		dim: dim,
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				n := i + j*nx + k*nx*ny
				for d := 0; d < dim; d++ {
					row := A.Cols[(n*dim+d)*nnz : (n*dim+d+1)*nnz]
					for dk := -1; dk <= 1; dk++ {
						for dj := -1; dj <= 1; dj++ {
							for di := -1; di <= 1; di++ {
								s := neighborSlot(di, dj, dk) * dim
								ii, jj, kk := i+di, j+dj, k+dk
								inside := ii >= 0 && ii < nx && jj >= 0 && jj < ny && kk >= 0 && kk < nz
								for dd := 0; dd < dim; dd++ {
									if inside {
										row[s+dd] = (ii+jj*nx+kk*nx*ny)*dim + dd
									} else {
										row[s+dd] = -1
									}
								}
							}
						}
					}
				}
			}
		}
	}
	return
}

func (A *Matrix) Dims() (r, c int) { return A.Nrow, A.Ncol }

func (A *Matrix) SetZero() { clear(A.Vals) }

// CopyFrom copies the values of B, which must share the layout of A
func (A *Matrix) CopyFrom(B *Matrix) {
	if A.Nrow != B.Nrow || A.Nnz != B.Nnz {
		panic(fmt.Errorf("unable to copy ell matrix of %dx%d into %dx%d", B.Nrow, B.Nnz, A.Nrow, A.Nnz))
	}
	copy(A.Vals, B.Vals)
}

// Clone shares the immutable column layout and copies the values
func (A *Matrix) Clone() (B *Matrix) {
	B = &Matrix{}
	*B = *A
	B.Vals = make([]float64, len(A.Vals))
	copy(B.Vals, A.Vals)
	return
}

// hex8 local node offsets, bottom face counter clockwise then top face
var hexOffsets = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

/*
Add3D scatter-adds the element matrix Ae (row major, 8*dim square) of element
(ex,ey,ez) into A. Element nodes follow the Hex8 reference order.
*/
func (A *Matrix) Add3D(ex, ey, ez int, Ae []float64) {
	var (
		dim   = A.dim
		npe   = len(hexOffsets)
		nedof = npe * dim
		nxny  = A.nx * A.ny
		n0    = ex + ey*A.nx + ez*nxny
	)
	if len(Ae) != nedof*nedof {
		panic(fmt.Errorf("element matrix has %d values, expected %d", len(Ae), nedof*nedof))
	}
	for a := 0; a < npe; a++ {
		oa := hexOffsets[a]
		na := n0 + oa[0] + oa[1]*A.nx + oa[2]*nxny
		for b := 0; b < npe; b++ {
			ob := hexOffsets[b]
			s := neighborSlot(ob[0]-oa[0], ob[1]-oa[1], ob[2]-oa[2]) * dim
			for da := 0; da < dim; da++ {
				row := (na*dim + da) * A.Nnz
				aeRow := (a*dim + da) * nedof
				for db := 0; db < dim; db++ {
					A.Vals[row+s+db] += Ae[aeRow+b*dim+db]
				}
			}
		}
	}
}

/*
SetBC enforces Dirichlet conditions on the dofs flagged in isBC: their rows
become identity rows and their columns are zeroed in every other row, which
keeps the reduced system symmetric.
*/
func (A *Matrix) SetBC(isBC []bool) {
	if len(isBC) != A.Nrow {
		panic(fmt.Errorf("bc mask has length %d, matrix has %d rows", len(isBC), A.Nrow))
	}
	for r := 0; r < A.Nrow; r++ {
		var (
			cols = A.Cols[r*A.Nnz : (r+1)*A.Nnz]
			vals = A.Vals[r*A.Nnz : (r+1)*A.Nnz]
		)
		if isBC[r] {
			for s, c := range cols {
				if c == r {
					vals[s] = 1
				} else {
					vals[s] = 0
				}
			}
			continue
		}
		for s, c := range cols {
			if c >= 0 && isBC[c] {
				vals[s] = 0
			}
		}
	}
}

// MulVec computes y = A x
func (A *Matrix) MulVec(x, y []float64) {
	for r := 0; r < A.Nrow; r++ {
		var (
			tmp  float64
			base = r * A.Nnz
		)
		for s := 0; s < A.Nnz; s++ {
			if c := A.Cols[base+s]; c >= 0 {
				tmp += A.Vals[base+s] * x[c]
			}
		}
		y[r] = tmp
	}
}

func (A *Matrix) Diag() (d []float64) {
	d = make([]float64, A.Nrow)
	A.DiagTo(d)
	return
}

// DiagTo writes the diagonal of A into d
func (A *Matrix) DiagTo(d []float64) {
	for r := 0; r < A.Nrow; r++ {
		d[r] = 0
		for s := 0; s < A.Nnz; s++ {
			if A.Cols[r*A.Nnz+s] == r {
				d[r] = A.Vals[r*A.Nnz+s]
				break
			}
		}
	}
}

// At satisfies mat.Matrix
func (A *Matrix) At(i, j int) float64 {
	for s := 0; s < A.Nnz; s++ {
		if A.Cols[i*A.Nnz+s] == j {
			return A.Vals[i*A.Nnz+s]
		}
	}
	return 0
}

func (A *Matrix) T() mat.Matrix { return mat.Transpose{Matrix: A} }

// ToCSR exports the non zero entries as a compressed sparse row matrix
func (A *Matrix) ToCSR() *sparse.CSR {
	dok := sparse.NewDOK(A.Nrow, A.Ncol)
	for r := 0; r < A.Nrow; r++ {
		for s := 0; s < A.Nnz; s++ {
			c, v := A.Cols[r*A.Nnz+s], A.Vals[r*A.Nnz+s]
			if c >= 0 && v != 0 {
				dok.Set(r, c, v)
			}
		}
	}
	return dok.ToCSR()
}

func (A *Matrix) ToDense() *mat.Dense { return A.ToCSR().ToDense() }

// MaxAsymmetry returns max |A_ij - A_ji| over the stored entries
func (A *Matrix) MaxAsymmetry() (asym float64) {
	for r := 0; r < A.Nrow; r++ {
		for s := 0; s < A.Nnz; s++ {
			c := A.Cols[r*A.Nnz+s]
			if c < 0 {
				continue
			}
			if d := A.Vals[r*A.Nnz+s] - A.At(c, r); d > asym {
				asym = d
			} else if -d > asym {
				asym = -d
			}
		}
	}
	return
}
