package hexgrid

import (
	"math"

	"github.com/GG1991/MicroPP/types"
)

const (
	Dim      = 3        // Spatial dimension
	NPE      = 8        // Nodes per element
	NGP      = 8        // Gauss points per element, 2x2x2 rule
	NDofElem = NPE * Dim // Degrees of freedom per element
)

// Natural coordinates of the Hex8 nodes, bottom face counter clockwise then top face
var nodeXi = [NPE][Dim]float64{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// GaussPoints returns the 2x2x2 Gauss-Legendre points, ordered like the element nodes
func GaussPoints() (xg [NGP][Dim]float64) {
	a := 1. / math.Sqrt(3.)
	for gp := 0; gp < NGP; gp++ {
		for d := 0; d < Dim; d++ {
			xg[gp][d] = a * nodeXi[gp][d]
		}
	}
	return
}

// ShapeFunctions evaluates the trilinear shape functions at natural coordinates xi
func ShapeFunctions(xi [Dim]float64) (N [NPE]float64) {
	for a := 0; a < NPE; a++ {
		N[a] = 0.125 *
			(1 + nodeXi[a][0]*xi[0]) *
			(1 + nodeXi[a][1]*xi[1]) *
			(1 + nodeXi[a][2]*xi[2])
	}
	return
}

// ShapeDerivatives evaluates dN/dxi at natural coordinates xi
func ShapeDerivatives(xi [Dim]float64) (dN [NPE][Dim]float64) {
	for a := 0; a < NPE; a++ {
		r, s, t := nodeXi[a][0], nodeXi[a][1], nodeXi[a][2]
		dN[a][0] = 0.125 * r * (1 + s*xi[1]) * (1 + t*xi[2])
		dN[a][1] = 0.125 * s * (1 + r*xi[0]) * (1 + t*xi[2])
		dN[a][2] = 0.125 * t * (1 + r*xi[0]) * (1 + s*xi[1])
	}
	return
}

/*
calcBMat builds the strain-displacement operator of an axis aligned brick with
edge lengths dx, dy, dz at natural coordinates xi. The Jacobian is diagonal and
constant, so dN/dx = dN/dxi * 2/dx.
Rows follow types.Voigt: xx, yy, zz, xy, xz, yz (engineering shears).
*/
func calcBMat(xi [Dim]float64, dx, dy, dz float64) (B [types.NVoigt][NDofElem]float64) {
	dN := ShapeDerivatives(xi)
	for a := 0; a < NPE; a++ {
		var (
			bx = dN[a][0] * 2 / dx
			by = dN[a][1] * 2 / dy
			bz = dN[a][2] * 2 / dz
			c  = a * Dim
		)
		B[0][c] = bx
		B[1][c+1] = by
		B[2][c+2] = bz
		B[3][c], B[3][c+1] = by, bx
		B[4][c], B[4][c+2] = bz, bx
		B[5][c+1], B[5][c+2] = bz, by
	}
	return
}
