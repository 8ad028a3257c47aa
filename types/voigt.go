package types

import "math"

const (
	NVoigt = 6 // Number of independent components of a symmetric 3D tensor
	NCtan  = NVoigt * NVoigt
)

/*
Voigt stores a symmetric 3D tensor as [xx, yy, zz, xy, xz, yz].
Strains carry engineering shears (γ = 2ε), stresses carry tensor shears.
*/
type Voigt [NVoigt]float64

// Ctan is a 6x6 tangent stored row major, C[i*6+j] = dσ_i/dε_j
type Ctan [NCtan]float64

func (v Voigt) Norm() float64 {
	var sum float64
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}

func (v Voigt) Trace() float64 { return v[0] + v[1] + v[2] }

func (v Voigt) Scale(a float64) (r Voigt) {
	for i := range v {
		r[i] = a * v[i]
	}
	return
}

func (v Voigt) Add(a Voigt) (r Voigt) {
	for i := range v {
		r[i] = v[i] + a[i]
	}
	return
}

// Unit returns the Voigt vector with a single unit component at i
func Unit(i int) (v Voigt) {
	v[i] = 1
	return
}

func (c *Ctan) At(i, j int) float64     { return c[i*NVoigt+j] }
func (c *Ctan) Set(i, j int, v float64) { c[i*NVoigt+j] = v }

// Mul returns C·ε
func (c *Ctan) Mul(eps Voigt) (sig Voigt) {
	for i := 0; i < NVoigt; i++ {
		var tmp float64
		for j := 0; j < NVoigt; j++ {
			tmp += c[i*NVoigt+j] * eps[j]
		}
		sig[i] = tmp
	}
	return
}

func (c *Ctan) Transpose() (r Ctan) {
	for i := 0; i < NVoigt; i++ {
		for j := 0; j < NVoigt; j++ {
			r[j*NVoigt+i] = c[i*NVoigt+j]
		}
	}
	return
}

// MaxAsymmetry returns max |C_ij - C_ji|
func (c *Ctan) MaxAsymmetry() (asym float64) {
	for i := 0; i < NVoigt; i++ {
		for j := i + 1; j < NVoigt; j++ {
			asym = math.Max(asym, math.Abs(c[i*NVoigt+j]-c[j*NVoigt+i]))
		}
	}
	return
}

func (c *Ctan) Row(i int) (r Voigt) {
	copy(r[:], c[i*NVoigt:(i+1)*NVoigt])
	return
}

func (c *Ctan) SetCol(j int, col Voigt) {
	for i := 0; i < NVoigt; i++ {
		c[i*NVoigt+j] = col[i]
	}
}
