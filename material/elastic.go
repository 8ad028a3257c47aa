package material

import "github.com/GG1991/MicroPP/types"

// Elastic is isotropic linear elasticity
type Elastic struct {
	rec  *Record
	ctan types.Ctan
}

func init() {
	allocators[types.LawElastic] = func(rec *Record) Law { return NewElastic(rec) }
}

func NewElastic(rec *Record) (o *Elastic) {
	o = &Elastic{rec: rec}
	lambda, mu := rec.Lame()
	o.ctan = IsotropicCtan(lambda, mu)
	return
}

// IsotropicCtan is the 6x6 isotropic stiffness in Voigt form with engineering shear strains
func IsotropicCtan(lambda, mu float64) (c types.Ctan) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c.Set(i, j, lambda)
		}
		c.Set(i, i, lambda+2*mu)
	}
	for i := 3; i < types.NVoigt; i++ {
		c.Set(i, i, mu)
	}
	return
}

func (o *Elastic) Record() *Record { return o.rec }

func (o *Elastic) NumVars() int { return 0 }

func (o *Elastic) Stress(eps *types.Voigt, _ []float64, sig *types.Voigt, _ []float64) (fTrial float64) {
	*sig = o.ctan.Mul(*eps)
	return -1
}

func (o *Elastic) Tangent(_ *types.Voigt, _ []float64, ctan *types.Ctan) { *ctan = o.ctan }
