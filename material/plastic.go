package material

import (
	"math"

	"github.com/GG1991/MicroPP/types"
)

const (
	NumVarsPlastic = 7 // Plastic strain [6] (engineering shears) plus equivalent plastic strain
	ixAlpha        = 6
)

var sqrt23 = math.Sqrt(2. / 3.)

/*
Plastic is small strain J2 (von Mises) plasticity with linear isotropic
hardening, integrated with the radial return algorithm.

	f = |s - 0| - sqrt(2/3) (Sy + Ka α)

The tangent is the algorithmic (consistent) one:

	C = K 1⊗1 + 2μθ Idev - 2μθ̄ n⊗n
	θ = 1 - 2μΔγ/|s_tr|,  θ̄ = 1/(1 + Ka/(3μ)) - (1 - θ)
*/
type Plastic struct {
	rec        *Record
	lambda, mu float64
	bulk       float64
	ctanElast  types.Ctan
}

func init() {
	allocators[types.LawPlastic] = func(rec *Record) Law { return NewPlastic(rec) }
}

func NewPlastic(rec *Record) (o *Plastic) {
	o = &Plastic{rec: rec}
	o.lambda, o.mu = rec.Lame()
	o.bulk = o.lambda + 2*o.mu/3
	o.ctanElast = IsotropicCtan(o.lambda, o.mu)
	return
}

func (o *Plastic) Record() *Record { return o.rec }

func (o *Plastic) NumVars() int { return NumVarsPlastic }

type returnMap struct {
	epsP    types.Voigt // Plastic strain, engineering shears
	alpha   float64
	trace   float64     // Volumetric elastic strain
	sTrial  types.Voigt // Trial deviatoric stress, tensor shears
	normS   float64
	fTrial  float64
	dGamma  float64
	n       types.Voigt // Flow direction, tensor shears
	yielded bool
}

func (o *Plastic) trial(eps *types.Voigt, varsOld []float64) (r returnMap) {
	if len(varsOld) >= NumVarsPlastic {
		copy(r.epsP[:], varsOld[:6])
		r.alpha = varsOld[ixAlpha]
	}
	var ee types.Voigt
	for i := 0; i < types.NVoigt; i++ {
		ee[i] = eps[i] - r.epsP[i]
	}
	r.trace = ee.Trace()
	for i := 0; i < 3; i++ {
		r.sTrial[i] = 2 * o.mu * (ee[i] - r.trace/3)
	}
	for i := 3; i < types.NVoigt; i++ {
		r.sTrial[i] = o.mu * ee[i]
	}
	r.normS = tensorNorm(&r.sTrial)
	r.fTrial = r.normS - sqrt23*(o.rec.Sy+o.rec.Ka*r.alpha)
	if r.fTrial > 0 {
		r.yielded = true
		r.dGamma = r.fTrial / (2*o.mu + 2*o.rec.Ka/3)
		for i := range r.n {
			r.n[i] = r.sTrial[i] / r.normS
		}
	}
	return
}

func tensorNorm(s *types.Voigt) float64 {
	return math.Sqrt(s[0]*s[0] + s[1]*s[1] + s[2]*s[2] +
		2*(s[3]*s[3]+s[4]*s[4]+s[5]*s[5]))
}

func (o *Plastic) Stress(eps *types.Voigt, varsOld []float64, sig *types.Voigt, varsNew []float64) (fTrial float64) {
	r := o.trial(eps, varsOld)
	p := o.bulk * r.trace
	for i := 0; i < types.NVoigt; i++ {
		s := r.sTrial[i]
		if r.yielded {
			s -= 2 * o.mu * r.dGamma * r.n[i]
		}
		sig[i] = s
		if i < 3 {
			sig[i] += p
		}
	}
	if varsNew != nil {
		epsP, alpha := r.epsP, r.alpha
		if r.yielded {
			for i := 0; i < 3; i++ {
				epsP[i] += r.dGamma * r.n[i]
			}
			for i := 3; i < types.NVoigt; i++ {
				epsP[i] += 2 * r.dGamma * r.n[i]
			}
			alpha += sqrt23 * r.dGamma
		}
		copy(varsNew[:6], epsP[:])
		varsNew[ixAlpha] = alpha
	}
	return r.fTrial
}

func (o *Plastic) Tangent(eps *types.Voigt, varsOld []float64, ctan *types.Ctan) {
	r := o.trial(eps, varsOld)
	if !r.yielded {
		*ctan = o.ctanElast
		return
	}
	var (
		mu       = o.mu
		theta    = 1 - 2*mu*r.dGamma/r.normS
		thetaBar = 1/(1+o.rec.Ka/(3*mu)) - (1 - theta)
	)
	for i := 0; i < types.NVoigt; i++ {
		for j := 0; j < types.NVoigt; j++ {
			var c float64
			switch {
			case i < 3 && j < 3:
				c = o.bulk - 2*mu*theta/3
				if i == j {
					c += 2 * mu * theta
				}
			case i == j:
				c = mu * theta
			}
			c -= 2 * mu * thetaBar * r.n[i] * r.n[j]
			ctan.Set(i, j, c)
		}
	}
}
