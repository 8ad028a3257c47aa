package micro

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/GG1991/MicroPP/ell"
	"github.com/GG1991/MicroPP/hexgrid"
	"github.com/GG1991/MicroPP/material"
	"github.com/GG1991/MicroPP/types"
	"github.com/GG1991/MicroPP/utils"
)

const nde = hexgrid.NDofElem

// elemScratch is owned by one assembly worker, it also carries that worker's partial reductions
type elemScratch struct {
	be        [nde]float64
	Ae        []float64
	cb        [types.NVoigt][nde]float64
	sig       types.Voigt
	fTrialMax float64
	nonLinear bool
	dsig      [types.NVoigt]types.Voigt
}

func (sc *elemScratch) reset() {
	sc.sig = types.Voigt{}
	sc.fTrialMax = math.Inf(-1)
	sc.nonLinear = false
	sc.dsig = [types.NVoigt]types.Voigt{}
}

/*
forEachElem calls fn once per element. With more than one assembly worker the
elements are processed color by color: elements of one color share no node, so
the workers can scatter into global rows without synchronization.
*/
func (m *Micro) forEachElem(fn func(w, ex, ey, ez int)) {
	var (
		g  = m.grid
		nw = m.opts.AssemblyWorkers
	)
	if nw <= 1 {
		for e := 0; e < g.NumElems; e++ {
			ex, ey, ez := g.ElemIJK(e)
			fn(0, ex, ey, ez)
		}
		return
	}
	for _, group := range g.Colors() {
		if len(group) == 0 {
			continue
		}
		NP := nw
		if NP > len(group) {
			NP = len(group)
		}
		utils.NewPartitionMap(NP, len(group)).Each(func(np, kMin, kMax int) {
			for k := kMin; k < kMax; k++ {
				ex, ey, ez := g.ElemIJK(group[k])
				fn(np, ex, ey, ez)
			}
		})
	}
}

// law returns the constitutive law of element (ex,ey,ez), looked up from its centroid
func (m *Micro) law(ex, ey, ez int) material.Law {
	return m.materials.Law(m.ms.materialID(m.grid.ElemCentroid(ex, ey, ez)))
}

// gpVars is the internal variable slice of one gauss point, nil for a virgin state or when no law has any
func (m *Micro) gpVars(vars []float64, ex, ey, ez, gp int) []float64 {
	if m.nvars == 0 || vars == nil {
		return nil
	}
	ix := (m.grid.ElemIndex(ex, ey, ez)*hexgrid.NGP + gp) * m.nvars
	return vars[ix : ix+m.nvars]
}

/*
assemblyRHS writes the negative internal force vector of u into ws.b, with the
boundary rows zeroed, and returns its norm and the largest trial yield
function found.
*/
func (m *Micro) assemblyRHS(ws *workspace, u, varsOld []float64) (norm, fTrialMax float64) {
	var (
		g = m.grid
		b = ws.b
	)
	clear(b)
	for w := range ws.scr {
		ws.scr[w].reset()
	}
	m.forEachElem(func(w, ex, ey, ez int) {
		var (
			sc  = &ws.scr[w]
			law = m.law(ex, ey, ez)
			ue  = g.ElemDispl(u, ex, ey, ez)
		)
		clear(sc.be[:])
		for gp := 0; gp < hexgrid.NGP; gp++ {
			var (
				eps = g.StrainFromElem(&ue, gp)
				sig types.Voigt
				B   = &g.B[gp]
			)
			f := law.Stress(&eps, m.gpVars(varsOld, ex, ey, ez, gp), &sig, nil)
			sc.fTrialMax = math.Max(sc.fTrialMax, f)
			for i := 0; i < nde; i++ {
				var tmp float64
				for k := 0; k < types.NVoigt; k++ {
					tmp += B[k][i] * sig[k]
				}
				sc.be[i] += tmp * g.Wg
			}
		}
		for i, dof := range g.ElemDofs(ex, ey, ez) {
			b[dof] -= sc.be[i]
		}
	})
	for i, bc := range m.isBC {
		if bc {
			b[i] = 0
		}
	}
	fTrialMax = math.Inf(-1)
	for w := range ws.scr {
		fTrialMax = math.Max(fTrialMax, ws.scr[w].fTrialMax)
	}
	norm = floats.Norm(b, 2)
	return
}

// assemblyMatFree assembles the tangent stiffness of u into A, without boundary conditions
func (m *Micro) assemblyMatFree(ws *workspace, A *ell.Matrix, u, varsOld []float64) {
	g := m.grid
	A.SetZero()
	m.forEachElem(func(w, ex, ey, ez int) {
		var (
			sc  = &ws.scr[w]
			law = m.law(ex, ey, ez)
			ue  = g.ElemDispl(u, ex, ey, ez)
			Ae  = sc.Ae
		)
		clear(Ae)
		for gp := 0; gp < hexgrid.NGP; gp++ {
			var (
				eps  = g.StrainFromElem(&ue, gp)
				ctan types.Ctan
				B    = &g.B[gp]
			)
			law.Tangent(&eps, m.gpVars(varsOld, ex, ey, ez, gp), &ctan)
			for i := 0; i < types.NVoigt; i++ {
				for j := 0; j < nde; j++ {
					var tmp float64
					for k := 0; k < types.NVoigt; k++ {
						tmp += ctan[i*types.NVoigt+k] * B[k][j]
					}
					sc.cb[i][j] = tmp
				}
			}
			for i := 0; i < nde; i++ {
				for j := 0; j < nde; j++ {
					var tmp float64
					for k := 0; k < types.NVoigt; k++ {
						tmp += B[k][i] * sc.cb[k][j]
					}
					Ae[i*nde+j] += tmp * g.Wg
				}
			}
		}
		A.Add3D(ex, ey, ez, Ae)
	})
}

// assemblyMat assembles the Newton matrix of u into ws.A, with the boundary rows and columns replaced by identity
func (m *Micro) assemblyMat(ws *workspace, u, varsOld []float64) {
	m.assemblyMatFree(ws, ws.A, u, varsOld)
	ws.A.SetBC(m.isBC)
}

/*
calcFields evaluates every gauss point at u, writes the updated internal
variables to varsNew and returns the volume averaged stress together with the
trial yield diagnostics of this final state.
*/
func (m *Micro) calcFields(ws *workspace, u, varsOld, varsNew []float64) (stress types.Voigt, fTrialMax float64, nonLinear bool) {
	g := m.grid
	clear(varsNew)
	for w := range ws.scr {
		ws.scr[w].reset()
	}
	m.forEachElem(func(w, ex, ey, ez int) {
		var (
			sc  = &ws.scr[w]
			law = m.law(ex, ey, ez)
			ue  = g.ElemDispl(u, ex, ey, ez)
		)
		for gp := 0; gp < hexgrid.NGP; gp++ {
			var (
				eps = g.StrainFromElem(&ue, gp)
				sig types.Voigt
			)
			f := law.Stress(&eps, m.gpVars(varsOld, ex, ey, ez, gp), &sig, m.gpVars(varsNew, ex, ey, ez, gp))
			if f > 0 {
				sc.nonLinear = true
			}
			sc.fTrialMax = math.Max(sc.fTrialMax, f)
			for i := range sig {
				sc.sig[i] += sig[i] * g.Wg
			}
		}
	})
	fTrialMax = math.Inf(-1)
	for w := range ws.scr {
		sc := &ws.scr[w]
		stress = stress.Add(sc.sig)
		fTrialMax = math.Max(fTrialMax, sc.fTrialMax)
		nonLinear = nonLinear || sc.nonLinear
	}
	stress = stress.Scale(1 / g.Volume())
	return
}

/*
calcCtan computes the homogenized consistent tangent at the converged state by
static condensation. For each unit macro strain e_j the affine boundary field
u_j is completed by the interior fluctuation x solving

	K_ii x = -K_ib u_j

and column j is the volume average of C_gp B (u_j + x). Interior equilibrium is
enforced, a plain average of the gauss point tangents would not be consistent.
*/
func (m *Micro) calcCtan(ws *workspace, u, varsOld []float64) (ctan types.Ctan, err error) {
	var (
		g = m.grid
		K = ws.K
	)
	m.assemblyMatFree(ws, K, u, varsOld)
	ws.A.CopyFrom(K)
	ws.A.SetBC(m.isBC)
	for j := 0; j < types.NVoigt; j++ {
		dU := ws.dU[j]
		clear(dU)
		g.SetAffineBoundary(types.Unit(j), dU)
		K.MulVec(dU, ws.b)
		for i, bc := range m.isBC {
			if bc {
				ws.b[i] = 0
			} else {
				ws.b[i] = -ws.b[i]
			}
		}
		clear(ws.du)
		if _, err = ws.solver.Solve(ws.A, ws.b, ws.du); err != nil {
			err = wrapLinearSolve(err, "tangent column %d", j)
			return
		}
		floats.Add(dU, ws.du)
	}
	for w := range ws.scr {
		ws.scr[w].reset()
	}
	m.forEachElem(func(w, ex, ey, ez int) {
		var (
			sc  = &ws.scr[w]
			law = m.law(ex, ey, ez)
			ue  = g.ElemDispl(u, ex, ey, ez)
			dUe [types.NVoigt][nde]float64
		)
		for j := range dUe {
			dUe[j] = g.ElemDispl(ws.dU[j], ex, ey, ez)
		}
		for gp := 0; gp < hexgrid.NGP; gp++ {
			var (
				eps = g.StrainFromElem(&ue, gp)
				cgp types.Ctan
			)
			law.Tangent(&eps, m.gpVars(varsOld, ex, ey, ez, gp), &cgp)
			for j := range dUe {
				deps := g.StrainFromElem(&dUe[j], gp)
				dsig := cgp.Mul(deps)
				for i := range dsig {
					sc.dsig[j][i] += dsig[i] * g.Wg
				}
			}
		}
	})
	vol := g.Volume()
	for j := 0; j < types.NVoigt; j++ {
		var col types.Voigt
		for w := range ws.scr {
			col = col.Add(ws.scr[w].dsig[j])
		}
		ctan.SetCol(j, col.Scale(1/vol))
	}
	return
}
