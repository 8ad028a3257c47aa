package micro

import (
	jww "github.com/spf13/jwalterweatherman"

	"github.com/GG1991/MicroPP/types"
)

// homogenizeRVE runs one load step of RVE r from its committed state, results go to the trial buffers
func (m *Micro) homogenizeRVE(r *rve, ws *workspace) {
	copy(r.uK, r.uN)
	m.grid.SetAffineBoundary(r.strain, r.uK)
	r.u, r.vars = r.uK, r.varsK
	r.err = nil

	res, err := m.newtonRaphson(ws, r.gp, r.uK, r.varsN)
	r.state, r.cost, r.resNorm, r.fTrialMax = res.state, res.its, res.norm, res.fTrialMax

	var fFinal float64
	r.stress, fFinal, r.nonLinear = m.calcFields(ws, r.uK, r.varsN, r.varsK)
	if fFinal > r.fTrialMax {
		r.fTrialMax = fFinal
	}
	if err == nil {
		r.ctan, err = m.tangent(ws, r.uK, r.varsN)
	}
	if err != nil {
		r.err = &ConvergenceError{GP: r.gp, Its: res.its, Norm: res.norm, Err: err}
		jww.WARN.Println(r.err)
		return
	}
	jww.DEBUG.Printf("gp %d: %s in %d its, %d linear its, nonlinear = %t\n",
		r.gp, res.state, res.its, res.solverIts, r.nonLinear)
}

func (m *Micro) tangent(ws *workspace, u, varsOld []float64) (ctan types.Ctan, err error) {
	if !m.materials.Linear() {
		return m.calcCtan(ws, u, varsOld)
	}
	m.linMu.Lock()
	defer m.linMu.Unlock()
	if !m.linDone {
		// A failed solve is retried by the next caller
		if m.linCtan, err = m.calcCtan(ws, u, varsOld); err != nil {
			return
		}
		m.linDone = true
	}
	return m.linCtan, nil
}
