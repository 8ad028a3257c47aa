package micro

import (
	"fmt"
	"math"

	jww "github.com/spf13/jwalterweatherman"
	"gonum.org/v1/gonum/floats"

	"github.com/GG1991/MicroPP/ell"
	"github.com/GG1991/MicroPP/utils"
)

// NRState is the state of the Newton-Raphson loop of one RVE in one load step
type NRState uint8

const (
	NRInitialized NRState = iota
	NRIterating
	NRConverged
	NRDiverged
)

func (s NRState) String() string {
	switch s {
	case NRInitialized:
		return "Initialized"
	case NRIterating:
		return "Iterating"
	case NRConverged:
		return "Converged"
	case NRDiverged:
		return "Diverged"
	}
	return fmt.Sprintf("NRState(%d)", uint8(s))
}

type newtonResult struct {
	state       NRState
	its         int // Newton iterations, the cost
	norm0, norm float64
	fTrialMax   float64 // Largest trial yield function seen over all iterations
	solverIts   int
}

/*
newtonRaphson solves interior equilibrium in place on u, whose boundary values
are already set, with internal variables frozen at varsOld.

	loop:
		b = -f_int(u), |b| over interior dofs
		stop when |b| < AbsTol or |b| < |b0| RelTol
		A Δu = b, u += Δu
*/
func (m *Micro) newtonRaphson(ws *workspace, gp int, u, varsOld []float64) (res newtonResult, err error) {
	var (
		o     = &m.opts
		stats ell.SolveStats
	)
	res.fTrialMax = math.Inf(-1)
	for {
		norm, fTrialMax := m.assemblyRHS(ws, u, varsOld)
		if utils.IsNan(norm) {
			res.state = NRDiverged
			err = fmt.Errorf("%w: residual is not finite at iteration %d", ErrConvergence, res.its)
			return
		}
		if res.state == NRInitialized {
			res.norm0 = norm
			res.state = NRIterating
		}
		res.norm = norm
		res.fTrialMax = math.Max(res.fTrialMax, fTrialMax)
		jww.DEBUG.Printf("gp %d: its = %d |r| = %e f_trial_max = %e\n", gp, res.its, norm, fTrialMax)
		if norm < o.NRAbsTol || norm < res.norm0*o.NRRelTol {
			res.state = NRConverged
			return
		}
		if res.its >= o.NRMaxIts {
			res.state = NRDiverged
			err = fmt.Errorf("%w: |r| = %e, |r0| = %e", ErrConvergence, norm, res.norm0)
			return
		}
		m.assemblyMat(ws, u, varsOld)
		clear(ws.du)
		if stats, err = ws.solver.Solve(ws.A, ws.b, ws.du); err != nil {
			res.state = NRDiverged
			err = wrapLinearSolve(err, "newton iteration %d", res.its+1)
			return
		}
		res.solverIts += stats.Its
		floats.Add(u, ws.du)
		res.its++
	}
}
