package micro

import (
	"math"

	"github.com/GG1991/MicroPP/types"
)

// GPState is a snapshot of the last Homogenize result of one RVE
type GPState struct {
	GP        int
	Strain    types.Voigt
	State     NRState
	Cost      int
	ResNorm   float64
	FTrialMax float64
	NonLinear bool
	Err       error // Nil unless the RVE failed
}

func (m *Micro) result(gp int) (r *rve, err error) {
	if r, err = m.checkGP(gp); err != nil {
		return
	}
	if !m.solved {
		r, err = nil, misuse("gauss point %d queried before any Homogenize", gp)
	}
	return
}

// GetNonLinearFlag reports whether any gauss point of RVE gp is past yield at its last solution
func (m *Micro) GetNonLinearFlag(gp int) (nl bool, err error) {
	var r *rve
	if r, err = m.result(gp); err != nil {
		return
	}
	return r.nonLinear, nil
}

// GetCost returns the Newton iterations spent by RVE gp in the last Homogenize
func (m *Micro) GetCost(gp int) (cost int, err error) {
	var r *rve
	if r, err = m.result(gp); err != nil {
		return
	}
	return r.cost, nil
}

/*
GetMacroStress returns the homogenized stress of RVE gp. When the RVE failed
the stress of its last iterate is still returned, together with the
*ConvergenceError.
*/
func (m *Micro) GetMacroStress(gp int) (stress types.Voigt, err error) {
	var r *rve
	if r, err = m.result(gp); err != nil {
		return
	}
	return r.stress, r.err
}

// GetMacroCtan returns the homogenized consistent tangent of RVE gp, row major
func (m *Micro) GetMacroCtan(gp int) (ctan types.Ctan, err error) {
	var r *rve
	if r, err = m.result(gp); err != nil {
		return
	}
	if r.err != nil {
		return ctan, r.err
	}
	return r.ctan, nil
}

// GetNonLinearGPs counts the RVEs that are nonlinear at their last solution
func (m *Micro) GetNonLinearGPs() (count int, err error) {
	if m.closed {
		return 0, misuse("instance is closed")
	}
	if !m.solved {
		return 0, misuse("non linear count queried before any Homogenize")
	}
	for _, r := range m.rves {
		if r.nonLinear {
			count++
		}
	}
	return
}

// GetFTrialMax is the largest trial yield function met by any RVE in the last Homogenize
func (m *Micro) GetFTrialMax() (fMax float64, err error) {
	if m.closed {
		return 0, misuse("instance is closed")
	}
	if !m.solved {
		return 0, misuse("trial yield function queried before any Homogenize")
	}
	fMax = math.Inf(-1)
	for _, r := range m.rves {
		fMax = math.Max(fMax, r.fTrialMax)
	}
	return
}

func (m *Micro) GetGPState(gp int) (st GPState, err error) {
	var r *rve
	if r, err = m.result(gp); err != nil {
		return
	}
	st = GPState{
		GP:        gp,
		Strain:    r.strain,
		State:     r.state,
		Cost:      r.cost,
		ResNorm:   r.resNorm,
		FTrialMax: r.fTrialMax,
		NonLinear: r.nonLinear,
		Err:       r.err,
	}
	return
}
