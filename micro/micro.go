/*
Package micro drives the micro scale side of an FE² computation. One Micro
instance owns ngp independent RVEs, one per macro gauss point. For each RVE the
macro strain is imposed on the boundary as an affine displacement, the
nonlinear equilibrium problem is solved with Newton-Raphson and the volume
averaged stress and the consistent homogenized tangent are returned.

Every RVE keeps two copies of its state: the committed one (displacement uN,
internal variables varsN) and the trial one (uK, varsK). Homogenize only ever
writes the trial copy, UpdateVars promotes it.
*/
package micro

import (
	"fmt"
	"runtime"
	"sync"

	jww "github.com/spf13/jwalterweatherman"
	"go.uber.org/multierr"

	"github.com/GG1991/MicroPP/ell"
	"github.com/GG1991/MicroPP/hexgrid"
	"github.com/GG1991/MicroPP/material"
	"github.com/GG1991/MicroPP/types"
	"github.com/GG1991/MicroPP/utils"
)

type Micro struct {
	ngp         int
	grid        *hexgrid.Grid
	ms          microstructure
	microParams []float64
	materials   *material.Table
	nvars       int // Internal variables per gauss point, the largest of any law
	opts        Options
	isBC        []bool
	rves        []*rve
	partitions  *utils.PartitionMap // RVEs per worker
	workspaces  []*workspace        // One per worker
	pending     bool                // A homogenize result waits for UpdateVars
	solved      bool                // At least one homogenize has run
	closed      bool
	linMu       sync.Mutex // Tangent of an all elastic table depends on geometry only
	linDone     bool
	linCtan     types.Ctan
}

type rve struct {
	gp           int
	strain       types.Voigt
	uN, uK       []float64
	varsN, varsK []float64
	u, vars      []float64 // Latest solution: the trial one until it is committed
	stress       types.Voigt
	ctan         types.Ctan
	state        NRState
	cost         int
	resNorm      float64
	fTrialMax    float64
	nonLinear    bool
	err          error
}

// workspace holds the scratch storage of one worker, reused across RVEs
type workspace struct {
	A, K   *ell.Matrix // Newton matrix with boundary conditions, unconstrained tangent
	b, du  []float64
	dU     [types.NVoigt][]float64 // Fluctuation fields of the unit strains
	scr    []elemScratch           // One per assembly worker
	solver ell.Solver              // Owns its work vectors
}

func New(ngp int, size [3]int, microType MicroType, microParams []float64, materials *material.Table,
	opts ...Option) (m *Micro, err error) {
	if ngp < 1 {
		err = fmt.Errorf("%w: number of gauss points must be >= 1, have %d", ErrConfiguration, ngp)
		return
	}
	var ms microstructure
	if ms, err = newMicrostructure(microType, microParams); err != nil {
		return
	}
	if materials == nil {
		err = fmt.Errorf("%w: no material table", ErrConfiguration)
		return
	}
	if err = materials.Require(microType.NumMaterials()); err != nil {
		return
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err = o.validate(); err != nil {
		return
	}
	var g *hexgrid.Grid
	if g, err = hexgrid.NewGrid(size[0], size[1], size[2], ms.lx, ms.ly, ms.lz); err != nil {
		return
	}
	m = &Micro{
		ngp:         ngp,
		grid:        g,
		ms:          ms,
		microParams: append([]float64{}, microParams...),
		materials:   materials,
		nvars:       materials.MaxNumVars(),
		opts:        o,
		isBC:        make([]bool, g.NumDofs),
	}
	for _, dof := range g.BoundaryDofs() {
		m.isBC[dof] = true
	}
	nv := g.NumElems * hexgrid.NGP * m.nvars
	m.rves = make([]*rve, ngp)
	for gp := range m.rves {
		r := &rve{
			gp:    gp,
			uN:    make([]float64, g.NumDofs),
			uK:    make([]float64, g.NumDofs),
			varsN: make([]float64, nv),
			varsK: make([]float64, nv),
		}
		r.u, r.vars = r.uN, r.varsN
		m.rves[gp] = r
	}
	m.setParallelDegree(o.Workers)
	jww.INFO.Printf("micro: %d RVEs of %dx%dx%d nodes, %s, %d materials, %d workers\n",
		ngp, g.Nx, g.Ny, g.Nz, microType, materials.Len(), m.partitions.ParallelDegree)
	return
}

func (m *Micro) setParallelDegree(procLimit int) {
	np := procLimit
	if np == 0 {
		np = runtime.NumCPU()
	}
	if np > m.ngp {
		np = m.ngp
	}
	m.partitions = utils.NewPartitionMap(np, m.ngp)
	m.workspaces = make([]*workspace, np)
	for n := range m.workspaces {
		m.workspaces[n] = m.newWorkspace()
	}
}

func (m *Micro) newWorkspace() (ws *workspace) {
	g := m.grid
	ws = &workspace{
		A:      ell.New3D(g.Nx, g.Ny, g.Nz, hexgrid.Dim),
		b:      make([]float64, g.NumDofs),
		du:     make([]float64, g.NumDofs),
		scr:    make([]elemScratch, m.opts.AssemblyWorkers),
		solver: ell.PerWorker(m.opts.Solver),
	}
	ws.K = ws.A.Clone()
	ws.K.SetZero()
	for j := range ws.dU {
		ws.dU[j] = make([]float64, g.NumDofs)
	}
	for w := range ws.scr {
		ws.scr[w].Ae = make([]float64, nde*nde)
	}
	return
}

// Close releases every RVE buffer, the instance is unusable afterward
func (m *Micro) Close() {
	m.rves = nil
	m.workspaces = nil
	m.closed = true
}

func (m *Micro) Grid() *hexgrid.Grid { return m.grid }

func (m *Micro) NumGP() int { return m.ngp }

func (m *Micro) Options() Options { return m.opts }

func (m *Micro) checkGP(gp int) (r *rve, err error) {
	if m.closed {
		err = misuse("instance is closed")
		return
	}
	if gp < 0 || gp >= m.ngp {
		err = misuse("gauss point %d out of range [0,%d)", gp, m.ngp)
		return
	}
	r = m.rves[gp]
	return
}

// SetMacroStrain stores the strain imposed on RVE gp by the next Homogenize
func (m *Micro) SetMacroStrain(gp int, strain types.Voigt) (err error) {
	var r *rve
	if r, err = m.checkGP(gp); err != nil {
		return
	}
	r.strain = strain
	return
}

/*
Homogenize solves every RVE for its current macro strain, starting from the
committed state. RVEs are distributed over the workers and never interact. A
failed RVE does not stop the others; the failures are returned joined.
*/
func (m *Micro) Homogenize() (err error) {
	if m.closed {
		return misuse("instance is closed")
	}
	m.partitions.Each(func(np, kMin, kMax int) {
		ws := m.workspaces[np]
		for gp := kMin; gp < kMax; gp++ {
			m.homogenizeRVE(m.rves[gp], ws)
		}
	})
	m.pending, m.solved = true, true
	for _, r := range m.rves {
		err = multierr.Append(err, r.err)
	}
	return
}

/*
UpdateVars commits the last Homogenize result of every converged RVE. RVEs that
failed keep their previous committed state and their errors are returned.
*/
func (m *Micro) UpdateVars() (err error) {
	if m.closed {
		return misuse("instance is closed")
	}
	if !m.pending {
		return misuse("UpdateVars needs a Homogenize since the last commit")
	}
	for _, r := range m.rves {
		if r.err != nil {
			err = multierr.Append(err, r.err)
		} else {
			r.uN, r.uK = r.uK, r.uN
			r.varsN, r.varsK = r.varsK, r.varsN
		}
		r.u, r.vars = r.uN, r.varsN
	}
	m.pending = false
	return
}
